package diagnosis

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

// clientIDPattern accepts RFC 4122 UUIDs of versions 1 to 5 in either case.
var clientIDPattern = regexp.MustCompile(`(?i)^[0-9a-f]{8}-[0-9a-f]{4}-[1-5][0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)

// IsValidClientID reports whether s, ignoring surrounding whitespace, is a
// version 1-5 UUID in canonical 8-4-4-4-12 form.
func IsValidClientID(s string) bool {
	s = strings.TrimSpace(s)
	return s != "" && clientIDPattern.MatchString(s)
}

// ParseClientID validates s and returns it in canonical lower-case form.
func ParseClientID(s string) (uuid.UUID, error) {
	if !IsValidClientID(s) {
		return uuid.Nil, goerr.Wrap(ErrInvalidClientID, "rejected client id", goerr.V("client_id", s))
	}
	id, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil {
		return uuid.Nil, goerr.Wrap(ErrInvalidClientID, "unparseable client id", goerr.V("client_id", s))
	}
	return id, nil
}

// stripped lists every character removed from free text: NUL, backspace,
// tab, LF, CR, SUB, both quote styles, backslash, percent and angle brackets.
var stripped = strings.NewReplacer(
	"\x00", "",
	"\b", "",
	"\t", "",
	"\x1a", "",
	"\n", "",
	"\r", "",
	`"`, "",
	"'", "",
	`\`, "",
	"%", "",
	"<", "",
	">", "",
)

// SanitizeText removes the stripped characters and trims surrounding
// whitespace. The result is lossy and SanitizeText(SanitizeText(s)) equals
// SanitizeText(s).
func SanitizeText(s string) string {
	return strings.TrimSpace(stripped.Replace(s))
}

// Sanitize applies SanitizeText to a nullable value; nil stays nil.
func Sanitize(s *string) *string {
	if s == nil {
		return nil
	}
	out := SanitizeText(*s)
	return &out
}
