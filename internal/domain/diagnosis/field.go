package diagnosis

import (
	"bytes"
	"encoding/json"

	"github.com/m-mizutani/goerr/v2"
)

// Field is an optional text value that distinguishes "not sent" from
// "sent as null". The zero value is absent.
type Field struct {
	present bool
	value   *string
}

// Absent returns a field that was not supplied.
func Absent() Field { return Field{} }

// Set returns a field supplied with a text value.
func Set(s string) Field { return Field{present: true, value: &s} }

// Null returns a field supplied as an explicit null.
func Null() Field { return Field{present: true} }

func (f Field) Present() bool { return f.present }

// Value returns the text, or nil when the field is absent or null.
func (f Field) Value() *string { return f.value }

// String returns the text, or "" when absent or null.
func (f Field) String() string {
	if f.value == nil {
		return ""
	}
	return *f.value
}

func (f Field) sanitized() Field {
	if !f.present {
		return f
	}
	return Field{present: true, value: Sanitize(f.value)}
}

// UnmarshalJSON accepts strings, numbers and booleans, keeping numbers in
// their literal form. It is only invoked for keys present in the document,
// which is what makes presence observable.
func (f *Field) UnmarshalJSON(data []byte) error {
	f.present = true
	f.value = nil

	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	var s string
	switch data[0] {
	case '"':
		if err := json.Unmarshal(data, &s); err != nil {
			return goerr.Wrap(ErrInvalidBody, "malformed string field")
		}
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return goerr.Wrap(ErrInvalidBody, "malformed boolean field")
		}
		s = string(data)
	case '{', '[':
		return goerr.Wrap(ErrInvalidBody, "text field must not be an object or array")
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return goerr.Wrap(ErrInvalidBody, "malformed number field")
		}
		s = n.String()
	}
	f.value = &s
	return nil
}

// MarshalJSON writes null for absent and null fields.
func (f Field) MarshalJSON() ([]byte, error) {
	if f.value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*f.value)
}
