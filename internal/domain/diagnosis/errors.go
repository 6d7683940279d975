package diagnosis

import "errors"

// Input errors. Their text is returned to API clients verbatim.
var (
	ErrInvalidClientID = errors.New("invalid clientId - must be a valid UUID")
	ErrMissingRequired = errors.New("diagnosis_name and justification are required")
	ErrNothingToUpdate = errors.New("nothing to update")
	ErrInvalidBody     = errors.New("invalid request body")
)

var (
	ErrNotFound = errors.New("diagnosis not found")
	// ErrStore marks failures of the backing store. Details stay server-side.
	ErrStore = errors.New("diagnosis store failure")
)

var inputErrors = []error{ErrInvalidClientID, ErrMissingRequired, ErrNothingToUpdate, ErrInvalidBody}

// InputError returns the client-facing message when err was caused by bad
// caller input.
func InputError(err error) (string, bool) {
	for _, target := range inputErrors {
		if errors.Is(err, target) {
			return target.Error(), true
		}
	}
	return "", false
}

// Outcome classifies err for metrics.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	}
	if _, ok := InputError(err); ok {
		return "invalid_input"
	}
	return "store_error"
}
