package normalize

import (
	"errors"
	"fmt"
)

// Reason classifies why a payload could not be turned into a record
type Reason string

const (
	// ReasonNoData means the payload was not an object or had no keys
	ReasonNoData Reason = "no-data"
	// ReasonMissing means a required field was absent
	ReasonMissing Reason = "missing"
	// ReasonNull means a required field was explicitly null
	ReasonNull Reason = "null"
	// ReasonType means a required field had the wrong primitive type
	ReasonType Reason = "type"
)

func (r Reason) String() string {
	return string(r)
}

// ValidationError is returned by Normalize. Field holds the dotted path of
// the first offending field and is empty for ReasonNoData.
type ValidationError struct {
	Reason Reason
	Field  string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid weather payload: %s", e.Reason)
	}
	return fmt.Sprintf("invalid weather payload: %s (%s)", e.Reason, e.Field)
}

// ReasonOf extracts the classification from an error returned by Normalize
func ReasonOf(err error) (Reason, bool) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Reason, true
	}
	return "", false
}

func fail(reason Reason, field string) error {
	return &ValidationError{Reason: reason, Field: field}
}
