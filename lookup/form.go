package lookup

import (
	"errors"
	"unicode/utf8"
)

// MinLocationLength is the shortest accepted location query, in characters
const MinLocationLength = 2

var (
	ErrLocationRequired = errors.New("location is required")
	ErrLocationTooShort = errors.New("location must be at least 2 characters")
)

// ValidateLocation applies the input rules of the search form. The value is
// not trimmed.
func ValidateLocation(location string) error {
	if location == "" {
		return ErrLocationRequired
	}
	if utf8.RuneCountInString(location) < MinLocationLength {
		return ErrLocationTooShort
	}
	return nil
}

// inputControl tracks the location field the way a form control does:
// dirty after a user edit, touched after the user left the field.
type inputControl struct {
	touched bool
	dirty   bool
}

func (f inputControl) showsError(value string) bool {
	return ValidateLocation(value) != nil && (f.touched || f.dirty)
}
