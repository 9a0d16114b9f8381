package pointers

import "strings"

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T { return &v }

// NonEmptyString returns nil for blank input, otherwise a pointer to the trimmed value.
func NonEmptyString(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}

// Deref returns the pointed-to value or the zero value.
func Deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
