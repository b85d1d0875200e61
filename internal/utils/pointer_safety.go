// Package utils holds small generic helpers shared across packages.
package utils

// Value dereferences v, returning the zero value when v is nil. Partial
// updates carry optional fields as pointers; this collapses them safely.
func Value[T any](v *T) T {
	if v == nil {
		return *new(T)
	}
	return *v
}

// Ptr returns a pointer to v. Useful for filling optional fields inline.
func Ptr[T any](v T) *T {
	return &v
}
