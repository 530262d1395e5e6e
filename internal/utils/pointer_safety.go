package utils

// Value dereferences v, returning the zero value for nil.
func Value[T any](v *T) T {
	if v == nil {
		return *new(T)
	}
	return *v
}

// Ptr returns a pointer to a copy of v, for filling optional request fields.
func Ptr[T any](v T) *T {
	return &v
}

// PtrIf returns a pointer to v only when set is true, so flag values the user never
// passed stay nil.
func PtrIf[T any](v T, set bool) *T {
	if !set {
		return nil
	}
	return &v
}
