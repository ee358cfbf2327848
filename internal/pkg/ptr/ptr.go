package ptr

// To returns a pointer to the given value.
func To[T any](v T) *T {
	return &v
}

// Deref returns the value pointed to by ptr, or fallback when ptr is nil.
func Deref[T any](ptr *T, fallback T) T {
	if ptr != nil {
		return *ptr
	}
	return fallback
}
