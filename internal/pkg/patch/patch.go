package patch

// Coalesce returns the value pointed to by ptr if it's not nil, otherwise returns fallback
func Coalesce[T any](ptr *T, fallback T) T {
	if ptr != nil {
		return *ptr
	}
	return fallback
}

// Changes reports whether ptr carries a value different from current.
func Changes[T comparable](ptr *T, current T) bool {
	return ptr != nil && *ptr != current
}

// ChangesFunc is Changes for types that need a custom equality, such as time.Time.
func ChangesFunc[T any](ptr *T, current T, equal func(a, b T) bool) bool {
	return ptr != nil && !equal(*ptr, current)
}
