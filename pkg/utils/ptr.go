package utils

// SafeDeref возвращает нулевое значение для nil.
func SafeDeref[T any](ptr *T) T {
	if ptr == nil {
		var zero T
		return zero
	}
	return *ptr
}
