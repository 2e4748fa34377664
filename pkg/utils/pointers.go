package utils

// Deref returns the pointed-to value, or the zero value for nil
func Deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

// NilIfEmpty maps "" to nil so optional text columns stay NULL
func NilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
