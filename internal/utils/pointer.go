package utils

// Ptr returns a pointer to a copy of v, for optional wire fields such as
// the Responses API "stream" flag.
func Ptr[T any](v T) *T {
	return &v
}
