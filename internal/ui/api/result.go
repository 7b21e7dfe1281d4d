package api

// Result is the settled outcome of one operation.
type Result[T any] struct {
	Value T
	Err   error
	// Logged is set when the operation already reported Err to the diagnostic
	// log; callers following the operation's policy treat it as handled.
	Logged bool
	// Empty is set when the operation succeeded without producing a value.
	Empty bool
}

// Ok wraps a successful value.
func Ok[T any](v T) Result[T] {
	return Result[T]{Value: v}
}

// Fail wraps an error the caller is expected to handle.
func Fail[T any](err error) Result[T] {
	return Result[T]{Err: err}
}

// Get unpacks the result in the usual (value, error) form.
func (r Result[T]) Get() (T, error) {
	return r.Value, r.Err
}

// HasValue reports whether the operation produced a value.
func (r Result[T]) HasValue() bool {
	return r.Err == nil && !r.Empty
}

// Unhandled returns the error only when the operation left it to the caller.
func (r Result[T]) Unhandled() error {
	if r.Logged {
		return nil
	}
	return r.Err
}
