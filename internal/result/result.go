// Package result defines the uniform success/failure envelope returned by
// every controller operation. UI-facing code branches on one shape regardless
// of which operation produced it.
package result

// OperationResult reports the terminal outcome of a single controller
// operation. It carries either typed data (on success) or a human-readable
// message in English and Arabic plus itemized per-field errors (on failure).
//
// An OperationResult is constructed once, never mutated, and discarded by the
// caller after inspection. In-progress state is not modeled here; callers
// track it separately through the controller loading flag.
type OperationResult[T any] struct {
	Success   bool
	Data      T
	Message   string
	MessageAr string
	Errors    []string
}

// Ok creates a successful result carrying data.
func Ok[T any](data T) OperationResult[T] {
	return OperationResult[T]{Success: true, Data: data, Errors: []string{}}
}

// OkMsg creates a successful result with display messages.
func OkMsg[T any](data T, message, messageAr string) OperationResult[T] {
	return OperationResult[T]{
		Success:   true,
		Data:      data,
		Message:   message,
		MessageAr: messageAr,
		Errors:    []string{},
	}
}

// Fail creates a failed result. Data is left as the zero value and must not
// be read by callers; message should be non-empty by convention.
func Fail[T any](message, messageAr string, errs ...string) OperationResult[T] {
	if errs == nil {
		errs = []string{}
	}
	return OperationResult[T]{
		Success:   false,
		Message:   message,
		MessageAr: messageAr,
		Errors:    errs,
	}
}

// FailErr creates a failed result from an error value.
func FailErr[T any](err error) OperationResult[T] {
	return Fail[T](err.Error(), "")
}

// DisplayMessage returns the Arabic message when present, falling back to the
// English one. Intended for Arabic-first display surfaces.
func (r OperationResult[T]) DisplayMessage() string {
	if r.MessageAr != "" {
		return r.MessageAr
	}
	return r.Message
}
