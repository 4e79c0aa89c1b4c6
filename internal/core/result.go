package core

// Result is the uniform outcome of every adapter operation. Adapters never return Go errors to their
// callers: failures are reported with Success false and a human readable Error.
type Result[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
}

func ok[T any](data T) Result[T] {
	return Result[T]{Success: true, Data: data}
}

func fail[T any](code, message string) Result[T] {
	return Result[T]{Success: false, Error: message, Code: code}
}

// Codes reported by ProfileService results.
const (
	CodeNotFound         = "not-found"
	CodePermissionDenied = "permission-denied"
	CodeInternal         = "internal"
)

// ErrUserNotFound is the message reported when a profile document does not exist.
const ErrUserNotFound = "User not found"
