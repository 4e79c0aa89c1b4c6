package identity

import (
	"errors"
	"strings"

	"firebase.google.com/go/v4/auth"
)

// Provider error codes. They follow the codes used by the Firebase client SDKs so that
// the message table in the service layer can stay keyed on them.
const (
	CodeUserNotFound      = "auth/user-not-found"
	CodeWrongPassword     = "auth/wrong-password"
	CodeInvalidCredential = "auth/invalid-credential"
	CodeEmailAlreadyInUse = "auth/email-already-in-use"
	CodeWeakPassword      = "auth/weak-password"
	CodeInvalidEmail      = "auth/invalid-email"
	CodeUserDisabled      = "auth/user-disabled"
	CodeTooManyRequests   = "auth/too-many-requests"
	CodeNetworkFailed     = "auth/network-request-failed"
	CodeTokenExpired      = "auth/user-token-expired"
	CodeInternal          = "auth/internal-error"
)

// Error is a provider failure carrying a stable code.
type Error struct {
	Code string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Code
	}
	return e.Code + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

func newError(code string, err error) *Error {
	return &Error{Code: code, Err: err}
}

// CodeOf extracts the provider code from err, or returns "" when err carries none.
func CodeOf(err error) string {
	var idErr *Error
	if errors.As(err, &idErr) {
		return idErr.Code
	}
	return ""
}

// restErrorCodes maps Identity Toolkit error messages to provider codes.
var restErrorCodes = map[string]string{
	"EMAIL_EXISTS":                CodeEmailAlreadyInUse,
	"EMAIL_NOT_FOUND":             CodeUserNotFound,
	"USER_NOT_FOUND":              CodeUserNotFound,
	"INVALID_PASSWORD":            CodeWrongPassword,
	"INVALID_LOGIN_CREDENTIALS":   CodeInvalidCredential,
	"INVALID_IDP_RESPONSE":        CodeInvalidCredential,
	"INVALID_ID_TOKEN":            CodeInvalidCredential,
	"USER_DISABLED":               CodeUserDisabled,
	"TOO_MANY_ATTEMPTS_TRY_LATER": CodeTooManyRequests,
	"WEAK_PASSWORD":               CodeWeakPassword,
	"INVALID_EMAIL":               CodeInvalidEmail,
	"MISSING_EMAIL":               CodeInvalidEmail,
	"TOKEN_EXPIRED":               CodeTokenExpired,
	"INVALID_REFRESH_TOKEN":       CodeTokenExpired,
}

// codeFromRESTMessage maps messages such as "WEAK_PASSWORD : Password should be at least 6 characters".
func codeFromRESTMessage(message string) string {
	key := strings.TrimSpace(strings.SplitN(message, ":", 2)[0])
	if code, ok := restErrorCodes[key]; ok {
		return code
	}
	return CodeInternal
}

// codeFromAdminError maps Admin SDK errors to provider codes.
func codeFromAdminError(err error) string {
	switch {
	case auth.IsUserNotFound(err):
		return CodeUserNotFound
	case auth.IsEmailAlreadyExists(err):
		return CodeEmailAlreadyInUse
	case auth.IsUserDisabled(err):
		return CodeUserDisabled
	case auth.IsIDTokenExpired(err), auth.IsIDTokenRevoked(err):
		return CodeTokenExpired
	case auth.IsIDTokenInvalid(err):
		return CodeInvalidCredential
	default:
		return CodeInternal
	}
}
