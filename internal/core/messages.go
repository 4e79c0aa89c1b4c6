package core

import "github.com/example/trademind/internal/identity"

// DefaultErrorMessage is shown for provider failures without a known code.
const DefaultErrorMessage = "An error occurred. Please try again."

var errorMessages = map[string]string{
	identity.CodeUserNotFound:      "No account found with this email address.",
	identity.CodeWrongPassword:     "Incorrect password. Please try again.",
	identity.CodeInvalidCredential: "Invalid email or password. Please try again.",
	identity.CodeEmailAlreadyInUse: "An account with this email already exists.",
	identity.CodeWeakPassword:      "Password should be at least 6 characters long.",
	identity.CodeInvalidEmail:      "Please enter a valid email address.",
	identity.CodeUserDisabled:      "This account has been disabled.",
	identity.CodeTooManyRequests:   "Too many failed attempts. Please try again later.",
	identity.CodeNetworkFailed:     "Network error. Please check your connection.",
	"auth/popup-closed-by-user":    "Sign in was cancelled.",
	"auth/cancelled-popup-request": "Sign in was cancelled.",
	"auth/popup-blocked":           "Pop-up was blocked by your browser. Please allow pop-ups and try again.",
}

// MessageFor returns the user facing message for a provider error code.
func MessageFor(code string) string {
	if msg, ok := errorMessages[code]; ok {
		return msg
	}
	return DefaultErrorMessage
}
