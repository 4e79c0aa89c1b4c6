package identity

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeFromRESTMessage(t *testing.T) {
	tests := []struct {
		message string
		want    string
	}{
		{"EMAIL_EXISTS", CodeEmailAlreadyInUse},
		{"EMAIL_NOT_FOUND", CodeUserNotFound},
		{"INVALID_PASSWORD", CodeWrongPassword},
		{"INVALID_LOGIN_CREDENTIALS", CodeInvalidCredential},
		{"WEAK_PASSWORD : Password should be at least 6 characters", CodeWeakPassword},
		{"TOO_MANY_ATTEMPTS_TRY_LATER : Access disabled", CodeTooManyRequests},
		{"USER_DISABLED", CodeUserDisabled},
		{"SOMETHING_NEW", CodeInternal},
		{"", CodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			assert.Equal(t, tt.want, codeFromRESTMessage(tt.message))
		})
	}
}

func TestCodeOf(t *testing.T) {
	err := fmt.Errorf("sign in: %w", newError(CodeWrongPassword, errors.New("bad")))
	assert.Equal(t, CodeWrongPassword, CodeOf(err))
	assert.Equal(t, "", CodeOf(errors.New("plain")))
	assert.Equal(t, "", CodeOf(nil))
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, CodeUserNotFound, newError(CodeUserNotFound, nil).Error())
	assert.Equal(t, "auth/internal-error: boom", newError(CodeInternal, errors.New("boom")).Error())
}
