package validation

import (
	"errors"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Field messages shown inline next to the offending input.
const (
	MsgRequired        = "This field is required"
	MsgEmail           = "Please enter a valid email address"
	MsgSignInPassword  = "Password must be at least 6 characters"
	MsgSignUpPassword  = "Password must be at least 8 characters"
	MsgName            = "Please enter your full name"
	MsgPasswordsDiffer = "Passwords do not match"
	MsgAgreeTerms      = "Please agree to the Terms of Service"
)

var customValidators = map[string]validator.Func{
	"tm_email":           func(fl validator.FieldLevel) bool { return ValidateEmail(fl.Field().String()) },
	"tm_signin_password": func(fl validator.FieldLevel) bool { return ValidateSignInPassword(fl.Field().String()) },
	"tm_signup_password": func(fl validator.FieldLevel) bool { return ValidateSignUpPassword(fl.Field().String()) },
	"tm_name":            func(fl validator.FieldLevel) bool { return ValidateName(fl.Field().String()) },
	"tm_true": func(fl validator.FieldLevel) bool {
		return fl.Field().Kind() == reflect.Bool && fl.Field().Bool()
	},
}

var tagMessages = map[string]string{
	"tm_email":           MsgEmail,
	"tm_signin_password": MsgSignInPassword,
	"tm_signup_password": MsgSignUpPassword,
	"tm_name":            MsgName,
	"tm_true":            MsgAgreeTerms,
	"eqfield":            MsgPasswordsDiffer,
}

// requiredMessages overrides MsgRequired for fields whose empty value has a more specific message.
var requiredMessages = map[string]string{
	"name":            MsgName,
	"email":           MsgEmail,
	"confirmPassword": MsgPasswordsDiffer,
}

// Register installs the custom tags on v and reports field names by their JSON key.
func Register(v *validator.Validate) error {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	for tag, fn := range customValidators {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return err
		}
	}
	return nil
}

// RegisterBindings installs the custom tags on gin's request binding validator.
func RegisterBindings() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("gin binding engine is not go-playground/validator")
	}
	return Register(v)
}

// FieldMessages turns validation errors into per-field messages keyed by JSON name, plus the message of
// the first failing field for the error toast. ok is false when err is not a validation error.
func FieldMessages(err error) (fields map[string]string, first string, ok bool) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, "", false
	}

	fields = make(map[string]string, len(verrs))
	for _, fe := range verrs {
		msg := messageFor(fe)
		if _, seen := fields[fe.Field()]; !seen {
			fields[fe.Field()] = msg
		}
		if first == "" {
			first = msg
		}
	}
	return fields, first, true
}

func messageFor(fe validator.FieldError) string {
	if fe.Tag() == "required" {
		if msg, ok := requiredMessages[fe.Field()]; ok {
			return msg
		}
		return MsgRequired
	}
	if msg, ok := tagMessages[fe.Tag()]; ok {
		return msg
	}
	switch fe.Tag() {
	case "oneof":
		return "Must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "gt":
		return "Must be greater than " + fe.Param()
	case "gte":
		return "Must be at least " + fe.Param()
	}
	return "Invalid value"
}
