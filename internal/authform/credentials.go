package authform

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

// MinPasswordLength mirrors the minlength attribute rendered on the password input.
const MinPasswordLength = 8

// Credentials is the DTO bound from the submitted form.
type Credentials struct {
	FormID   string `form:"form_id"`
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required,min=8"`
}

// ValidationMessage turns a validator error into the text shown on the form.
// The wording follows what a browser reports for the same constraint.
func ValidationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Please check the form and try again."
	}
	fe := verrs[0]
	switch fe.Field() {
	case "Email":
		if fe.Tag() == "required" {
			return "Please enter your email address."
		}
		return "Please enter a valid email address."
	case "Password":
		if fe.Tag() == "required" {
			return "Please enter your password."
		}
		return "Password must be at least 8 characters long."
	default:
		return "Please check the form and try again."
	}
}
