package auth

import "github.com/wellnash/wellnash/internal/authform"

// LoginData is the view model for the sign-in/sign-up form. The same
// template serves both modes; Copy carries the mode-specific text.
type LoginData struct {
	FormID       string
	Action       string
	Email        string
	ErrorMessage string
	IsLoading    bool
	Copy         authform.Copy
}

// NewLoginData builds the view model from a form's current state.
func NewLoginData(form *authform.Form, action string) LoginData {
	return LoginData{
		FormID:       form.ID,
		Action:       action,
		Email:        form.Email,
		ErrorMessage: form.ErrorMessage,
		IsLoading:    form.IsLoading,
		Copy:         form.Variant().Copy,
	}
}

// DashboardData is used by the pages behind the auth guard.
type DashboardData struct {
	Email string
}
