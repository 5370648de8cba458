package authform

import (
	"context"

	"github.com/wellnash/wellnash/internal/domain"
)

// Copy is the text a variant shows on the shared form.
type Copy struct {
	Title        string
	Subtitle     string
	Submit       string
	Loading      string
	SwitchPrompt string
	SwitchLabel  string
	SwitchHref   string
}

// Variant pairs the copy text of one mode with the capability it invokes.
// The page component is shared; only the variant differs.
type Variant struct {
	Mode   domain.Mode
	Copy   Copy
	invoke func(ctx context.Context, auth domain.Authenticator, email, password string) (domain.Result, error)
}

// Invoke calls the capability this variant is bound to.
func (v Variant) Invoke(ctx context.Context, auth domain.Authenticator, email, password string) (domain.Result, error) {
	return v.invoke(ctx, auth, email, password)
}

var signInVariant = Variant{
	Mode: domain.ModeSignIn,
	Copy: Copy{
		Title:        "Welcome back",
		Subtitle:     "Sign in to access your wellness dashboard",
		Submit:       "Sign in",
		Loading:      "Signing in...",
		SwitchPrompt: "Don't have an account?",
		SwitchLabel:  "Create an account",
		SwitchHref:   "/login?signup=true",
	},
	invoke: func(ctx context.Context, auth domain.Authenticator, email, password string) (domain.Result, error) {
		return auth.SignIn(ctx, email, password)
	},
}

var signUpVariant = Variant{
	Mode: domain.ModeSignUp,
	Copy: Copy{
		Title:        "Create your account",
		Subtitle:     "Sign up to get personalized wellness plans",
		Submit:       "Sign up",
		Loading:      "Creating account...",
		SwitchPrompt: "Already have an account?",
		SwitchLabel:  "Sign in",
		SwitchHref:   "/login",
	},
	invoke: func(ctx context.Context, auth domain.Authenticator, email, password string) (domain.Result, error) {
		return auth.SignUp(ctx, email, password)
	},
}

// VariantFor returns the variant for a mode.
func VariantFor(mode domain.Mode) Variant {
	if mode == domain.ModeSignUp {
		return signUpVariant
	}
	return signInVariant
}
