package domain

// Mode selects whether the form signs an existing user in or creates a new account.
type Mode int

const (
	ModeSignIn Mode = iota
	ModeSignUp
)

func (m Mode) String() string {
	switch m {
	case ModeSignUp:
		return "sign_up"
	default:
		return "sign_in"
	}
}

// ModeFromFlag maps the value of the "signup" query parameter to a Mode.
// Only the exact string "true" selects sign-up.
func ModeFromFlag(signup string) Mode {
	if signup == "true" {
		return ModeSignUp
	}
	return ModeSignIn
}
