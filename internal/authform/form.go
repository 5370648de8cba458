package authform

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/wellnash/wellnash/internal/domain"
)

// GenericErrorMessage is shown when an attempt fails for any reason other
// than a structured backend rejection.
const GenericErrorMessage = "An unexpected error occurred. Please try again."

// Phase is the position of a Form in its per-attempt state machine.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseSubmitting
	PhaseSuccess
)

func (p Phase) String() string {
	switch p {
	case PhaseSubmitting:
		return "submitting"
	case PhaseSuccess:
		return "success"
	default:
		return "idle"
	}
}

// Form is the transient state of one rendering of the sign-in/sign-up form.
// Mode and NextPath are fixed when the form is created.
type Form struct {
	ID           string
	Mode         domain.Mode
	NextPath     string
	Email        string
	ErrorMessage string
	IsLoading    bool

	phase Phase
}

// New creates a form in the Idle phase from the raw "signup" and "next"
// query parameters.
func New(signup, next string) *Form {
	return &Form{
		ID:       uuid.NewString(),
		Mode:     domain.ModeFromFlag(signup),
		NextPath: NextFromQuery(next),
	}
}

// Restore rebuilds a form for a submission of a previously rendered form.
// An empty id gets a fresh one.
func Restore(id, signup, next string) *Form {
	f := New(signup, next)
	if id != "" {
		f.ID = id
	}
	return f
}

// Variant returns the copy and capability for the form's mode.
func (f *Form) Variant() Variant { return VariantFor(f.Mode) }

// Phase reports the current phase.
func (f *Form) Phase() Phase { return f.phase }

// Begin moves Idle → Submitting: the previous error is cleared and the form
// is marked loading.
func (f *Form) Begin() error {
	if f.phase != PhaseIdle {
		return fmt.Errorf("%w: begin from %s", domain.ErrInvalidTransition, f.phase)
	}
	f.phase = PhaseSubmitting
	f.ErrorMessage = ""
	f.IsLoading = true
	return nil
}

// Fail moves Submitting → Failed and straight back to Idle with message
// displayed, ready for another submission.
func (f *Form) Fail(message string) error {
	if f.phase != PhaseSubmitting {
		return fmt.Errorf("%w: fail from %s", domain.ErrInvalidTransition, f.phase)
	}
	if message == "" {
		message = GenericErrorMessage
	}
	f.phase = PhaseIdle
	f.ErrorMessage = message
	f.IsLoading = false
	return nil
}

// Succeed moves Submitting → Success and returns the path to navigate to.
// Success is terminal. The form keeps IsLoading set since the only thing
// left to do is leave the page.
func (f *Form) Succeed() (string, error) {
	if f.phase != PhaseSubmitting {
		return "", fmt.Errorf("%w: succeed from %s", domain.ErrInvalidTransition, f.phase)
	}
	f.phase = PhaseSuccess
	return RedirectTarget(f.NextPath), nil
}

// Invalidate records a local validation failure without an attempt. Only
// valid while Idle.
func (f *Form) Invalidate(message string) error {
	if f.phase != PhaseIdle {
		return fmt.Errorf("%w: invalidate from %s", domain.ErrInvalidTransition, f.phase)
	}
	f.ErrorMessage = message
	return nil
}
