package domain

import "time"

// Outcome names for AttemptEvent.
const (
	OutcomeSucceeded = "succeeded"
	OutcomeRejected  = "rejected"
	OutcomeFault     = "fault"
)

// AttemptEvent records the resolution of one submission attempt.
type AttemptEvent struct {
	FormID     string        `json:"form_id"`
	Mode       string        `json:"mode"`
	Email      string        `json:"email"`
	Outcome    string        `json:"outcome"`
	Message    string        `json:"message,omitempty"`
	Redirect   string        `json:"redirect,omitempty"`
	Duration   time.Duration `json:"duration"`
	OccurredAt time.Time     `json:"occurred_at"`
}
