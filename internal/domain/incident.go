package domain

import "time"

// Incident records a failed model call for diagnostics. It is never shown
// to the end user.
type Incident struct {
	SessionID  string
	TurnID     string
	Mode       Mode
	Code       string
	Cause      string
	OccurredAt time.Time
}
