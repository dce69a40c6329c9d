// Package recruit decides which nations to contact and runs recruitment rounds.
package recruit

import (
	"time"
)

// RoundState is the phase a round is in.
type RoundState string

const (
	StateIdle           RoundState = "idle"
	StateFetching       RoundState = "fetching"
	StateFiltering      RoundState = "filtering"
	StateAuthenticating RoundState = "authenticating"
	StateSending        RoundState = "sending"
	StateDone           RoundState = "done"
)

// EventType identifies the type of event.
type EventType string

const (
	EventRoundStarted  EventType = "round_started"
	EventRoundFinished EventType = "round_finished"
	EventRoundFailed   EventType = "round_failed"
	EventLogin         EventType = "login"
	EventMessageSent   EventType = "message_sent"
	EventMessageFailed EventType = "message_failed"
)

// Event represents something that happened during a round.
type Event struct {
	Type      EventType
	RoundID   string
	NationID  int64
	Leader    string
	Data      interface{}
	Timestamp time.Time
}

// RoundSummary is the outcome of one round.
type RoundSummary struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	Fetched    int
	Eligible   int
	Sent       int
	Failed     int
	Err        error
}

// Duration returns how long the round took.
func (s RoundSummary) Duration() time.Duration {
	return s.FinishedAt.Sub(s.StartedAt)
}

// ErrorData contains data for failure events.
type ErrorData struct {
	Error string
}

// LoginData contains data for login events.
type LoginData struct {
	Authenticated bool
	Error         string
}
