package grid

import (
	"sync/atomic"
	"time"
)

// Status is the process-wide grid flag.
type Status string

const (
	StatusUp   Status = "UP"
	StatusDown Status = "DOWN"
)

// StatusMessage is the payload pushed to clients when the grid status
// is broadcast or on connect.
type StatusMessage struct {
	Type          string `json:"type"`
	SchemaVersion string `json:"schemaVersion"`
	Status        Status `json:"status"`
	ClientAction  string `json:"clientAction"`
	Title         string `json:"title"`
	Message       string `json:"message"`
	RaisedAtUtc   string `json:"raisedAtUtc"`
}

// State holds the shared grid flag. It is passed explicitly to the
// broadcaster and to every connect handler, never read from a global.
// Last write wins; reads and replacements are atomic.
type State struct {
	status atomic.Value // Status
}

// NewState creates a State with the grid UP.
func NewState() *State {
	s := &State{}
	s.status.Store(StatusUp)
	return s
}

// Status returns the current flag.
func (s *State) Status() Status {
	return s.status.Load().(Status)
}

// Set replaces the flag.
func (s *State) Set(status Status) {
	s.status.Store(status)
}

// Message builds the push payload for a status, stamped at now.
func Message(status Status, now time.Time) StatusMessage {
	msg := StatusMessage{
		Type:          "grid.status",
		SchemaVersion: "1.0",
		Status:        status,
		RaisedAtUtc:   now.UTC().Format(time.RFC3339),
	}
	if status == StatusDown {
		msg.ClientAction = "PAUSE_READINGS"
		msg.Title = "Temporary grid interruption"
		msg.Message = "We can't receive readings right now due to a grid issue. No action is needed."
	} else {
		msg.ClientAction = "RESUME_READINGS"
		msg.Title = "Grid back to normal"
		msg.Message = "Readings will resume automatically."
	}
	return msg
}
