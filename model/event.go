package model

import "time"

type EventKind string

const (
	EventCloned    EventKind = "cloned"
	EventBuilt     EventKind = "built"
	EventPublished EventKind = "published"
	EventCommitted EventKind = "committed"
)

type (
	// Event is the message published to the notification queue after a
	// workflow operation completes.
	Event struct {
		Kind      EventKind `json:"kind"`
		SessionID string    `json:"sessionID"`
		Repo      string    `json:"repo,omitempty"`
		Branch    string    `json:"branch,omitempty"`
		Image     string    `json:"image,omitempty"`
		Success   bool      `json:"success"`
		Message   string    `json:"message,omitempty"`
		At        time.Time `json:"at"`
	}
)
