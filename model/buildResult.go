package model

import "time"

type (
	BuildResult struct {
		Success bool      `json:"success"`
		ImageID string    `json:"imageID"`
		FullTag string    `json:"fullTag"`
		Log     string    `json:"log"`    // ANSI-stripped, blank lines collapsed
		RawLog  string    `json:"rawLog"` // engine stream as received
		At      time.Time `json:"at"`
	}
)
