package model

import "time"

type (
	CommitInfo struct {
		ShortID string `json:"shortID"`
		FullID  string `json:"fullID"`
		Message string `json:"message"`
		Author  string `json:"author"`
		Date    string `json:"date"`
	}

	BranchInfo struct {
		Name     string `json:"name"`
		Tracking string `json:"tracking,omitempty"`
	}

	RecentRepository struct {
		URL      string    `json:"url"`
		Branch   string    `json:"branch"`
		LastUsed time.Time `json:"lastUsed"`
	}
)
