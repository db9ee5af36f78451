package model

import (
	"time"

	"github.com/google/uuid"
)

type SessionState string

const (
	SessionStateNoRepo           SessionState = "no_repo"
	SessionStateCloned           SessionState = "cloned"
	SessionStateDockerfileLoaded SessionState = "dockerfile_loaded"
	SessionStateBuilt            SessionState = "built"
	SessionStatePublished        SessionState = "published"
)

const DefaultTag = "latest"

type (
	// Session carries the whole editing workflow for one repository:
	// which repo is checked out, which Dockerfile is active, what the
	// last build produced. Every controller operation takes it
	// explicitly.
	Session struct {
		ID                   string       `json:"id"`
		State                SessionState `json:"state"`
		GitRepoURL           string       `json:"gitRepoURL,omitempty"`
		GitBranch            string       `json:"gitBranch,omitempty"`
		DockerfilePath       string       `json:"dockerfilePath"`
		DockerfileContent    string       `json:"dockerfileContent,omitempty"`
		AvailableDockerfiles []string     `json:"availableDockerfiles,omitempty"`
		Repository           string       `json:"repository,omitempty"`
		Tag                  string       `json:"tag"`
		RegistryURL          string       `json:"registryURL,omitempty"`
		Build                *BuildResult `json:"build,omitempty"`
		CreatedAt            time.Time    `json:"createdAt"`
	}
)

func NewSession(defaultDockerfile string) *Session {
	return &Session{
		ID:             uuid.NewString(),
		State:          SessionStateNoRepo,
		DockerfilePath: defaultDockerfile,
		Tag:            DefaultTag,
		CreatedAt:      time.Now(),
	}
}

// HasFreshBuild reports whether the session holds a successful build
// that was not invalidated by a later Dockerfile save.
func (s *Session) HasFreshBuild() bool {
	return s.Build != nil && s.Build.Success && s.Build.ImageID != ""
}

// DockerfileReady reports whether a build file has been loaded and is
// available for building this session.
func (s *Session) DockerfileReady() bool {
	switch s.State {
	case SessionStateDockerfileLoaded, SessionStateBuilt, SessionStatePublished:
		return true
	}
	return false
}

// Reset discards all repository-scoped state. Used when the session is
// pointed at a different repository or branch.
func (s *Session) Reset(defaultDockerfile string) {
	s.State = SessionStateNoRepo
	s.GitRepoURL = ""
	s.GitBranch = ""
	s.DockerfilePath = defaultDockerfile
	s.DockerfileContent = ""
	s.AvailableDockerfiles = nil
	s.Build = nil
}
