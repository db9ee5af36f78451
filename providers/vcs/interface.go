package vcs

import (
	"context"
	"errors"

	"github.com/madpaura/docker-webui/model"
)

var (
	ErrNothingToCommit = errors.New("nothing to commit")
	ErrPushRejected    = errors.New("push rejected by remote")
)

type (
	// Provider materializes remote repositories as local checkouts
	// under a work directory. The checkout location is a pure function
	// of the repository URL, so repeated calls land on the same path.
	Provider interface {
		LocalPath(url string) string
		// Open opens an existing checkout without touching the network.
		Open(url string) (Workspace, error)
		CloneOrPull(ctx context.Context, url, branch string) (Workspace, error)
	}

	// Workspace is one local checkout. File paths are relative to its
	// root.
	Workspace interface {
		Path() string
		ReadFile(relPath string) (string, error)
		WriteFile(relPath, content string) error
		DiscoverBuildFiles() ([]string, error)
		Commit(message, relPath string) error
		Push(ctx context.Context) error
		LatestCommit() (*model.CommitInfo, error)
		CurrentBranch() (*model.BranchInfo, error)
	}
)
