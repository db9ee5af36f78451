package controller

import (
	"context"

	"github.com/madpaura/docker-webui/model"
)

type (
	// Workflower is the full workflow surface the HTTP layer drives:
	// clone, edit, build, publish, commit, plus the read-only listings
	// around them.
	Workflower interface {
		NewSession() *model.Session
		CloneRepo(ctx context.Context, session *model.Session, url, branch string) error
		RestoreSession(ctx context.Context, session *model.Session)
		RepoInfo(ctx context.Context, session *model.Session) (*model.CommitInfo, *model.BranchInfo, error)
		RecentRepositories(ctx context.Context, limit int) ([]model.RecentRepository, error)
		LoadDockerfile(ctx context.Context, session *model.Session) (string, error)
		SelectDockerfile(ctx context.Context, session *model.Session, path string) (string, error)
		SaveDockerfile(ctx context.Context, session *model.Session, content string) error
		BuildImage(ctx context.Context, session *model.Session, repository, tag, buildArgsText string) (*model.BuildResult, error)
		PublishImage(ctx context.Context, session *model.Session, repository, tag string) (string, error)
		CommitDockerfile(ctx context.Context, session *model.Session, message string) error
		ListImages(ctx context.Context) ([]model.ImageInfo, error)
		RegistryStatus(ctx context.Context) error
		RegistryRepositories(ctx context.Context) ([]string, error)
		RegistryTags(ctx context.Context, repository string) ([]string, error)
		RegistryImages(ctx context.Context) ([]model.RegistryImage, error)
		DeleteRegistryImage(ctx context.Context, repository, tag string) error
		GetSettings(ctx context.Context) (map[string]string, error)
		UpdateSettings(ctx context.Context, session *model.Session, values map[string]string) error
	}
)
