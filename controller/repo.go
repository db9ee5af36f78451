package controller

import (
	"context"
	"errors"
	"io/fs"

	"github.com/madpaura/docker-webui/model"
	"github.com/madpaura/docker-webui/pkg/validate"
	"github.com/madpaura/docker-webui/providers/vcs"
	"github.com/madpaura/docker-webui/repo"
)

// CloneRepo checks out url at branch and points the session at the
// checkout. An existing checkout is pulled instead of re-cloned.
// Switching the session to a different url or branch discards its
// Dockerfile content and build status first.
func (c *Controller) CloneRepo(ctx context.Context, session *model.Session, url, branch string) error {
	if c.vcs == nil {
		return ErrMissingVCS
	}
	if err := validate.GitURL(url); err != nil {
		return err
	}

	if session.GitRepoURL != "" && (session.GitRepoURL != url || session.GitBranch != branch) {
		c.l.Infof("session %s switching from %s <%s> to %s <%s>, resetting", session.ID, session.GitRepoURL, session.GitBranch, url, branch)
		session.Reset(c.opts.DefaultDockerfile)
		delete(c.workspaces, session.ID)
	}

	c.l.Infof("session %s is cloning %s at branch %s", session.ID, url, branch)
	ws, err := c.vcs.CloneOrPull(ctx, url, branch)
	if err != nil {
		c.l.Errorf("error cloning %s: %v", url, err)
		c.notify(session, model.EventCloned, "", false, err.Error())
		return err
	}

	c.adoptWorkspace(session, ws, url, branch)
	c.rememberRepo(ctx, url, branch)
	c.l.Infof("cloned %s successfully in %q", url, ws.Path())
	c.notify(session, model.EventCloned, "", true, "")
	return nil
}

// adoptWorkspace points the session at ws and discovers its build
// files. The first discovered file becomes the active one, the
// configured default when there is none.
func (c *Controller) adoptWorkspace(session *model.Session, ws vcs.Workspace, url, branch string) {
	c.workspaces[session.ID] = ws
	session.GitRepoURL = url
	session.GitBranch = branch
	session.State = model.SessionStateCloned

	dockerfiles, err := ws.DiscoverBuildFiles()
	if err != nil {
		c.l.Warnf("error discovering build files in %s: %v", ws.Path(), err)
	}
	session.AvailableDockerfiles = dockerfiles
	if len(dockerfiles) > 0 {
		session.DockerfilePath = dockerfiles[0]
	} else {
		session.DockerfilePath = c.opts.DefaultDockerfile
	}
}

// RestoreSession re-opens the repository a previous run was pointed
// at, reading the persisted url and branch. An existing checkout is
// opened without touching the network; only a missing one is cloned.
// Every failure is logged and swallowed so a stale preference never
// blocks startup.
func (c *Controller) RestoreSession(ctx context.Context, session *model.Session) {
	if c.settings == nil || c.vcs == nil {
		return
	}

	var url, branch string
	if err := c.settings.Get(ctx, model.SettingGitRepoURL, &url); err != nil {
		if !errors.Is(err, repo.ErrNotFound) {
			c.l.Warnf("error reading persisted repository url: %v", err)
		}
		return
	}
	if err := c.settings.Get(ctx, model.SettingGitBranch, &branch); err != nil && !errors.Is(err, repo.ErrNotFound) {
		c.l.Warnf("error reading persisted branch: %v", err)
	}

	if ws, err := c.vcs.Open(url); err == nil {
		c.l.Infof("restoring %s <%s> from existing checkout %s", url, branch, ws.Path())
		c.adoptWorkspace(session, ws, url, branch)
	} else if err := c.CloneRepo(ctx, session, url, branch); err != nil {
		c.l.Warnf("could not restore %s <%s>: %v", url, branch, err)
		return
	}

	if _, err := c.LoadDockerfile(ctx, session); err != nil {
		c.l.Warnf("could not reload dockerfile from %s: %v", url, err)
	}
}

// LoadDockerfile reads the active build file of the session's
// checkout. When the selected path does not exist it falls back to
// the first discovered build file.
func (c *Controller) LoadDockerfile(ctx context.Context, session *model.Session) (string, error) {
	ws, err := c.workspace(session)
	if err != nil {
		return "", err
	}

	content, err := ws.ReadFile(session.DockerfilePath)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return "", err
		}
		if len(session.AvailableDockerfiles) == 0 {
			return "", ErrNoDockerfileFound
		}
		fallback := session.AvailableDockerfiles[0]
		c.l.Infof("%s not found, falling back to %s", session.DockerfilePath, fallback)
		session.DockerfilePath = fallback
		content, err = ws.ReadFile(fallback)
		if err != nil {
			return "", err
		}
	}

	session.DockerfileContent = content
	session.State = model.SessionStateDockerfileLoaded
	return content, nil
}

// SelectDockerfile makes path the active build file and re-loads its
// content. The path must be one of the discovered build files.
func (c *Controller) SelectDockerfile(ctx context.Context, session *model.Session, path string) (string, error) {
	if _, err := c.workspace(session); err != nil {
		return "", err
	}

	known := false
	for _, candidate := range session.AvailableDockerfiles {
		if candidate == path {
			known = true
			break
		}
	}
	if !known {
		return "", ErrUnknownDockerfile
	}

	session.DockerfilePath = path
	return c.LoadDockerfile(ctx, session)
}

// SaveDockerfile validates and writes content to the active build
// file. A successful save invalidates any previous build result.
func (c *Controller) SaveDockerfile(ctx context.Context, session *model.Session, content string) error {
	ws, err := c.workspace(session)
	if err != nil {
		return err
	}
	if err := validate.Dockerfile(content); err != nil {
		return err
	}

	if err := ws.WriteFile(session.DockerfilePath, content); err != nil {
		c.l.Errorf("error writing %s: %v", session.DockerfilePath, err)
		return err
	}

	session.DockerfileContent = content
	session.Build = nil
	session.State = model.SessionStateDockerfileLoaded
	c.l.Infof("saved %s (%d bytes)", session.DockerfilePath, len(content))
	return nil
}

// RepoInfo reports the latest commit and current branch of the
// session's checkout.
func (c *Controller) RepoInfo(ctx context.Context, session *model.Session) (*model.CommitInfo, *model.BranchInfo, error) {
	ws, err := c.workspace(session)
	if err != nil {
		return nil, nil, err
	}

	commit, err := ws.LatestCommit()
	if err != nil {
		c.l.Errorf("error reading latest commit: %v", err)
		return nil, nil, err
	}
	branch, err := ws.CurrentBranch()
	if err != nil {
		c.l.Errorf("error reading current branch: %v", err)
		return nil, nil, err
	}
	return commit, branch, nil
}

// RecentRepositories lists the most recently used repositories,
// newest first. A non-positive limit uses the configured default.
func (c *Controller) RecentRepositories(ctx context.Context, limit int) ([]model.RecentRepository, error) {
	if c.settings == nil {
		return nil, ErrMissingSettings
	}
	if limit <= 0 {
		limit = c.opts.RecentLimit
	}
	return c.settings.RecentRepositories(ctx, limit)
}

// rememberRepo persists the clone target for the recents list and the
// next restore. Persistence failures are logged, not surfaced.
func (c *Controller) rememberRepo(ctx context.Context, url, branch string) {
	if c.settings == nil {
		return
	}
	if err := c.settings.Set(ctx, model.SettingGitRepoURL, url); err != nil {
		c.l.Warnf("error persisting repository url: %v", err)
	}
	if err := c.settings.Set(ctx, model.SettingGitBranch, branch); err != nil {
		c.l.Warnf("error persisting branch: %v", err)
	}
	if err := c.settings.RecordRepository(ctx, url, branch); err != nil {
		c.l.Warnf("error recording recent repository: %v", err)
	}
}
