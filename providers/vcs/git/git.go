package git

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/sirupsen/logrus"

	"github.com/madpaura/docker-webui/model"
	"github.com/madpaura/docker-webui/pkg/format"
	"github.com/madpaura/docker-webui/pkg/fsutil"
	"github.com/madpaura/docker-webui/providers/vcs"
)

var _ vcs.Provider = new(GitProvider)

type GitProvider struct {
	l        *logrus.Logger
	workDir  string
	username string
	email    string
	token    string
}

func NewGitProvider(workDir, username, email, token string, l *logrus.Logger) *GitProvider {
	return &GitProvider{
		l:        l,
		workDir:  workDir,
		username: username,
		email:    email,
		token:    token,
	}
}

// LocalPath maps a repository URL to its checkout directory: the work
// directory joined with the last URL segment, .git suffix removed.
func (p *GitProvider) LocalPath(url string) string {
	return filepath.Join(p.workDir, format.RepoName(url))
}

// authURL embeds the access token into https clone URLs so the stored
// origin remote stays authenticated for later pulls and pushes.
func (p *GitProvider) authURL(url string) string {
	if p.token == "" || !strings.HasPrefix(url, "https://") {
		return url
	}
	return "https://" + p.token + "@" + strings.TrimPrefix(url, "https://")
}

// Open opens the checkout of url without any network access. It fails
// when the repository was never cloned into the work directory.
func (p *GitProvider) Open(url string) (vcs.Workspace, error) {
	path := p.LocalPath(url)
	repo, err := gogit.PlainOpen(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	return p.newWorkspace(repo, path), nil
}

// CloneOrPull opens and pulls the checkout when it already exists,
// otherwise clones url at branch into the work directory.
func (p *GitProvider) CloneOrPull(ctx context.Context, url, branch string) (vcs.Workspace, error) {
	path := p.LocalPath(url)

	if fsutil.Exists(filepath.Join(path, ".git")) {
		p.l.Debugf("gitProvider.CloneOrPull: opening existing checkout %s", path)
		repo, err := gogit.PlainOpen(path)
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", path, err)
		}

		wt, err := repo.Worktree()
		if err != nil {
			return nil, fmt.Errorf("opening worktree of %s: %w", path, err)
		}

		err = wt.PullContext(ctx, &gogit.PullOptions{RemoteName: "origin"})
		if err != nil && !errors.Is(err, gogit.NoErrAlreadyUpToDate) {
			return nil, fmt.Errorf("pulling %s: %w", url, err)
		}

		return p.newWorkspace(repo, path), nil
	}

	if err := fsutil.EnsureDir(p.workDir); err != nil {
		return nil, err
	}

	opts := &gogit.CloneOptions{URL: p.authURL(url)}
	if branch != "" {
		opts.ReferenceName = plumbing.NewBranchReferenceName(branch)
		opts.SingleBranch = true
	}

	p.l.Infof("gitProvider.CloneOrPull: cloning %s (branch %q) into %s", url, branch, path)
	repo, err := gogit.PlainCloneContext(ctx, path, false, opts)
	if err != nil {
		return nil, fmt.Errorf("cloning %s: %w", url, err)
	}

	return p.newWorkspace(repo, path), nil
}

func (p *GitProvider) newWorkspace(repo *gogit.Repository, path string) *Workspace {
	return &Workspace{
		l:        p.l,
		repo:     repo,
		path:     path,
		username: p.username,
		email:    p.email,
	}
}

var _ vcs.Workspace = new(Workspace)

type Workspace struct {
	l        *logrus.Logger
	repo     *gogit.Repository
	path     string
	username string
	email    string
}

func (w *Workspace) Path() string {
	return w.path
}

func (w *Workspace) ReadFile(relPath string) (string, error) {
	return fsutil.ReadFile(filepath.Join(w.path, relPath))
}

// WriteFile creates missing parent directories, so new Dockerfiles can
// be saved into paths that do not exist yet.
func (w *Workspace) WriteFile(relPath, content string) error {
	return fsutil.WriteFile(filepath.Join(w.path, relPath), content)
}

// DiscoverBuildFiles walks the checkout and returns every Dockerfile
// candidate as a path relative to the checkout root, in walk order.
// The .git directory is skipped.
func (w *Workspace) DiscoverBuildFiles() ([]string, error) {
	var found []string
	err := filepath.WalkDir(w.path, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		name := d.Name()
		if name == "Dockerfile" || strings.HasSuffix(name, ".dockerfile") || strings.HasSuffix(name, ".Dockerfile") {
			rel, err := filepath.Rel(w.path, path)
			if err != nil {
				return err
			}
			found = append(found, filepath.ToSlash(rel))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s for dockerfiles: %w", w.path, err)
	}
	return found, nil
}

// Commit stages relPath only and records a commit. When staging leaves
// the index unchanged the commit is refused with ErrNothingToCommit.
func (w *Workspace) Commit(message, relPath string) error {
	wt, err := w.repo.Worktree()
	if err != nil {
		return fmt.Errorf("opening worktree: %w", err)
	}

	if _, err := wt.Add(relPath); err != nil {
		return fmt.Errorf("staging %s: %w", relPath, err)
	}

	status, err := wt.Status()
	if err != nil {
		return fmt.Errorf("reading status: %w", err)
	}
	staged := status.File(filepath.ToSlash(relPath)).Staging
	if staged == gogit.Unmodified || staged == gogit.Untracked {
		return vcs.ErrNothingToCommit
	}

	opts := &gogit.CommitOptions{}
	if w.username != "" && w.email != "" {
		opts.Author = &object.Signature{
			Name:  w.username,
			Email: w.email,
			When:  time.Now(),
		}
	}

	hash, err := wt.Commit(message, opts)
	if err != nil {
		return fmt.Errorf("committing %s: %w", relPath, err)
	}
	w.l.Infof("gitWorkspace.Commit: committed %s as %s", relPath, hash.String()[:8])
	return nil
}

// Push sends the current branch to origin. Already-up-to-date is
// success, a remote rejection maps to ErrPushRejected.
func (w *Workspace) Push(ctx context.Context) error {
	err := w.repo.PushContext(ctx, &gogit.PushOptions{RemoteName: "origin"})
	if err == nil || errors.Is(err, gogit.NoErrAlreadyUpToDate) {
		return nil
	}
	if strings.Contains(err.Error(), "non-fast-forward") || strings.Contains(err.Error(), "rejected") {
		return fmt.Errorf("%w: %s", vcs.ErrPushRejected, err)
	}
	return fmt.Errorf("pushing to origin: %w", err)
}

func (w *Workspace) LatestCommit() (*model.CommitInfo, error) {
	head, err := w.repo.Head()
	if err != nil {
		return nil, fmt.Errorf("reading HEAD: %w", err)
	}
	commit, err := w.repo.CommitObject(head.Hash())
	if err != nil {
		return nil, fmt.Errorf("reading commit %s: %w", head.Hash(), err)
	}

	full := head.Hash().String()
	return &model.CommitInfo{
		ShortID: full[:8],
		FullID:  full,
		Message: strings.TrimSpace(commit.Message),
		Author:  fmt.Sprintf("%s <%s>", commit.Author.Name, commit.Author.Email),
		Date:    commit.Author.When.Format("2006-01-02 15:04:05"),
	}, nil
}

func (w *Workspace) CurrentBranch() (*model.BranchInfo, error) {
	head, err := w.repo.Head()
	if err != nil {
		return nil, fmt.Errorf("reading HEAD: %w", err)
	}

	name := head.Name().Short()
	info := &model.BranchInfo{Name: name}

	cfg, err := w.repo.Config()
	if err != nil {
		return info, nil
	}
	if b, ok := cfg.Branches[name]; ok && b.Remote != "" && b.Merge != "" {
		info.Tracking = fmt.Sprintf("%s/%s", b.Remote, b.Merge.Short())
	}
	return info, nil
}
