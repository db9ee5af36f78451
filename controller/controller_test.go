package controller_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"testing"
	"time"

	"github.com/madpaura/docker-webui/controller"
	"github.com/madpaura/docker-webui/model"
	"github.com/madpaura/docker-webui/pkg/logger"
	"github.com/madpaura/docker-webui/providers/builders"
	"github.com/madpaura/docker-webui/providers/registry"
	"github.com/madpaura/docker-webui/providers/vcs"
	"github.com/madpaura/docker-webui/repo"
	"gotest.tools/assert"
)

const (
	testRepoURL  = "https://example.com/org/repo.git"
	otherRepoURL = "https://example.com/org/other.git"
)

var (
	_ vcs.Provider        = new(fakeVCS)
	_ vcs.Workspace       = new(fakeWorkspace)
	_ builders.Builder    = new(fakeBuilder)
	_ repo.SettingsRepoer = new(fakeSettings)
	_ registry.Registryer = new(fakeRegistry)
)

type committedFile struct {
	message string
	path    string
}

type fakeWorkspace struct {
	path        string
	files       map[string]string
	dockerfiles []string
	commits     []committedFile
	commitErr   error
	pushErr     error
	pushCalls   int
}

func (w *fakeWorkspace) Path() string { return w.path }

func (w *fakeWorkspace) ReadFile(relPath string) (string, error) {
	content, ok := w.files[relPath]
	if !ok {
		return "", fmt.Errorf("reading %s: %w", relPath, fs.ErrNotExist)
	}
	return content, nil
}

func (w *fakeWorkspace) WriteFile(relPath, content string) error {
	w.files[relPath] = content
	return nil
}

func (w *fakeWorkspace) DiscoverBuildFiles() ([]string, error) {
	return w.dockerfiles, nil
}

func (w *fakeWorkspace) Commit(message, relPath string) error {
	if w.commitErr != nil {
		return w.commitErr
	}
	w.commits = append(w.commits, committedFile{message: message, path: relPath})
	return nil
}

func (w *fakeWorkspace) Push(ctx context.Context) error {
	if w.pushErr != nil {
		return w.pushErr
	}
	w.pushCalls++
	return nil
}

func (w *fakeWorkspace) LatestCommit() (*model.CommitInfo, error) {
	return &model.CommitInfo{ShortID: "abcd1234", Message: "seed", Author: "dev <dev@example.com>"}, nil
}

func (w *fakeWorkspace) CurrentBranch() (*model.BranchInfo, error) {
	return &model.BranchInfo{Name: "main", Tracking: "origin/main"}, nil
}

type fakeVCS struct {
	workspaces map[string]*fakeWorkspace
	openable   bool
	cloneErr   error
	cloneCalls int
}

func (p *fakeVCS) LocalPath(url string) string {
	return filepath.Join("/tmp/checkouts", filepath.Base(url))
}

func (p *fakeVCS) Open(url string) (vcs.Workspace, error) {
	ws, ok := p.workspaces[url]
	if !p.openable || !ok {
		return nil, fmt.Errorf("opening %s: no checkout", url)
	}
	return ws, nil
}

func (p *fakeVCS) CloneOrPull(ctx context.Context, url, branch string) (vcs.Workspace, error) {
	p.cloneCalls++
	if p.cloneErr != nil {
		return nil, p.cloneErr
	}
	ws, ok := p.workspaces[url]
	if !ok {
		return nil, fmt.Errorf("repository %s not found", url)
	}
	return ws, nil
}

type fakeBuilder struct {
	result         *model.BuildResult
	buildErr       error
	tagErr         error
	pushErr        error
	buildCalls     int
	pushCalls      int
	taggedAs       string
	pushedRef      string
	lastContextDir string
	lastDockerfile string
	lastArgs       map[string]string
	images         []model.ImageInfo
}

func (b *fakeBuilder) Build(ctx context.Context, contextDir, dockerfile, tag string, args map[string]string) (*model.BuildResult, error) {
	b.buildCalls++
	b.lastContextDir = contextDir
	b.lastDockerfile = dockerfile
	b.lastArgs = args
	if b.buildErr != nil {
		return nil, b.buildErr
	}
	result := *b.result
	result.FullTag = tag
	result.At = time.Now()
	return &result, nil
}

func (b *fakeBuilder) Tag(ctx context.Context, source, target string) error {
	if b.tagErr != nil {
		return b.tagErr
	}
	b.taggedAs = target
	return nil
}

func (b *fakeBuilder) Push(ctx context.Context, ref string) (string, error) {
	b.pushCalls++
	if b.pushErr != nil {
		return "", b.pushErr
	}
	b.pushedRef = ref
	return "pushed " + ref, nil
}

func (b *fakeBuilder) ListImages(ctx context.Context) ([]model.ImageInfo, error) {
	return b.images, nil
}

type fakeSettings struct {
	values  map[string]string
	recents []model.RecentRepository
}

func (s *fakeSettings) Get(ctx context.Context, key string, out any) error {
	v, ok := s.values[key]
	if !ok {
		return repo.ErrNotFound
	}
	return json.Unmarshal([]byte(v), out)
}

func (s *fakeSettings) Set(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.values[key] = string(data)
	return nil
}

func (s *fakeSettings) Delete(ctx context.Context, key string) error {
	delete(s.values, key)
	return nil
}

func (s *fakeSettings) RecordRepository(ctx context.Context, url, branch string) error {
	for i, r := range s.recents {
		if r.URL == url {
			s.recents = append(s.recents[:i], s.recents[i+1:]...)
			break
		}
	}
	entry := model.RecentRepository{URL: url, Branch: branch, LastUsed: time.Now()}
	s.recents = append([]model.RecentRepository{entry}, s.recents...)
	return nil
}

func (s *fakeSettings) RecentRepositories(ctx context.Context, limit int) ([]model.RecentRepository, error) {
	if limit > len(s.recents) {
		limit = len(s.recents)
	}
	return s.recents[:limit], nil
}

type fakeRegistry struct {
	repos   []string
	tags    map[string][]string
	images  []model.RegistryImage
	deleted []string
}

func (r *fakeRegistry) CheckConnection(ctx context.Context) error { return nil }

func (r *fakeRegistry) ListRepositories(ctx context.Context) ([]string, error) {
	return r.repos, nil
}

func (r *fakeRegistry) ListTags(ctx context.Context, repository string) ([]string, error) {
	tags, ok := r.tags[repository]
	if !ok {
		return nil, registry.ErrRepositoryNotFound
	}
	return tags, nil
}

func (r *fakeRegistry) GetManifest(ctx context.Context, repository, tag string) (*registry.Manifest, error) {
	return &registry.Manifest{SchemaVersion: 2}, nil
}

func (r *fakeRegistry) DeleteImage(ctx context.Context, repository, tag string) error {
	r.deleted = append(r.deleted, repository+":"+tag)
	return nil
}

func (r *fakeRegistry) ListImages(ctx context.Context) ([]model.RegistryImage, error) {
	return r.images, nil
}

type fakeNotifier struct {
	events []model.Event
}

func (n *fakeNotifier) Publish(event model.Event) error {
	n.events = append(n.events, event)
	return nil
}

type fixture struct {
	c        *controller.Controller
	vcs      *fakeVCS
	ws       *fakeWorkspace
	otherWS  *fakeWorkspace
	builder  *fakeBuilder
	settings *fakeSettings
	registry *fakeRegistry
	notifier *fakeNotifier
	session  *model.Session
}

func setup(t *testing.T) *fixture {
	t.Helper()
	l := logger.NewLogger("debug", "text")

	ws := &fakeWorkspace{
		path:        t.TempDir(),
		files:       map[string]string{"Dockerfile": "FROM alpine\nRUN echo hi\n"},
		dockerfiles: []string{"Dockerfile"},
	}
	otherWS := &fakeWorkspace{
		path:        t.TempDir(),
		files:       map[string]string{"app.dockerfile": "FROM busybox\n"},
		dockerfiles: []string{"app.dockerfile"},
	}
	provider := &fakeVCS{workspaces: map[string]*fakeWorkspace{
		testRepoURL:  ws,
		otherRepoURL: otherWS,
	}}
	builder := &fakeBuilder{
		result: &model.BuildResult{Success: true, ImageID: "sha256:f00dfeed", Log: "done"},
	}
	settings := &fakeSettings{values: map[string]string{}}
	reg := &fakeRegistry{
		repos: []string{"myrepo"},
		tags:  map[string][]string{"myrepo": {"1.0", "latest"}},
	}
	notifier := &fakeNotifier{}

	c := controller.NewController(controller.Options{
		DefaultDockerfile: "Dockerfile",
		RegistryURL:       "registry:5000",
		RecentLimit:       5,
	}, l)
	c.AddVCS(provider)
	c.AddBuilder(builder)
	c.AddRegistry(reg)
	c.AddSettings(settings)
	c.AddNotifier(notifier)

	return &fixture{
		c:        c,
		vcs:      provider,
		ws:       ws,
		otherWS:  otherWS,
		builder:  builder,
		settings: settings,
		registry: reg,
		notifier: notifier,
		session:  c.NewSession(),
	}
}

func TestParseBuildArgs(t *testing.T) {
	t.Run("skips blanks and comments, last write wins", func(t *testing.T) {
		args, err := controller.ParseBuildArgs("A=1\n# c\n\nA=2")
		assert.NilError(t, err)
		assert.DeepEqual(t, args, map[string]string{"A": "2"})
	})

	t.Run("value may contain equals", func(t *testing.T) {
		args, err := controller.ParseBuildArgs("KEY=a=b")
		assert.NilError(t, err)
		assert.DeepEqual(t, args, map[string]string{"KEY": "a=b"})
	})

	t.Run("key and value are trimmed", func(t *testing.T) {
		args, err := controller.ParseBuildArgs("  VERSION = 1.0  ")
		assert.NilError(t, err)
		assert.DeepEqual(t, args, map[string]string{"VERSION": "1.0"})
	})

	t.Run("empty text is an empty set", func(t *testing.T) {
		args, err := controller.ParseBuildArgs("   \n  ")
		assert.NilError(t, err)
		assert.Equal(t, len(args), 0)
	})

	t.Run("line without equals is rejected", func(t *testing.T) {
		_, err := controller.ParseBuildArgs("NOVALUE")
		assert.ErrorContains(t, err, "NOVALUE")
	})

	t.Run("invalid key is rejected", func(t *testing.T) {
		_, err := controller.ParseBuildArgs("BAD KEY=x")
		assert.Assert(t, err != nil)
	})
}

// the full happy path: clone, load, edit, build, publish, commit
func TestWorkflow(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	assert.NilError(t, f.c.CloneRepo(ctx, f.session, testRepoURL, "main"))
	assert.Equal(t, f.session.State, model.SessionStateCloned)
	assert.Equal(t, f.session.GitRepoURL, testRepoURL)
	assert.Equal(t, f.session.DockerfilePath, "Dockerfile")
	assert.DeepEqual(t, f.session.AvailableDockerfiles, []string{"Dockerfile"})

	content, err := f.c.LoadDockerfile(ctx, f.session)
	assert.NilError(t, err)
	assert.Equal(t, content, "FROM alpine\nRUN echo hi\n")
	assert.Equal(t, f.session.State, model.SessionStateDockerfileLoaded)

	edited := "FROM alpine\nARG VERSION\nRUN echo hi\n"
	assert.NilError(t, f.c.SaveDockerfile(ctx, f.session, edited))
	assert.Equal(t, f.ws.files["Dockerfile"], edited)

	result, err := f.c.BuildImage(ctx, f.session, "myrepo", "1.0", "VERSION=1.0")
	assert.NilError(t, err)
	assert.Assert(t, result.Success)
	assert.Equal(t, result.FullTag, "myrepo:1.0")
	assert.Equal(t, f.session.State, model.SessionStateBuilt)
	assert.Equal(t, f.builder.lastDockerfile, "Dockerfile")
	assert.Equal(t, f.builder.lastContextDir, f.ws.path)
	assert.DeepEqual(t, f.builder.lastArgs, map[string]string{"VERSION": "1.0"})

	ref, err := f.c.PublishImage(ctx, f.session, "myrepo", "1.0")
	assert.NilError(t, err)
	assert.Equal(t, ref, "registry:5000/myrepo:1.0")
	assert.Equal(t, f.builder.taggedAs, ref)
	assert.Equal(t, f.builder.pushedRef, ref)
	assert.Equal(t, f.session.State, model.SessionStatePublished)

	assert.NilError(t, f.c.CommitDockerfile(ctx, f.session, "Add build version"))
	assert.Equal(t, len(f.ws.commits), 1)
	assert.Equal(t, f.ws.commits[0].message, "Add build version")
	assert.Equal(t, f.ws.commits[0].path, "Dockerfile")
	assert.Equal(t, f.ws.pushCalls, 1)
	assert.Equal(t, f.session.State, model.SessionStateDockerfileLoaded)

	values, err := f.c.GetSettings(ctx)
	assert.NilError(t, err)
	assert.Equal(t, values[model.SettingGitRepoURL], testRepoURL)
	assert.Equal(t, values[model.SettingGitBranch], "main")
	assert.Equal(t, values[model.SettingRepository], "myrepo")
	assert.Equal(t, values[model.SettingTag], "1.0")
	assert.Equal(t, values[model.SettingRegistryURL], "registry:5000")

	var kinds []model.EventKind
	for _, e := range f.notifier.events {
		kinds = append(kinds, e.Kind)
	}
	assert.DeepEqual(t, kinds, []model.EventKind{
		model.EventCloned, model.EventBuilt, model.EventPublished, model.EventCommitted,
	})
}

func TestCloneRepo(t *testing.T) {
	ctx := context.Background()

	t.Run("invalid url rejected before the provider", func(t *testing.T) {
		f := setup(t)
		err := f.c.CloneRepo(ctx, f.session, "not a url", "main")
		assert.Assert(t, err != nil)
		assert.Equal(t, f.vcs.cloneCalls, 0)
		assert.Equal(t, f.session.State, model.SessionStateNoRepo)
	})

	t.Run("clone failure keeps the session empty", func(t *testing.T) {
		f := setup(t)
		f.vcs.cloneErr = errors.New("authentication required")
		err := f.c.CloneRepo(ctx, f.session, testRepoURL, "main")
		assert.ErrorContains(t, err, "authentication required")
		assert.Equal(t, f.session.State, model.SessionStateNoRepo)
		assert.Equal(t, f.session.GitRepoURL, "")
	})

	t.Run("switching repository resets the session", func(t *testing.T) {
		f := setup(t)
		assert.NilError(t, f.c.CloneRepo(ctx, f.session, testRepoURL, "main"))
		_, err := f.c.LoadDockerfile(ctx, f.session)
		assert.NilError(t, err)
		_, err = f.c.BuildImage(ctx, f.session, "myrepo", "1.0", "")
		assert.NilError(t, err)
		assert.Assert(t, f.session.Build != nil)

		assert.NilError(t, f.c.CloneRepo(ctx, f.session, otherRepoURL, "main"))
		assert.Equal(t, f.session.GitRepoURL, otherRepoURL)
		assert.Equal(t, f.session.State, model.SessionStateCloned)
		assert.Equal(t, f.session.DockerfilePath, "app.dockerfile")
		assert.Equal(t, f.session.DockerfileContent, "")
		assert.Assert(t, f.session.Build == nil)
	})

	t.Run("recents are most recent first", func(t *testing.T) {
		f := setup(t)
		assert.NilError(t, f.c.CloneRepo(ctx, f.session, testRepoURL, "main"))
		assert.NilError(t, f.c.CloneRepo(ctx, f.session, otherRepoURL, "develop"))

		recents, err := f.c.RecentRepositories(ctx, 0)
		assert.NilError(t, err)
		assert.Equal(t, len(recents), 2)
		assert.Equal(t, recents[0].URL, otherRepoURL)
		assert.Equal(t, recents[0].Branch, "develop")
		assert.Equal(t, recents[1].URL, testRepoURL)
	})
}

func TestLoadDockerfile(t *testing.T) {
	ctx := context.Background()

	t.Run("no repository", func(t *testing.T) {
		f := setup(t)
		_, err := f.c.LoadDockerfile(ctx, f.session)
		assert.Assert(t, errors.Is(err, controller.ErrNoRepository))
	})

	t.Run("missing selection falls back to first discovered", func(t *testing.T) {
		f := setup(t)
		f.ws.files["extra.dockerfile"] = "FROM scratch\n"
		f.ws.dockerfiles = []string{"Dockerfile", "extra.dockerfile"}

		assert.NilError(t, f.c.CloneRepo(ctx, f.session, testRepoURL, "main"))
		_, err := f.c.SelectDockerfile(ctx, f.session, "extra.dockerfile")
		assert.NilError(t, err)

		delete(f.ws.files, "extra.dockerfile")
		content, err := f.c.LoadDockerfile(ctx, f.session)
		assert.NilError(t, err)
		assert.Equal(t, content, "FROM alpine\nRUN echo hi\n")
		assert.Equal(t, f.session.DockerfilePath, "Dockerfile")
	})

	t.Run("no build files at all", func(t *testing.T) {
		f := setup(t)
		f.ws.files = map[string]string{}
		f.ws.dockerfiles = nil

		assert.NilError(t, f.c.CloneRepo(ctx, f.session, testRepoURL, "main"))
		_, err := f.c.LoadDockerfile(ctx, f.session)
		assert.Assert(t, errors.Is(err, controller.ErrNoDockerfileFound))
		assert.Equal(t, f.session.State, model.SessionStateCloned)
	})

	t.Run("selecting an undiscovered file is rejected", func(t *testing.T) {
		f := setup(t)
		assert.NilError(t, f.c.CloneRepo(ctx, f.session, testRepoURL, "main"))
		_, err := f.c.SelectDockerfile(ctx, f.session, "nowhere/Dockerfile")
		assert.Assert(t, errors.Is(err, controller.ErrUnknownDockerfile))
	})
}

func TestSaveDockerfile(t *testing.T) {
	ctx := context.Background()

	t.Run("content without FROM is rejected", func(t *testing.T) {
		f := setup(t)
		assert.NilError(t, f.c.CloneRepo(ctx, f.session, testRepoURL, "main"))
		_, err := f.c.LoadDockerfile(ctx, f.session)
		assert.NilError(t, err)

		err = f.c.SaveDockerfile(ctx, f.session, "RUN echo hi")
		assert.Assert(t, err != nil)
		assert.Equal(t, f.ws.files["Dockerfile"], "FROM alpine\nRUN echo hi\n")
	})

	t.Run("save invalidates the previous build", func(t *testing.T) {
		f := setup(t)
		assert.NilError(t, f.c.CloneRepo(ctx, f.session, testRepoURL, "main"))
		_, err := f.c.LoadDockerfile(ctx, f.session)
		assert.NilError(t, err)
		_, err = f.c.BuildImage(ctx, f.session, "myrepo", "1.0", "")
		assert.NilError(t, err)
		assert.Assert(t, f.session.HasFreshBuild())

		assert.NilError(t, f.c.SaveDockerfile(ctx, f.session, "FROM alpine\nRUN echo bye\n"))
		assert.Assert(t, f.session.Build == nil)
		assert.Equal(t, f.session.State, model.SessionStateDockerfileLoaded)
	})
}

func TestBuildImage(t *testing.T) {
	ctx := context.Background()

	loaded := func(t *testing.T) *fixture {
		t.Helper()
		f := setup(t)
		assert.NilError(t, f.c.CloneRepo(ctx, f.session, testRepoURL, "main"))
		_, err := f.c.LoadDockerfile(ctx, f.session)
		assert.NilError(t, err)
		return f
	}

	t.Run("invalid repository never reaches the engine", func(t *testing.T) {
		f := loaded(t)
		_, err := f.c.BuildImage(ctx, f.session, "MYREPO", "1.0", "")
		assert.Assert(t, err != nil)
		assert.Equal(t, f.builder.buildCalls, 0)
	})

	t.Run("invalid tag never reaches the engine", func(t *testing.T) {
		f := loaded(t)
		_, err := f.c.BuildImage(ctx, f.session, "myrepo", "BAD TAG", "")
		assert.Assert(t, err != nil)
		assert.Equal(t, f.builder.buildCalls, 0)
	})

	t.Run("invalid build arg key never reaches the engine", func(t *testing.T) {
		f := loaded(t)
		_, err := f.c.BuildImage(ctx, f.session, "myrepo", "1.0", "BAD KEY=x")
		assert.Assert(t, err != nil)
		assert.Equal(t, f.builder.buildCalls, 0)
	})

	t.Run("build before load is rejected", func(t *testing.T) {
		f := setup(t)
		assert.NilError(t, f.c.CloneRepo(ctx, f.session, testRepoURL, "main"))
		_, err := f.c.BuildImage(ctx, f.session, "myrepo", "1.0", "")
		assert.Assert(t, errors.Is(err, controller.ErrNoDockerfile))
		assert.Equal(t, f.builder.buildCalls, 0)
	})

	t.Run("failed build is recorded, not an error", func(t *testing.T) {
		f := loaded(t)
		f.builder.result = &model.BuildResult{Success: false, Log: "step 2 failed"}

		result, err := f.c.BuildImage(ctx, f.session, "myrepo", "1.0", "")
		assert.NilError(t, err)
		assert.Assert(t, !result.Success)
		assert.Equal(t, f.session.State, model.SessionStateBuilt)
		assert.Assert(t, !f.session.HasFreshBuild())
	})
}

func TestPublishImage(t *testing.T) {
	ctx := context.Background()

	built := func(t *testing.T) *fixture {
		t.Helper()
		f := setup(t)
		assert.NilError(t, f.c.CloneRepo(ctx, f.session, testRepoURL, "main"))
		_, err := f.c.LoadDockerfile(ctx, f.session)
		assert.NilError(t, err)
		_, err = f.c.BuildImage(ctx, f.session, "myrepo", "1.0", "")
		assert.NilError(t, err)
		return f
	}

	t.Run("publish without a build", func(t *testing.T) {
		f := setup(t)
		_, err := f.c.PublishImage(ctx, f.session, "myrepo", "1.0")
		assert.Assert(t, errors.Is(err, controller.ErrNothingToPublish))
	})

	t.Run("editing after a build requires a rebuild", func(t *testing.T) {
		f := built(t)
		assert.NilError(t, f.c.SaveDockerfile(ctx, f.session, "FROM alpine\nRUN echo bye\n"))

		_, err := f.c.PublishImage(ctx, f.session, "myrepo", "1.0")
		assert.Assert(t, errors.Is(err, controller.ErrNothingToPublish))
		assert.Equal(t, f.builder.pushCalls, 0)
	})

	t.Run("failed build cannot be published", func(t *testing.T) {
		f := built(t)
		f.builder.result = &model.BuildResult{Success: false, Log: "boom"}
		_, err := f.c.BuildImage(ctx, f.session, "myrepo", "1.0", "")
		assert.NilError(t, err)

		_, err = f.c.PublishImage(ctx, f.session, "myrepo", "1.0")
		assert.Assert(t, errors.Is(err, controller.ErrNothingToPublish))
	})

	t.Run("tag failure stops before push", func(t *testing.T) {
		f := built(t)
		f.builder.tagErr = errors.New("tag refused")

		_, err := f.c.PublishImage(ctx, f.session, "myrepo", "1.0")
		assert.ErrorContains(t, err, "tag refused")
		assert.Equal(t, f.builder.pushCalls, 0)
		assert.Equal(t, f.session.State, model.SessionStateBuilt)
	})
}

func TestCommitDockerfile(t *testing.T) {
	ctx := context.Background()

	loaded := func(t *testing.T) *fixture {
		t.Helper()
		f := setup(t)
		assert.NilError(t, f.c.CloneRepo(ctx, f.session, testRepoURL, "main"))
		_, err := f.c.LoadDockerfile(ctx, f.session)
		assert.NilError(t, err)
		return f
	}

	t.Run("empty message gets a default", func(t *testing.T) {
		f := loaded(t)
		assert.NilError(t, f.c.CommitDockerfile(ctx, f.session, ""))
		assert.Equal(t, f.ws.commits[0].message, "Update Dockerfile")
	})

	t.Run("nothing to commit is surfaced", func(t *testing.T) {
		f := loaded(t)
		f.ws.commitErr = vcs.ErrNothingToCommit
		err := f.c.CommitDockerfile(ctx, f.session, "noop")
		assert.Assert(t, errors.Is(err, vcs.ErrNothingToCommit))
		assert.Equal(t, f.ws.pushCalls, 0)
	})

	t.Run("push failure keeps the commit", func(t *testing.T) {
		f := loaded(t)
		f.ws.pushErr = vcs.ErrPushRejected

		err := f.c.CommitDockerfile(ctx, f.session, "local only")
		assert.Assert(t, errors.Is(err, vcs.ErrPushRejected))
		assert.ErrorContains(t, err, "committed")
		assert.Equal(t, len(f.ws.commits), 1)
	})
}

func TestRestoreSession(t *testing.T) {
	ctx := context.Background()

	t.Run("restores the persisted repository", func(t *testing.T) {
		f := setup(t)
		assert.NilError(t, f.settings.Set(ctx, model.SettingGitRepoURL, testRepoURL))
		assert.NilError(t, f.settings.Set(ctx, model.SettingGitBranch, "main"))

		f.c.RestoreSession(ctx, f.session)
		assert.Equal(t, f.session.State, model.SessionStateDockerfileLoaded)
		assert.Equal(t, f.session.GitRepoURL, testRepoURL)
		assert.Equal(t, f.session.DockerfileContent, "FROM alpine\nRUN echo hi\n")
	})

	t.Run("existing checkout restores without network", func(t *testing.T) {
		f := setup(t)
		assert.NilError(t, f.settings.Set(ctx, model.SettingGitRepoURL, testRepoURL))
		assert.NilError(t, f.settings.Set(ctx, model.SettingGitBranch, "main"))
		f.vcs.openable = true
		f.vcs.cloneErr = errors.New("network is down")

		f.c.RestoreSession(ctx, f.session)
		assert.Equal(t, f.session.State, model.SessionStateDockerfileLoaded)
		assert.Equal(t, f.vcs.cloneCalls, 0)
	})

	t.Run("nothing persisted leaves the session alone", func(t *testing.T) {
		f := setup(t)
		f.c.RestoreSession(ctx, f.session)
		assert.Equal(t, f.session.State, model.SessionStateNoRepo)
	})

	t.Run("clone failure is swallowed", func(t *testing.T) {
		f := setup(t)
		assert.NilError(t, f.settings.Set(ctx, model.SettingGitRepoURL, testRepoURL))
		assert.NilError(t, f.settings.Set(ctx, model.SettingGitBranch, "main"))
		f.vcs.cloneErr = errors.New("remote is gone")

		f.c.RestoreSession(ctx, f.session)
		assert.Equal(t, f.session.State, model.SessionStateNoRepo)
	})
}

func TestUpdateSettings(t *testing.T) {
	ctx := context.Background()

	t.Run("persists and mirrors into the session", func(t *testing.T) {
		f := setup(t)
		err := f.c.UpdateSettings(ctx, f.session, map[string]string{
			model.SettingRepository:  "otherrepo",
			model.SettingTag:         "2.0",
			model.SettingRegistryURL: "localhost:5000",
		})
		assert.NilError(t, err)
		assert.Equal(t, f.session.Repository, "otherrepo")
		assert.Equal(t, f.session.Tag, "2.0")
		assert.Equal(t, f.session.RegistryURL, "localhost:5000")

		values, err := f.c.GetSettings(ctx)
		assert.NilError(t, err)
		assert.Equal(t, values[model.SettingRepository], "otherrepo")
	})

	t.Run("unknown key is rejected", func(t *testing.T) {
		f := setup(t)
		err := f.c.UpdateSettings(ctx, f.session, map[string]string{"theme": "dark"})
		assert.Assert(t, errors.Is(err, controller.ErrUnknownSettingKey))
	})

	t.Run("invalid tag is rejected before persisting", func(t *testing.T) {
		f := setup(t)
		err := f.c.UpdateSettings(ctx, f.session, map[string]string{model.SettingTag: "NOT OK"})
		assert.Assert(t, err != nil)
		_, ok := f.settings.values[model.SettingTag]
		assert.Assert(t, !ok)
	})
}

func TestRegistryOperations(t *testing.T) {
	ctx := context.Background()

	t.Run("delete validates the coordinates first", func(t *testing.T) {
		f := setup(t)
		err := f.c.DeleteRegistryImage(ctx, "MYREPO", "1.0")
		assert.Assert(t, err != nil)
		assert.Equal(t, len(f.registry.deleted), 0)

		assert.NilError(t, f.c.DeleteRegistryImage(ctx, "myrepo", "1.0"))
		assert.DeepEqual(t, f.registry.deleted, []string{"myrepo:1.0"})
	})

	t.Run("tags pass through", func(t *testing.T) {
		f := setup(t)
		tags, err := f.c.RegistryTags(ctx, "myrepo")
		assert.NilError(t, err)
		assert.DeepEqual(t, tags, []string{"1.0", "latest"})
	})

	t.Run("missing registry is reported", func(t *testing.T) {
		l := logger.NewLogger("debug", "text")
		bare := controller.NewController(controller.Options{}, l)
		err := bare.RegistryStatus(ctx)
		assert.Assert(t, errors.Is(err, controller.ErrMissingRegistry))
	})
}
