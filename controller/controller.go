package controller

import (
	"time"

	"github.com/madpaura/docker-webui/model"
	"github.com/madpaura/docker-webui/providers/builders"
	"github.com/madpaura/docker-webui/providers/registry"
	"github.com/madpaura/docker-webui/providers/vcs"
	"github.com/madpaura/docker-webui/repo"
	"github.com/sirupsen/logrus"
)

var _ Workflower = new(Controller)

const defaultCommitMessage = "Update Dockerfile"

type (
	// Notifier publishes workflow events to an external broker. A nil
	// notifier disables notifications without affecting any operation.
	Notifier interface {
		Publish(event model.Event) error
	}

	// Options carries the workflow defaults read from configuration.
	Options struct {
		DefaultDockerfile string
		RegistryURL       string
		RecentLimit       int
	}
)

type Controller struct {
	vcs      vcs.Provider
	builder  builders.Builder
	registry registry.Registryer
	settings repo.SettingsRepoer
	notifier Notifier

	// workspaces maps session IDs to their checkouts. Access is
	// serialized by the caller, one workflow event at a time.
	workspaces map[string]vcs.Workspace

	opts Options
	l    *logrus.Logger
}

func NewController(opts Options, log *logrus.Logger) *Controller {
	if opts.DefaultDockerfile == "" {
		opts.DefaultDockerfile = "Dockerfile"
	}
	return &Controller{
		workspaces: make(map[string]vcs.Workspace),
		opts:       opts,
		l:          log,
	}
}

func (c *Controller) AddVCS(p vcs.Provider) {
	c.vcs = p
}

func (c *Controller) AddBuilder(b builders.Builder) {
	c.builder = b
}

func (c *Controller) AddRegistry(reg registry.Registryer) {
	c.registry = reg
}

func (c *Controller) AddSettings(s repo.SettingsRepoer) {
	c.settings = s
}

func (c *Controller) AddNotifier(n Notifier) {
	c.notifier = n
}

// NewSession creates a fresh session carrying the configured defaults.
func (c *Controller) NewSession() *model.Session {
	session := model.NewSession(c.opts.DefaultDockerfile)
	session.RegistryURL = c.opts.RegistryURL
	return session
}

func (c *Controller) workspace(session *model.Session) (vcs.Workspace, error) {
	ws, ok := c.workspaces[session.ID]
	if !ok {
		return nil, ErrNoRepository
	}
	return ws, nil
}

// notify publishes an event when a notifier is configured. Publish
// failures are logged and never fail the operation that emitted them.
func (c *Controller) notify(session *model.Session, kind model.EventKind, image string, success bool, message string) {
	if c.notifier == nil {
		return
	}
	event := model.Event{
		Kind:      kind,
		SessionID: session.ID,
		Repo:      session.GitRepoURL,
		Branch:    session.GitBranch,
		Image:     image,
		Success:   success,
		Message:   message,
		At:        time.Now(),
	}
	if err := c.notifier.Publish(event); err != nil {
		c.l.Warnf("error publishing %s event: %v", kind, err)
	}
}
