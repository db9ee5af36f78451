package controller

import (
	"context"
	"fmt"

	"github.com/madpaura/docker-webui/model"
)

// CommitDockerfile commits the active build file with message and
// pushes the branch. A push failure is reported but does not undo the
// commit, which stays durable in the local checkout.
func (c *Controller) CommitDockerfile(ctx context.Context, session *model.Session, message string) error {
	ws, err := c.workspace(session)
	if err != nil {
		return err
	}
	if !session.DockerfileReady() {
		return ErrNoDockerfile
	}
	if message == "" {
		message = defaultCommitMessage
	}

	c.l.Infof("committing %s: %q", session.DockerfilePath, message)
	if err := ws.Commit(message, session.DockerfilePath); err != nil {
		c.l.Errorf("error committing %s: %v", session.DockerfilePath, err)
		c.notify(session, model.EventCommitted, "", false, err.Error())
		return err
	}

	if session.State == model.SessionStatePublished {
		session.State = model.SessionStateDockerfileLoaded
	}

	if err := ws.Push(ctx); err != nil {
		c.l.Errorf("error pushing to %s: %v", session.GitRepoURL, err)
		c.notify(session, model.EventCommitted, "", false, err.Error())
		return fmt.Errorf("changes committed but push failed: %w", err)
	}

	c.l.Infof("committed and pushed %s", session.DockerfilePath)
	c.notify(session, model.EventCommitted, "", true, message)
	return nil
}
