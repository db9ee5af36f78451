package controller

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/madpaura/docker-webui/model"
	"github.com/madpaura/docker-webui/pkg/format"
	"github.com/madpaura/docker-webui/pkg/validate"
)

// BuildImage validates the image coordinates and build arguments,
// then runs a build of the session's active Dockerfile. The build
// context is the directory containing the Dockerfile. Validation
// failures never reach the engine.
func (c *Controller) BuildImage(ctx context.Context, session *model.Session, repository, tag, buildArgsText string) (*model.BuildResult, error) {
	ws, err := c.workspace(session)
	if err != nil {
		return nil, err
	}
	if c.builder == nil {
		return nil, ErrMissingBuilder
	}
	if !session.DockerfileReady() {
		return nil, ErrNoDockerfile
	}

	if err := validate.ImageRepository(repository); err != nil {
		return nil, err
	}
	if err := validate.ImageTag(tag); err != nil {
		return nil, err
	}
	args, err := ParseBuildArgs(buildArgsText)
	if err != nil {
		return nil, err
	}

	fullTag := fmt.Sprintf("%s:%s", repository, tag)
	dockerfile := filepath.Join(ws.Path(), filepath.FromSlash(session.DockerfilePath))
	contextDir := filepath.Dir(dockerfile)

	c.l.Infof("building %s from %s", fullTag, dockerfile)
	result, err := c.builder.Build(ctx, contextDir, filepath.Base(dockerfile), fullTag, args)
	if err != nil {
		c.l.Errorf("error building %s: %v", fullTag, err)
		return nil, err
	}

	session.Build = result
	session.Repository = repository
	session.Tag = tag
	session.State = model.SessionStateBuilt
	c.rememberImageName(ctx, repository, tag)

	if result.Success {
		c.l.Infof("image built successfully: id=%s", result.ImageID)
	} else {
		c.l.Errorf("build of %s failed", fullTag)
	}
	c.notify(session, model.EventBuilt, fullTag, result.Success, "")
	return result, nil
}

// PublishImage tags the session's last built image for the configured
// registry and pushes it. It requires a successful build that was not
// invalidated by a later edit; a tag failure stops before any push.
func (c *Controller) PublishImage(ctx context.Context, session *model.Session, repository, tag string) (string, error) {
	if c.builder == nil {
		return "", ErrMissingBuilder
	}
	if err := validate.ImageRepository(repository); err != nil {
		return "", err
	}
	if err := validate.ImageTag(tag); err != nil {
		return "", err
	}
	if !session.HasFreshBuild() {
		return "", ErrNothingToPublish
	}

	registryURL := session.RegistryURL
	if registryURL == "" {
		registryURL = c.opts.RegistryURL
	}
	ref := format.RegistryRef(registryURL, repository, tag)

	c.l.Infof("pushing image %s as %s", session.Build.ImageID, ref)
	if err := c.builder.Tag(ctx, session.Build.ImageID, ref); err != nil {
		c.l.Errorf("error tagging image %s as %s: %v", session.Build.ImageID, ref, err)
		c.notify(session, model.EventPublished, ref, false, err.Error())
		return "", err
	}

	if _, err := c.builder.Push(ctx, ref); err != nil {
		c.l.Errorf("error pushing image %s: %v", ref, err)
		c.notify(session, model.EventPublished, ref, false, err.Error())
		return "", err
	}

	session.State = model.SessionStatePublished
	if c.settings != nil {
		if err := c.settings.Set(ctx, model.SettingRegistryURL, registryURL); err != nil {
			c.l.Warnf("error persisting registry url: %v", err)
		}
	}
	c.l.Infof("pushed %s successfully", ref)
	c.notify(session, model.EventPublished, ref, true, "")
	return ref, nil
}

// ListImages reports the images known to the local engine.
func (c *Controller) ListImages(ctx context.Context) ([]model.ImageInfo, error) {
	if c.builder == nil {
		return nil, ErrMissingBuilder
	}
	return c.builder.ListImages(ctx)
}

func (c *Controller) RegistryStatus(ctx context.Context) error {
	if c.registry == nil {
		return ErrMissingRegistry
	}
	return c.registry.CheckConnection(ctx)
}

func (c *Controller) RegistryRepositories(ctx context.Context) ([]string, error) {
	if c.registry == nil {
		return nil, ErrMissingRegistry
	}
	return c.registry.ListRepositories(ctx)
}

func (c *Controller) RegistryTags(ctx context.Context, repository string) ([]string, error) {
	if c.registry == nil {
		return nil, ErrMissingRegistry
	}
	if err := validate.ImageRepository(repository); err != nil {
		return nil, err
	}
	return c.registry.ListTags(ctx, repository)
}

// RegistryImages aggregates every repository and tag the registry
// holds, with sizes and creation times.
func (c *Controller) RegistryImages(ctx context.Context) ([]model.RegistryImage, error) {
	if c.registry == nil {
		return nil, ErrMissingRegistry
	}
	return c.registry.ListImages(ctx)
}

// DeleteRegistryImage removes one tag from the registry through its
// digest.
func (c *Controller) DeleteRegistryImage(ctx context.Context, repository, tag string) error {
	if c.registry == nil {
		return ErrMissingRegistry
	}
	if err := validate.ImageRepository(repository); err != nil {
		return err
	}
	if err := validate.ImageTag(tag); err != nil {
		return err
	}
	c.l.Infof("deleting %s:%s from registry", repository, tag)
	return c.registry.DeleteImage(ctx, repository, tag)
}

// rememberImageName persists the last used repository and tag.
// Failures are logged, not surfaced.
func (c *Controller) rememberImageName(ctx context.Context, repository, tag string) {
	if c.settings == nil {
		return
	}
	if err := c.settings.Set(ctx, model.SettingRepository, repository); err != nil {
		c.l.Warnf("error persisting repository name: %v", err)
	}
	if err := c.settings.Set(ctx, model.SettingTag, tag); err != nil {
		c.l.Warnf("error persisting tag: %v", err)
	}
}
