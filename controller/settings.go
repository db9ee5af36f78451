package controller

import (
	"context"
	"errors"
	"fmt"

	"github.com/madpaura/docker-webui/model"
	"github.com/madpaura/docker-webui/pkg/validate"
	"github.com/madpaura/docker-webui/repo"
)

// settingKeys are the preference keys exposed over the API.
var settingKeys = []string{
	model.SettingGitRepoURL,
	model.SettingGitBranch,
	model.SettingRepository,
	model.SettingTag,
	model.SettingRegistryURL,
}

// GetSettings reads every persisted preference, omitting missing keys.
func (c *Controller) GetSettings(ctx context.Context) (map[string]string, error) {
	if c.settings == nil {
		return nil, ErrMissingSettings
	}

	values := make(map[string]string)
	for _, key := range settingKeys {
		var v string
		if err := c.settings.Get(ctx, key, &v); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				continue
			}
			return nil, err
		}
		values[key] = v
	}
	return values, nil
}

// UpdateSettings validates and persists the given preferences and
// mirrors them into the session defaults. Only the image name, tag
// and registry url can be set this way; the repository url and branch
// are persisted by the clone flow.
func (c *Controller) UpdateSettings(ctx context.Context, session *model.Session, values map[string]string) error {
	if c.settings == nil {
		return ErrMissingSettings
	}

	for key, value := range values {
		switch key {
		case model.SettingRepository:
			if err := validate.ImageRepository(value); err != nil {
				return err
			}
		case model.SettingTag:
			if err := validate.ImageTag(value); err != nil {
				return err
			}
		case model.SettingRegistryURL:
			if err := validate.RegistryURL(value); err != nil {
				return err
			}
		default:
			return fmt.Errorf("%w: %s", ErrUnknownSettingKey, key)
		}
	}

	for key, value := range values {
		if err := c.settings.Set(ctx, key, value); err != nil {
			return err
		}
		switch key {
		case model.SettingRepository:
			session.Repository = value
		case model.SettingTag:
			session.Tag = value
		case model.SettingRegistryURL:
			session.RegistryURL = value
		}
	}
	return nil
}
