package controller

import "errors"

var (
	ErrMissingVCS        = errors.New("missing vcs provider")
	ErrMissingBuilder    = errors.New("missing builder")
	ErrMissingRegistry   = errors.New("missing registry")
	ErrMissingSettings   = errors.New("missing settings store")
	ErrNoRepository      = errors.New("no repository cloned")
	ErrNoDockerfile      = errors.New("no dockerfile loaded")
	ErrNoDockerfileFound = errors.New("no dockerfile found in repository")
	ErrUnknownDockerfile = errors.New("dockerfile not found among discovered build files")
	ErrNothingToPublish  = errors.New("nothing to publish, run a successful build first")
	ErrUnknownSettingKey = errors.New("unknown setting key")
)
