package registry

import (
	"context"
	"errors"

	"github.com/madpaura/docker-webui/model"
)

var (
	ErrRepositoryNotFound = errors.New("repository not found")
	ErrImageNotFound      = errors.New("image not found")
	ErrDigestUnavailable  = errors.New("could not determine image digest")
)

type (
	// Registryer talks to a container registry over its HTTP API.
	Registryer interface {
		CheckConnection(ctx context.Context) error
		ListRepositories(ctx context.Context) ([]string, error)
		ListTags(ctx context.Context, repository string) ([]string, error)
		GetManifest(ctx context.Context, repository, tag string) (*Manifest, error)
		DeleteImage(ctx context.Context, repository, tag string) error
		ListImages(ctx context.Context) ([]model.RegistryImage, error)
	}

	// Manifest is the schema 2 image manifest.
	Manifest struct {
		SchemaVersion int               `json:"schemaVersion"`
		MediaType     string            `json:"mediaType"`
		Config        ManifestBlobRef   `json:"config"`
		Layers        []ManifestBlobRef `json:"layers"`
	}

	ManifestBlobRef struct {
		MediaType string `json:"mediaType"`
		Size      int64  `json:"size"`
		Digest    string `json:"digest"`
	}
)

// TotalSize is the compressed image size: config blob plus all layers.
func (m *Manifest) TotalSize() int64 {
	total := m.Config.Size
	for _, l := range m.Layers {
		total += l.Size
	}
	return total
}
