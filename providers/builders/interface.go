package builders

import (
	"context"

	"github.com/madpaura/docker-webui/model"
)

type Builder interface {
	// Build runs an image build from contextDir using the named
	// dockerfile (relative to contextDir) and tags the result. A build
	// that fails inside the engine is not an error: it comes back as a
	// result with Success false and the captured logs.
	Build(ctx context.Context, contextDir, dockerfile, tag string, args map[string]string) (*model.BuildResult, error)
	Tag(ctx context.Context, source, target string) error
	Push(ctx context.Context, ref string) (string, error)
	ListImages(ctx context.Context) ([]model.ImageInfo, error)
}
