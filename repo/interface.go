package repo

import (
	"context"
	"errors"

	"github.com/madpaura/docker-webui/model"
)

// SettingsRepoer persists user preferences and the recently used
// repository list across restarts. Values are stored JSON-encoded no
// matter their type, so strings round-trip without guessing.
type SettingsRepoer interface {
	Get(ctx context.Context, key string, out any) error
	Set(ctx context.Context, key string, value any) error
	Delete(ctx context.Context, key string) error

	RecordRepository(ctx context.Context, url, branch string) error
	RecentRepositories(ctx context.Context, limit int) ([]model.RecentRepository, error)
}

var (
	ErrNotFound error = errors.New("not found")
)
