package sqlite

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/madpaura/docker-webui/model"
	"github.com/madpaura/docker-webui/repo"
)

type setting struct {
	Key   string `gorm:"column:key;primaryKey"`
	Value string `gorm:"column:value;not null"`
}

func (setting) TableName() string { return "settings" }

type gitRepository struct {
	URL      string    `gorm:"column:url;primaryKey"`
	Branch   string    `gorm:"column:branch;not null"`
	LastUsed time.Time `gorm:"column:last_used"`
}

func (gitRepository) TableName() string { return "git_repositories" }

func NewSettingsRepoer(path string) (repo.SettingsRepoer, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("opening settings store %s: %w", path, err)
	}

	if err := db.AutoMigrate(&setting{}, &gitRepository{}); err != nil {
		return nil, fmt.Errorf("migrating settings store: %w", err)
	}

	return &SettingsRepoerSqlite{db: db}, nil
}

type SettingsRepoerSqlite struct {
	db *gorm.DB
}

func (r *SettingsRepoerSqlite) Get(ctx context.Context, key string, out any) error {
	var row setting
	err := r.db.WithContext(ctx).First(&row, "key = ?", key).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return repo.ErrNotFound
		}
		return err
	}
	if err := json.Unmarshal([]byte(row.Value), out); err != nil {
		return fmt.Errorf("decoding setting %s: %w", key, err)
	}
	return nil
}

func (r *SettingsRepoerSqlite) Set(ctx context.Context, key string, value any) error {
	encoded, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding setting %s: %w", key, err)
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&setting{Key: key, Value: string(encoded)}).Error
}

func (r *SettingsRepoerSqlite) Delete(ctx context.Context, key string) error {
	return r.db.WithContext(ctx).Delete(&setting{}, "key = ?", key).Error
}

// RecordRepository upserts the repository keyed by URL, refreshing its
// branch and last-used time.
func (r *SettingsRepoerSqlite) RecordRepository(ctx context.Context, url, branch string) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&gitRepository{URL: url, Branch: branch, LastUsed: time.Now()}).Error
}

func (r *SettingsRepoerSqlite) RecentRepositories(ctx context.Context, limit int) ([]model.RecentRepository, error) {
	if limit <= 0 {
		limit = 5
	}
	var rows []gitRepository
	err := r.db.WithContext(ctx).Order("last_used DESC").Limit(limit).Find(&rows).Error
	if err != nil {
		return nil, err
	}

	recents := make([]model.RecentRepository, len(rows))
	for i, row := range rows {
		recents[i] = model.RecentRepository{
			URL:      row.URL,
			Branch:   row.Branch,
			LastUsed: row.LastUsed,
		}
	}
	return recents, nil
}
