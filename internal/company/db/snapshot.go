package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	dbmodels "github.com/gartstein/olt/internal/company/db/models"
	e "github.com/gartstein/olt/internal/company/errors"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SnapshotRepository keeps serialized settings snapshots in a local
// SQLite file, one row per namespace.
type SnapshotRepository struct {
	db *gorm.DB
}

func NewSnapshotRepository(path string) (*SnapshotRepository, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: snapshot path is empty", e.ErrInvalidInput)
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot database: %w", err)
	}

	if err := db.AutoMigrate(&dbmodels.SettingsSnapshot{}); err != nil {
		return nil, fmt.Errorf("failed to migrate snapshot database: %w", err)
	}

	return &SnapshotRepository{db: db}, nil
}

// LoadSnapshot returns the payload stored under namespace, or ErrNotFound.
func (r *SnapshotRepository) LoadSnapshot(ctx context.Context, namespace string) ([]byte, error) {
	var snapshot dbmodels.SettingsSnapshot
	result := r.db.WithContext(ctx).First(&snapshot, "namespace = ?", namespace)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, e.ErrNotFound
		}
		return nil, result.Error
	}
	return []byte(snapshot.Payload), nil
}

// SaveSnapshot inserts or replaces the payload stored under namespace.
func (r *SnapshotRepository) SaveSnapshot(ctx context.Context, namespace string, payload []byte) error {
	snapshot := dbmodels.SettingsSnapshot{
		Namespace: namespace,
		Payload:   string(payload),
		UpdatedAt: time.Now().UTC(),
	}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "namespace"}},
			DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
		}).
		Create(&snapshot)
	return result.Error
}

func (r *SnapshotRepository) Close() error {
	return closeDB(r.db)
}
