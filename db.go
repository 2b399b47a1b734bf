package main

import (
	"errors"
	"fmt"
	"time"

	"leaseintake/models"
	"leaseintake/pkg/store"

	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// openSnapshotDB opens the database-backed snapshot store. Postgres when a
// DATABASE_URL is set, otherwise SQLite at SNAPSHOT_DSN. Runs AutoMigrate on
// the single kv_snapshots table.
func openSnapshotDB(cfg *Config) (*dbSnapshotStore, error) {
	var dialector gorm.Dialector
	switch {
	case cfg.DatabaseURL != "":
		dialector = postgres.Open(cfg.DatabaseURL)
	case cfg.SnapshotDSN != "":
		dialector = sqlite.Open(cfg.SnapshotDSN)
	default:
		return nil, fmt.Errorf("no database configured")
	}
	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open snapshot database: %w", err)
	}
	if err := db.AutoMigrate(&models.KVSnapshot{}); err != nil {
		return nil, fmt.Errorf("migrate kv_snapshots: %w", err)
	}
	return &dbSnapshotStore{db: db}, nil
}

// dbSnapshotStore keeps the whole serialized store in one row keyed by the
// fixed store name, mirroring the file backend's single-document layout.
type dbSnapshotStore struct {
	db *gorm.DB
}

var _ store.SnapshotStore = (*dbSnapshotStore)(nil)

func (d *dbSnapshotStore) Load() ([]byte, error) {
	var row models.KVSnapshot
	err := d.db.First(&row, "name = ?", store.StoreName).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return row.Payload, nil
}

func (d *dbSnapshotStore) Save(data []byte) error {
	row := models.KVSnapshot{
		Name:      store.StoreName,
		Payload:   datatypes.JSON(data),
		UpdatedAt: time.Now(),
	}
	return d.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
	}).Create(&row).Error
}
