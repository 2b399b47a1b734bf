package models

import (
	"time"

	"gorm.io/datatypes"
)

// KVSnapshot is the database row backing the store snapshot when a DSN is
// configured. One row per store name; the payload is the same JSON document
// the file backend writes.
type KVSnapshot struct {
	Name      string         `gorm:"primaryKey;size:64"`
	Payload   datatypes.JSON `gorm:"not null"`
	UpdatedAt time.Time
}
