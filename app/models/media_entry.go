package models

import "time"

// MediaEntry references a media object held by the transport. Reference
// is the encrypted transport identifier; raw identifiers are global to
// the transport, so the unique index is not owner-scoped.
type MediaEntry struct {
	ID          string    `gorm:"primaryKey;size:191"`
	Reference   string    `gorm:"size:255;not null;uniqueIndex"`
	DirectoryID string    `gorm:"size:191;not null;index"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}
