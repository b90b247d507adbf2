package models

import "time"

// Directory is one node of a user's tree. Names are unique per owner,
// not globally, so the unique index spans (name, owner).
//
// owner is the encrypted owner identifier as produced by the codec.
// Both indexed columns stay under MySQL's max key length for utf8mb4
// (191 * 4 = 764 bytes per column).
type Directory struct {
	ID        string    `gorm:"primaryKey;size:191"`
	Name      string    `gorm:"size:191;not null;uniqueIndex:idx_directories_name_owner"`
	Owner     string    `gorm:"size:191;not null;uniqueIndex:idx_directories_name_owner;index"`
	ParentID  *string   `gorm:"size:191;index"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// IsRoot reports whether the directory is an owner's top-level node.
func (d *Directory) IsRoot() bool {
	return d.ParentID == nil
}
