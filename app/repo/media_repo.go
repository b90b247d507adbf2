package repo

import (
	"errors"

	"telecloud/app/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MediaRepository struct {
	db *gorm.DB
}

func NewMediaRepository(db *gorm.DB) *MediaRepository {
	return &MediaRepository{db: db}
}

func (r *MediaRepository) GetByReference(reference string) (*models.MediaEntry, error) {
	var entry models.MediaEntry
	err := r.db.Where("reference = ?", reference).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// Attach inserts the entry under its directory. The reported bool is
// false when the globally-unique reference already existed and nothing
// was inserted; callers decide whether that is a no-op or a conflict.
func (r *MediaRepository) Attach(entry *models.MediaEntry) (bool, error) {
	res := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "reference"}},
		DoNothing: true,
	}).Create(entry)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *MediaRepository) ListByDirectory(directoryID string) ([]*models.MediaEntry, error) {
	var entries []*models.MediaEntry
	err := r.db.Where("directory_id = ?", directoryID).Order("created_at").Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// DeleteByDirectory removes every entry attached to the directory.
func (r *MediaRepository) DeleteByDirectory(directoryID string) error {
	return r.db.Where("directory_id = ?", directoryID).Delete(&models.MediaEntry{}).Error
}
