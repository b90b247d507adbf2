package repo

import (
	"errors"
	"time"

	"telecloud/app/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DirectoryRepository struct {
	db *gorm.DB
}

func NewDirectoryRepository(db *gorm.DB) *DirectoryRepository {
	return &DirectoryRepository{db: db}
}

// GetByID returns nil without error when the directory does not exist.
func (r *DirectoryRepository) GetByID(id string) (*models.Directory, error) {
	var dir models.Directory
	err := r.db.Where("id = ?", id).First(&dir).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &dir, nil
}

func (r *DirectoryRepository) GetByName(name, owner string) (*models.Directory, error) {
	var dir models.Directory
	err := r.db.Where("name = ? AND owner = ?", name, owner).First(&dir).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &dir, nil
}

func (r *DirectoryRepository) Exists(name, owner string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Directory{}).
		Where("name = ? AND owner = ?", name, owner).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create inserts a new directory. A (name, owner) conflict surfaces as
// gorm.ErrDuplicatedKey.
func (r *DirectoryRepository) Create(dir *models.Directory) error {
	return r.db.Create(dir).Error
}

// CreateIfAbsent inserts the directory unless its primary key is
// already present. Used for lazy root seeding; safe to race.
func (r *DirectoryRepository) CreateIfAbsent(dir *models.Directory) error {
	return r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(dir).Error
}

// ChildrenOf lists direct child directories ordered by name so menu
// layouts come out stable.
func (r *DirectoryRepository) ChildrenOf(parentID string) ([]*models.Directory, error) {
	var dirs []*models.Directory
	err := r.db.Where("parent_id = ?", parentID).Order("name").Find(&dirs).Error
	if err != nil {
		return nil, err
	}
	return dirs, nil
}

// ChildByName re-resolves membership from persisted state: the result
// is nil unless a directory named name, owned by owner, currently hangs
// under parentID.
func (r *DirectoryRepository) ChildByName(parentID, name, owner string) (*models.Directory, error) {
	var dir models.Directory
	err := r.db.Where("parent_id = ? AND name = ? AND owner = ?", parentID, name, owner).
		First(&dir).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &dir, nil
}

// Touch refreshes updated_at after a child attach or detach.
func (r *DirectoryRepository) Touch(id string) error {
	return r.db.Model(&models.Directory{}).
		Where("id = ?", id).
		Update("updated_at", time.Now()).Error
}

// Delete removes the directory row. Deleting an absent row is a no-op.
func (r *DirectoryRepository) Delete(id string) error {
	return r.db.Where("id = ?", id).Delete(&models.Directory{}).Error
}
