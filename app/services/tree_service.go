package services

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"telecloud/app/models"
	"telecloud/app/repo"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TreeService owns the directory/media tree and its invariants. All
// operations are scoped to one owner; mutating operations are
// serialized per owner so concurrent creations cannot race past the
// uniqueness check.
type TreeService struct {
	dirs     *repo.DirectoryRepository
	media    *repo.MediaRepository
	rootName string
	locks    sync.Map // owner -> *sync.Mutex
}

func NewTreeService(dirs *repo.DirectoryRepository, media *repo.MediaRepository, rootName string) *TreeService {
	return &TreeService{dirs: dirs, media: media, rootName: rootName}
}

// LockOwner acquires the per-owner mutation lock and returns its
// release func. Read-only projections do not need it.
func (s *TreeService) LockOwner(owner string) func() {
	v, _ := s.locks.LoadOrStore(owner, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// directoryID derives a stable ID from the owner-scoped unique pair.
func directoryID(owner, name string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(owner+"|"+name)).String()
}

// EnsureRoot returns the owner's root directory, creating it lazily on
// first use. Idempotent and safe to race.
func (s *TreeService) EnsureRoot(owner string) (*models.Directory, error) {
	id := directoryID(owner, s.rootName)
	root := &models.Directory{ID: id, Name: s.rootName, Owner: owner}
	if err := s.dirs.CreateIfAbsent(root); err != nil {
		return nil, fmt.Errorf("ensure root: %w", err)
	}
	got, err := s.dirs.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("ensure root: %w", err)
	}
	if got == nil {
		return nil, fmt.Errorf("ensure root: root vanished after upsert")
	}
	return got, nil
}

// Exists reports whether a directory named name belongs to owner.
func (s *TreeService) Exists(name, owner string) (bool, error) {
	return s.dirs.Exists(name, owner)
}

// Lookup resolves a directory by its owner-scoped name. Returns nil
// without error on a miss.
func (s *TreeService) Lookup(name, owner string) (*models.Directory, error) {
	return s.dirs.GetByName(name, owner)
}

// CreateDirectory creates name under parent. The child row carries the
// parent reference, so a failed insert leaves nothing dangling.
func (s *TreeService) CreateDirectory(name, owner string, parent *models.Directory) (*models.Directory, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("create directory: empty name")
	}
	unlock := s.LockOwner(owner)
	defer unlock()

	// The caller's handle may predate a concurrent delete; only a
	// parent re-resolved under the lock may gain children.
	live, err := s.dirs.GetByID(parent.ID)
	if err != nil {
		return nil, fmt.Errorf("create directory %q: %w", name, err)
	}
	if live == nil {
		return nil, ErrDirectoryGone
	}

	dir := &models.Directory{
		ID:       directoryID(owner, name),
		Name:     name,
		Owner:    owner,
		ParentID: &live.ID,
	}
	if err := s.dirs.Create(dir); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyExists
		}
		return nil, fmt.Errorf("create directory %q: %w", name, err)
	}
	if err := s.dirs.Touch(live.ID); err != nil {
		return nil, fmt.Errorf("touch parent of %q: %w", name, err)
	}
	return dir, nil
}

// ChildrenOf lists direct child directories in stable name order.
func (s *TreeService) ChildrenOf(dir *models.Directory) ([]*models.Directory, error) {
	return s.dirs.ChildrenOf(dir.ID)
}

// FilesOf lists the media entries attached to the directory.
func (s *TreeService) FilesOf(dir *models.Directory) ([]*models.MediaEntry, error) {
	return s.media.ListByDirectory(dir.ID)
}

// HasChild re-resolves both parent and candidate from persisted state;
// membership can change between a menu being rendered and a button
// being pressed, so cached references are never trusted.
func (s *TreeService) HasChild(parent *models.Directory, name, owner string) (bool, error) {
	child, err := s.ChildOf(parent, name, owner)
	if err != nil {
		return false, err
	}
	return child != nil, nil
}

// ChildOf resolves the direct child of parent named name, or nil.
func (s *TreeService) ChildOf(parent *models.Directory, name, owner string) (*models.Directory, error) {
	live, err := s.dirs.GetByID(parent.ID)
	if err != nil {
		return nil, err
	}
	if live == nil {
		return nil, nil
	}
	return s.dirs.ChildByName(live.ID, name, owner)
}

// AttachFile stores an encrypted media reference under the directory.
// Re-attaching a reference to the directory that already holds it is a
// no-op; a reference held by another directory stays there and the
// attach fails with ErrAlreadyAttached.
func (s *TreeService) AttachFile(dir *models.Directory, reference string) (*models.MediaEntry, error) {
	unlock := s.LockOwner(dir.Owner)
	defer unlock()

	live, err := s.dirs.GetByID(dir.ID)
	if err != nil {
		return nil, fmt.Errorf("attach file: %w", err)
	}
	if live == nil {
		return nil, ErrDirectoryGone
	}

	existing, err := s.media.GetByReference(reference)
	if err != nil {
		return nil, fmt.Errorf("attach file: %w", err)
	}
	if existing != nil {
		if existing.DirectoryID == live.ID {
			return existing, nil
		}
		return nil, ErrAlreadyAttached
	}

	entry := &models.MediaEntry{
		ID:          uuid.NewString(),
		Reference:   reference,
		DirectoryID: live.ID,
	}
	created, err := s.media.Attach(entry)
	if err != nil {
		return nil, fmt.Errorf("attach file: %w", err)
	}
	if !created {
		// Lost a cross-owner race on the global reference index.
		return nil, ErrAlreadyAttached
	}
	if err := s.dirs.Touch(live.ID); err != nil {
		return nil, fmt.Errorf("touch directory %q: %w", live.Name, err)
	}
	return entry, nil
}

// DeleteSubtree removes dir and every descendant directory and media
// entry, children before parents. Re-deleting an already-deleted
// subtree is a no-op, so a failed traversal is safe to retry.
func (s *TreeService) DeleteSubtree(dir *models.Directory) error {
	if dir.IsRoot() {
		return fmt.Errorf("delete subtree: refusing to delete the root directory")
	}
	unlock := s.LockOwner(dir.Owner)
	defer unlock()

	if err := s.deleteSubtree(dir); err != nil {
		return err
	}
	if dir.ParentID != nil {
		if err := s.dirs.Touch(*dir.ParentID); err != nil {
			return fmt.Errorf("touch parent after delete: %w", err)
		}
	}
	return nil
}

func (s *TreeService) deleteSubtree(dir *models.Directory) error {
	children, err := s.dirs.ChildrenOf(dir.ID)
	if err != nil {
		return fmt.Errorf("list children of %q: %w", dir.Name, err)
	}
	for _, child := range children {
		if err := s.deleteSubtree(child); err != nil {
			return err
		}
	}
	if err := s.media.DeleteByDirectory(dir.ID); err != nil {
		return fmt.Errorf("delete media of %q: %w", dir.Name, err)
	}
	if err := s.dirs.Delete(dir.ID); err != nil {
		return fmt.Errorf("delete directory %q: %w", dir.Name, err)
	}
	return nil
}

// ParentOf resolves the directory's parent. (nil, nil) is the expected
// terminal answer for a root; ErrInvariantViolation marks an orphaned
// non-root directory whose parent row is gone.
func (s *TreeService) ParentOf(dir *models.Directory) (*models.Directory, error) {
	if dir.ParentID == nil {
		return nil, nil
	}
	parent, err := s.dirs.GetByID(*dir.ParentID)
	if err != nil {
		return nil, err
	}
	if parent == nil {
		return nil, fmt.Errorf("parent of non-root %q missing: %w", dir.Name, ErrInvariantViolation)
	}
	return parent, nil
}
