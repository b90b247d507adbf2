package services

import (
	"context"
	"errors"
	"fmt"

	"telecloud/app/models"
	"telecloud/app/repo"
	"telecloud/global"
)

// NavigationService layers a per-conversation current-directory pointer
// on top of the tree. A pointer that turns out to reference a deleted
// or orphaned directory is reset to the owner's own root, never to a
// shared one.
type NavigationService struct {
	tree     *TreeService
	pointers repo.PointerStore
}

func NewNavigationService(tree *TreeService, pointers repo.PointerStore) *NavigationService {
	return &NavigationService{tree: tree, pointers: pointers}
}

// Current resolves the conversation's current directory, seeding the
// pointer to the owner's root on first use and self-healing when the
// pointed-to directory no longer exists.
func (n *NavigationService) Current(ctx context.Context, conversation, owner string) (*models.Directory, error) {
	name, ok, err := n.pointers.Get(ctx, conversation)
	if err != nil {
		return nil, fmt.Errorf("read pointer: %w", err)
	}
	if !ok {
		return n.seed(ctx, conversation, owner)
	}
	dir, err := n.tree.Lookup(name, owner)
	if err != nil {
		return nil, err
	}
	if dir == nil {
		global.Logger.Warn().
			Str("conversation", conversation).
			Str("pointer", name).
			Msg("stale navigation pointer, resetting to root")
		return n.seed(ctx, conversation, owner)
	}
	return dir, nil
}

// MoveTo descends into the named child. The target is validated against
// live tree state; button payloads are never trusted as-is.
func (n *NavigationService) MoveTo(ctx context.Context, conversation, owner, target string) (*models.Directory, error) {
	unlock := n.tree.LockOwner(owner)
	defer unlock()

	current, err := n.Current(ctx, conversation, owner)
	if err != nil {
		return nil, err
	}
	child, err := n.tree.ChildOf(current, target, owner)
	if err != nil {
		return nil, err
	}
	if child == nil {
		return nil, ErrNotAChild
	}
	if err := n.pointers.Set(ctx, conversation, child.Name); err != nil {
		return nil, fmt.Errorf("advance pointer: %w", err)
	}
	return child, nil
}

// MoveToParent ascends one level. atRoot is true when the session was
// already at the owner's root and did not move. An orphaned current
// directory is an internal fault: it is logged and the session degrades
// to the owner's root instead of surfacing the inconsistency.
func (n *NavigationService) MoveToParent(ctx context.Context, conversation, owner string) (dir *models.Directory, atRoot bool, err error) {
	unlock := n.tree.LockOwner(owner)
	defer unlock()

	current, err := n.Current(ctx, conversation, owner)
	if err != nil {
		return nil, false, err
	}
	if current.IsRoot() {
		return current, true, nil
	}
	parent, err := n.tree.ParentOf(current)
	if err != nil {
		if !errors.Is(err, ErrInvariantViolation) {
			return nil, false, err
		}
		global.Logger.Error().
			Str("conversation", conversation).
			Str("current", current.Name).
			Err(err).
			Msg("orphaned directory, self-healing navigation to root")
		root, seedErr := n.seed(ctx, conversation, owner)
		if seedErr != nil {
			return nil, false, seedErr
		}
		return root, false, nil
	}
	if err := n.pointers.Set(ctx, conversation, parent.Name); err != nil {
		return nil, false, fmt.Errorf("advance pointer: %w", err)
	}
	return parent, false, nil
}

func (n *NavigationService) seed(ctx context.Context, conversation, owner string) (*models.Directory, error) {
	root, err := n.tree.EnsureRoot(owner)
	if err != nil {
		return nil, err
	}
	if err := n.pointers.Set(ctx, conversation, root.Name); err != nil {
		return nil, fmt.Errorf("seed pointer: %w", err)
	}
	return root, nil
}
