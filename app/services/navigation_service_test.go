package services

import (
	"context"
	"errors"
	"os"
	"testing"

	"telecloud/app/models"
	"telecloud/app/repo"
	"telecloud/global"

	"github.com/rs/zerolog"
)

func TestMain(m *testing.M) {
	global.Logger = zerolog.Nop()
	os.Exit(m.Run())
}

func newTestNav(t *testing.T) (*NavigationService, *TreeService) {
	t.Helper()
	tree, _ := newTestTree(t)
	return NewNavigationService(tree, repo.NewMemoryPointerStore()), tree
}

const conversation = "chat-1"

func TestCurrentSeedsRoot(t *testing.T) {
	nav, _ := newTestNav(t)
	ctx := context.Background()

	cur, err := nav.Current(ctx, conversation, owner)
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if cur.Name != "ROOT" || !cur.IsRoot() {
		t.Fatalf("first call must seed to root, got %q", cur.Name)
	}
	again, err := nav.Current(ctx, conversation, owner)
	if err != nil {
		t.Fatalf("current again: %v", err)
	}
	if again.ID != cur.ID {
		t.Fatal("pointer must be stable between calls")
	}
}

func TestMoveToDescends(t *testing.T) {
	nav, tree := newTestNav(t)
	ctx := context.Background()
	root, _ := tree.EnsureRoot(owner)
	tree.CreateDirectory("Trips", owner, root)

	dir, err := nav.MoveTo(ctx, conversation, owner, "Trips")
	if err != nil {
		t.Fatalf("move: %v", err)
	}
	if dir.Name != "Trips" {
		t.Fatalf("moved to %q", dir.Name)
	}
	cur, _ := nav.Current(ctx, conversation, owner)
	if cur.Name != "Trips" {
		t.Fatalf("pointer not advanced: %q", cur.Name)
	}
}

func TestMoveToRejectsNonChild(t *testing.T) {
	nav, tree := newTestNav(t)
	ctx := context.Background()
	root, _ := tree.EnsureRoot(owner)
	trips, _ := tree.CreateDirectory("Trips", owner, root)
	tree.CreateDirectory("2023", owner, trips)

	// "2023" exists but is not a direct child of the root.
	if _, err := nav.MoveTo(ctx, conversation, owner, "2023"); !errors.Is(err, ErrNotAChild) {
		t.Fatalf("want ErrNotAChild, got %v", err)
	}
	if _, err := nav.MoveTo(ctx, conversation, owner, "Nope"); !errors.Is(err, ErrNotAChild) {
		t.Fatalf("want ErrNotAChild, got %v", err)
	}
}

func TestMoveToParent(t *testing.T) {
	nav, tree := newTestNav(t)
	ctx := context.Background()
	root, _ := tree.EnsureRoot(owner)
	tree.CreateDirectory("Trips", owner, root)
	nav.MoveTo(ctx, conversation, owner, "Trips")

	dir, atRoot, err := nav.MoveToParent(ctx, conversation, owner)
	if err != nil {
		t.Fatalf("back: %v", err)
	}
	if atRoot || dir.Name != "ROOT" {
		t.Fatalf("want move to root, got (%q, atRoot=%v)", dir.Name, atRoot)
	}

	dir, atRoot, err = nav.MoveToParent(ctx, conversation, owner)
	if err != nil {
		t.Fatalf("back at root: %v", err)
	}
	if !atRoot || dir.Name != "ROOT" {
		t.Fatalf("want already-at-root, got (%q, atRoot=%v)", dir.Name, atRoot)
	}
}

func TestSelfHealAfterDelete(t *testing.T) {
	nav, tree := newTestNav(t)
	ctx := context.Background()
	root, _ := tree.EnsureRoot(owner)
	trips, _ := tree.CreateDirectory("Trips", owner, root)
	nav.MoveTo(ctx, conversation, owner, "Trips")

	if err := tree.DeleteSubtree(trips); err != nil {
		t.Fatalf("delete: %v", err)
	}
	cur, err := nav.Current(ctx, conversation, owner)
	if err != nil {
		t.Fatalf("current after delete must not fail: %v", err)
	}
	if !cur.IsRoot() {
		t.Fatalf("stale pointer must heal to root, got %q", cur.Name)
	}
}

func TestSelfHealOnOrphan(t *testing.T) {
	tree, gdb := newTestTree(t)
	nav := NewNavigationService(tree, repo.NewMemoryPointerStore())
	ctx := context.Background()
	root, _ := tree.EnsureRoot(owner)
	trips, _ := tree.CreateDirectory("Trips", owner, root)
	tree.CreateDirectory("2023", owner, trips)
	nav.MoveTo(ctx, conversation, owner, "Trips")
	nav.MoveTo(ctx, conversation, owner, "2023")

	// Orphan the current directory behind the service's back.
	if err := gdb.Where("id = ?", trips.ID).Delete(&models.Directory{}).Error; err != nil {
		t.Fatalf("corrupt: %v", err)
	}
	dir, atRoot, err := nav.MoveToParent(ctx, conversation, owner)
	if err != nil {
		t.Fatalf("orphan must self-heal, not fail: %v", err)
	}
	if atRoot {
		t.Fatal("self-heal reports a move, not already-at-root")
	}
	if !dir.IsRoot() || dir.Owner != owner {
		t.Fatalf("must heal to the owner's root, got %q (%s)", dir.Name, dir.Owner)
	}
	cur, _ := nav.Current(ctx, conversation, owner)
	if !cur.IsRoot() {
		t.Fatalf("pointer not reset: %q", cur.Name)
	}
}
