package command

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"

	"telecloud/app/crypto"
	"telecloud/app/keyboard"
	"telecloud/app/models"
	"telecloud/app/repo"
	"telecloud/app/services"
	"telecloud/global"

	"github.com/rs/zerolog"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestMain(m *testing.M) {
	global.Logger = zerolog.Nop()
	os.Exit(m.Run())
}

type fakeSession struct {
	replies   []string
	keyboards []keyboard.Markup
	forwarded []string
	gone      map[string]bool
}

func (s *fakeSession) Reply(text string) error {
	s.replies = append(s.replies, text)
	return nil
}

func (s *fakeSession) ReplyKeyboard(text string, markup keyboard.Markup) error {
	s.replies = append(s.replies, text)
	s.keyboards = append(s.keyboards, markup)
	return nil
}

func (s *fakeSession) ForwardMedia(reference string) error {
	if s.gone[reference] {
		return ErrMediaGone
	}
	s.forwarded = append(s.forwarded, reference)
	return nil
}

func (s *fakeSession) lastReply(t *testing.T) string {
	t.Helper()
	if len(s.replies) == 0 {
		t.Fatal("no reply recorded")
	}
	return s.replies[len(s.replies)-1]
}

type fixture struct {
	dispatcher *Dispatcher
	tree       *services.TreeService
	codec      *crypto.Codec
	db         *gorm.DB
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := gdb.AutoMigrate(&models.Directory{}, &models.MediaEntry{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	codec, err := crypto.New("test-secret", "test-salt")
	if err != nil {
		t.Fatalf("codec: %v", err)
	}
	tree := services.NewTreeService(repo.NewDirectoryRepository(gdb), repo.NewMediaRepository(gdb), "ROOT")
	nav := services.NewNavigationService(tree, repo.NewMemoryPointerStore())
	d := NewDispatcher()
	(&Handlers{Tree: tree, Nav: nav, Codec: codec, CancelButton: "Cancel"}).Install(d)
	return &fixture{dispatcher: d, tree: tree, codec: codec, db: gdb}
}

func (f *fixture) run(sess *fakeSession, command string, args ...string) {
	f.dispatcher.Dispatch(context.Background(), Request{
		Conversation: "chat-1",
		Owner:        "user-1",
		Command:      command,
		Args:         args,
	}, sess)
}

func (f *fixture) press(sess *fakeSession, token string) {
	f.dispatcher.Dispatch(context.Background(), Request{
		Conversation: "chat-1",
		Owner:        "user-1",
		Command:      "callback",
		Token:        token,
	}, sess)
}

func TestCreateAndConflict(t *testing.T) {
	f := newFixture(t)
	sess := &fakeSession{}

	f.run(sess, "create", "Trips")
	if got := sess.lastReply(t); got != `The directory "Trips" is successfully created` {
		t.Fatalf("unexpected reply: %q", got)
	}
	f.run(sess, "create", "Trips")
	if got := sess.lastReply(t); got != `The directory "Trips" already exists` {
		t.Fatalf("unexpected reply: %q", got)
	}
}

func TestArgumentValidation(t *testing.T) {
	f := newFixture(t)
	sess := &fakeSession{}
	f.run(sess, "create")
	if got := sess.lastReply(t); !strings.Contains(got, "Unexpected amount of arguments") {
		t.Fatalf("unexpected reply: %q", got)
	}
	f.run(sess, "frobnicate")
	if got := sess.lastReply(t); !strings.Contains(got, "Unknown command") {
		t.Fatalf("unexpected reply: %q", got)
	}
}

func TestCancelShortCircuits(t *testing.T) {
	f := newFixture(t)
	sess := &fakeSession{}
	f.run(sess, "create", "Trips")
	for _, action := range []string{keyboard.ActionGoto, keyboard.ActionDelete} {
		f.press(sess, keyboard.EncodeToken(action, "Cancel"))
		if got := sess.lastReply(t); got != "Canceled" {
			t.Fatalf("cancel with action %s: got %q", action, got)
		}
	}
	// Cancel must not have navigated or deleted anything.
	f.run(sess, "list_children")
	if got := sess.lastReply(t); got != "Trips" {
		t.Fatalf("tree changed by cancel: %q", got)
	}
}

func TestStaleTokenRejected(t *testing.T) {
	f := newFixture(t)
	sess := &fakeSession{}
	f.run(sess, "create", "Trips")

	// The menu was rendered, then the directory vanished before the press.
	f.press(sess, keyboard.EncodeToken(keyboard.ActionDelete, "Trips"))
	if got := sess.lastReply(t); got != `The directory "Trips" is deleted` {
		t.Fatalf("unexpected reply: %q", got)
	}
	f.press(sess, keyboard.EncodeToken(keyboard.ActionDelete, "Trips"))
	if got := sess.lastReply(t); got != `The directory "Trips" no longer exists here` {
		t.Fatalf("unexpected reply: %q", got)
	}
	f.press(sess, keyboard.EncodeToken(keyboard.ActionGoto, "Trips"))
	if got := sess.lastReply(t); got != `The directory "Trips" no longer exists here` {
		t.Fatalf("unexpected reply: %q", got)
	}
}

func TestShowSkipsGoneMedia(t *testing.T) {
	f := newFixture(t)
	sess := &fakeSession{gone: map[string]bool{"photo-2": true}}

	for _, ref := range []string{"photo-1", "photo-2", "photo-3"} {
		f.dispatcher.Dispatch(context.Background(), Request{
			Conversation: "chat-1",
			Owner:        "user-1",
			Command:      "upload",
			Media:        ref,
		}, sess)
	}
	f.run(sess, "show")
	if len(sess.forwarded) != 2 {
		t.Fatalf("want 2 forwarded items, got %v", sess.forwarded)
	}
	for _, ref := range sess.forwarded {
		if ref == "photo-2" {
			t.Fatal("gone item must be skipped")
		}
	}
}

func TestUploadAlreadyStoredElsewhere(t *testing.T) {
	f := newFixture(t)
	sess := &fakeSession{}

	f.dispatcher.Dispatch(context.Background(), Request{
		Conversation: "chat-1",
		Owner:        "user-1",
		Command:      "upload",
		Media:        "photo-1",
	}, sess)
	f.run(sess, "create", "Trips")
	f.press(sess, keyboard.EncodeToken(keyboard.ActionGoto, "Trips"))

	f.dispatcher.Dispatch(context.Background(), Request{
		Conversation: "chat-1",
		Owner:        "user-1",
		Command:      "upload",
		Media:        "photo-1",
	}, sess)
	if got := sess.lastReply(t); got != "This photo is already saved in another directory" {
		t.Fatalf("unexpected reply: %q", got)
	}
	// The photo stayed where it was first saved.
	f.run(sess, "show")
	if len(sess.forwarded) != 0 {
		t.Fatalf("photo visible in wrong directory: %v", sess.forwarded)
	}
	f.run(sess, "back")
	f.run(sess, "show")
	if len(sess.forwarded) != 1 || sess.forwarded[0] != "photo-1" {
		t.Fatalf("photo missing from its directory: %v", sess.forwarded)
	}
}

// TestScenario walks the full flow: create Trips, enter it, create 2023,
// enter it, upload a photo, go back, then delete 2023 through the menu.
func TestScenario(t *testing.T) {
	f := newFixture(t)
	sess := &fakeSession{}

	f.run(sess, "create", "Trips")
	f.press(sess, keyboard.EncodeToken(keyboard.ActionGoto, "Trips"))
	f.run(sess, "create", "2023")
	f.press(sess, keyboard.EncodeToken(keyboard.ActionGoto, "2023"))
	f.dispatcher.Dispatch(context.Background(), Request{
		Conversation: "chat-1",
		Owner:        "user-1",
		Command:      "upload",
		Media:        "photo-1",
	}, sess)
	if got := sess.lastReply(t); got != "Saved" {
		t.Fatalf("upload reply: %q", got)
	}

	f.run(sess, "back")
	if got := sess.lastReply(t); got != `Moved to "Trips"` {
		t.Fatalf("back reply: %q", got)
	}
	f.run(sess, "current")
	if got := sess.lastReply(t); got != `You are in "Trips"` {
		t.Fatalf("current reply: %q", got)
	}

	f.run(sess, "delete")
	if len(sess.keyboards) == 0 {
		t.Fatal("delete must render a keyboard")
	}
	markup := sess.keyboards[len(sess.keyboards)-1]
	want := keyboard.Markup{
		{{Text: "2023", Token: "delete|2023"}},
		{{Text: "Cancel", Token: "delete|Cancel"}},
	}
	if len(markup) != len(want) {
		t.Fatalf("keyboard layout: %#v", markup)
	}
	for i := range want {
		for j := range want[i] {
			if markup[i][j] != want[i][j] {
				t.Fatalf("keyboard layout: %#v", markup)
			}
		}
	}

	f.press(sess, "delete|2023")
	if got := sess.lastReply(t); got != `The directory "2023" is deleted` {
		t.Fatalf("delete reply: %q", got)
	}
	f.run(sess, "list_children")
	if got := sess.lastReply(t); got != "The current directory has no subdirectories" {
		t.Fatalf("list reply: %q", got)
	}
	var mediaCount int64
	f.db.Model(&models.MediaEntry{}).Count(&mediaCount)
	if mediaCount != 0 {
		t.Fatalf("cascading delete left %d media entries", mediaCount)
	}
}
