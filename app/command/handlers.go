package command

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"telecloud/app/crypto"
	"telecloud/app/keyboard"
	"telecloud/app/models"
	"telecloud/app/services"
	"telecloud/global"
)

// Handlers wires the command verbs to the tree and navigation services.
type Handlers struct {
	Tree         *services.TreeService
	Nav          *services.NavigationService
	Codec        *crypto.Codec
	CancelButton string
}

func (h *Handlers) Install(d *Dispatcher) {
	d.Register("create", Handler{NArgs: 1, Fn: h.Create})
	d.Register("delete", Handler{NArgs: 0, Fn: h.Delete})
	d.Register("list_children", Handler{NArgs: 0, Fn: h.ListChildren})
	d.Register("current", Handler{NArgs: 0, Fn: h.Current})
	d.Register("goto", Handler{NArgs: 0, Fn: h.Goto})
	d.Register("back", Handler{NArgs: 0, Fn: h.Back})
	d.Register("upload", Handler{NArgs: -1, Fn: h.Upload})
	d.Register("show", Handler{NArgs: 0, Fn: h.Show})
	d.Register("help", Handler{NArgs: 0, Fn: h.Help})
	d.Register("callback", Handler{NArgs: -1, Fn: h.Callback})
}

// ownerKey is the encrypted owner identifier used everywhere below the
// command layer; raw transport ids never reach storage.
func (h *Handlers) ownerKey(req Request) string {
	return h.Codec.Encrypt(req.Owner)
}

func (h *Handlers) Create(ctx context.Context, req Request, sess Session) error {
	name := req.Args[0]
	owner := h.ownerKey(req)
	current, err := h.Nav.Current(ctx, req.Conversation, owner)
	if err != nil {
		return err
	}
	if _, err := h.Tree.CreateDirectory(name, owner, current); err != nil {
		if errors.Is(err, services.ErrAlreadyExists) {
			return sess.Reply(fmt.Sprintf("The directory %q already exists", name))
		}
		if errors.Is(err, services.ErrDirectoryGone) {
			return sess.Reply("The current directory no longer exists, try again")
		}
		return err
	}
	return sess.Reply(fmt.Sprintf("The directory %q is successfully created", name))
}

func (h *Handlers) Delete(ctx context.Context, req Request, sess Session) error {
	return h.childMenu(ctx, req, sess, keyboard.ActionDelete, "Choose a directory to delete")
}

func (h *Handlers) Goto(ctx context.Context, req Request, sess Session) error {
	return h.childMenu(ctx, req, sess, keyboard.ActionGoto, "Choose a directory to go to")
}

func (h *Handlers) childMenu(ctx context.Context, req Request, sess Session, action, prompt string) error {
	owner := h.ownerKey(req)
	current, err := h.Nav.Current(ctx, req.Conversation, owner)
	if err != nil {
		return err
	}
	children, err := h.Tree.ChildrenOf(current)
	if err != nil {
		return err
	}
	if len(children) == 0 {
		return sess.Reply("The current directory has no subdirectories")
	}
	return sess.ReplyKeyboard(prompt, keyboard.Render(action, directoryNames(children), h.CancelButton))
}

func (h *Handlers) ListChildren(ctx context.Context, req Request, sess Session) error {
	owner := h.ownerKey(req)
	current, err := h.Nav.Current(ctx, req.Conversation, owner)
	if err != nil {
		return err
	}
	children, err := h.Tree.ChildrenOf(current)
	if err != nil {
		return err
	}
	if len(children) == 0 {
		return sess.Reply("The current directory has no subdirectories")
	}
	return sess.Reply(strings.Join(directoryNames(children), ", "))
}

func (h *Handlers) Current(ctx context.Context, req Request, sess Session) error {
	current, err := h.Nav.Current(ctx, req.Conversation, h.ownerKey(req))
	if err != nil {
		return err
	}
	return sess.Reply(fmt.Sprintf("You are in %q", current.Name))
}

func (h *Handlers) Back(ctx context.Context, req Request, sess Session) error {
	dir, atRoot, err := h.Nav.MoveToParent(ctx, req.Conversation, h.ownerKey(req))
	if err != nil {
		return err
	}
	if atRoot {
		return sess.Reply("You are already in the root directory")
	}
	return sess.Reply(fmt.Sprintf("Moved to %q", dir.Name))
}

func (h *Handlers) Upload(ctx context.Context, req Request, sess Session) error {
	if req.Media == "" {
		return sess.Reply("Nothing to save")
	}
	owner := h.ownerKey(req)
	current, err := h.Nav.Current(ctx, req.Conversation, owner)
	if err != nil {
		return err
	}
	if _, err := h.Tree.AttachFile(current, h.Codec.Encrypt(req.Media)); err != nil {
		if errors.Is(err, services.ErrDirectoryGone) {
			return sess.Reply("The current directory no longer exists, try again")
		}
		if errors.Is(err, services.ErrAlreadyAttached) {
			return sess.Reply("This photo is already saved in another directory")
		}
		return err
	}
	return sess.Reply("Saved")
}

// Show forwards every media entry of the current directory. A single
// item the transport lost is logged and skipped; the rest still go out.
func (h *Handlers) Show(ctx context.Context, req Request, sess Session) error {
	owner := h.ownerKey(req)
	current, err := h.Nav.Current(ctx, req.Conversation, owner)
	if err != nil {
		return err
	}
	entries, err := h.Tree.FilesOf(current)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return sess.Reply("The current directory has no photos")
	}
	log := global.Logger.With().Str("conversation", req.Conversation).Logger()
	for _, entry := range entries {
		reference, err := h.Codec.Decrypt(entry.Reference)
		if err != nil {
			log.Error().Str("entry", entry.ID).Msg("stored reference does not decrypt, skipping")
			continue
		}
		if err := sess.ForwardMedia(reference); err != nil {
			if errors.Is(err, ErrMediaGone) {
				log.Warn().Str("entry", entry.ID).Msg("media gone on transport side, skipping")
				continue
			}
			return fmt.Errorf("forward media: %w", err)
		}
	}
	return nil
}

func (h *Handlers) Help(ctx context.Context, req Request, sess Session) error {
	return sess.Reply(strings.Join([]string{
		"Commands description:",
		"/create <name> - create a new directory in the current one",
		"/delete - choose a subdirectory to delete with its contents",
		"/list_children - list subdirectories of the current directory",
		"/current - show the name of the current directory",
		"/goto - choose a subdirectory to enter",
		"/back - move to the parent directory",
		"/show - show photos saved in the current directory",
		"Send a photo to save it in the current directory",
	}, "\n"))
}

// Callback dispatches a button press. The decoded target is always
// re-validated against the live tree; the tree may have changed between
// the menu being rendered and the button being pressed.
func (h *Handlers) Callback(ctx context.Context, req Request, sess Session) error {
	action, target, err := keyboard.DecodeToken(req.Token)
	if err != nil {
		global.Logger.Error().
			Str("conversation", req.Conversation).
			Str("token", req.Token).
			Msg("malformed callback token")
		return sess.Reply("This menu is no longer valid")
	}
	if target == h.CancelButton {
		return sess.Reply("Canceled")
	}
	owner := h.ownerKey(req)
	current, err := h.Nav.Current(ctx, req.Conversation, owner)
	if err != nil {
		return err
	}
	switch action {
	case keyboard.ActionGoto:
		dir, err := h.Nav.MoveTo(ctx, req.Conversation, owner, target)
		if errors.Is(err, services.ErrNotAChild) {
			return sess.Reply(fmt.Sprintf("The directory %q no longer exists here", target))
		}
		if err != nil {
			return err
		}
		return sess.Reply(fmt.Sprintf("Moved to %q", dir.Name))
	case keyboard.ActionDelete:
		child, err := h.Tree.ChildOf(current, target, owner)
		if err != nil {
			return err
		}
		if child == nil {
			return sess.Reply(fmt.Sprintf("The directory %q no longer exists here", target))
		}
		if err := h.Tree.DeleteSubtree(child); err != nil {
			return err
		}
		return sess.Reply(fmt.Sprintf("The directory %q is deleted", target))
	default:
		return fmt.Errorf("unhandled callback action %q", action)
	}
}

func directoryNames(dirs []*models.Directory) []string {
	names := make([]string, 0, len(dirs))
	for _, d := range dirs {
		names = append(names, d.Name)
	}
	return names
}
