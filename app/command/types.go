package command

import (
	"context"
	"errors"

	"telecloud/app/keyboard"
)

// Request is one inbound unit of work from the chat transport: a
// textual command, a media upload, or a button press.
type Request struct {
	Conversation string
	Owner        string // plaintext transport user id
	Command      string
	Args         []string
	Media        string // raw media reference, set for upload
	Token        string // callback token, set for callback
}

// Session is the reply side of a conversation. The chat transport
// implements it; ui.ConsoleSession is the local implementation.
type Session interface {
	Reply(text string) error
	ReplyKeyboard(text string, markup keyboard.Markup) error
	ForwardMedia(reference string) error
}

// ErrMediaGone marks a single media item the transport can no longer
// deliver. It is swallowed per item during show; any other delivery
// failure is fatal and propagates.
var ErrMediaGone = errors.New("media no longer available")

// Handler executes one command verb. NArgs is the exact argument count
// the verb requires; -1 disables the check.
type Handler struct {
	NArgs int
	Fn    func(ctx context.Context, req Request, sess Session) error
}
