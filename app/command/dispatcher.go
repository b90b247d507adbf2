package command

import (
	"context"
	"fmt"

	"telecloud/global"
)

// Dispatcher maps command verbs to handlers.
type Dispatcher struct {
	handlers map[string]Handler
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: map[string]Handler{}}
}

func (d *Dispatcher) Register(name string, h Handler) {
	d.handlers[name] = h
}

// Dispatch executes the handler for the request and logs the outcome.
// Expected conditions are turned into replies by the handlers; an error
// reaching this point is an internal fault and the user only sees a
// generic message.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request, sess Session) {
	log := global.Logger.With().
		Str("conversation", req.Conversation).
		Str("command", req.Command).
		Logger()

	h, ok := d.handlers[req.Command]
	if !ok {
		log.Error().Msg("unknown command")
		_ = sess.Reply(fmt.Sprintf("Unknown command /%s, try /help", req.Command))
		return
	}
	if h.NArgs >= 0 && len(req.Args) != h.NArgs {
		_ = sess.Reply(fmt.Sprintf(
			"Unexpected amount of arguments. Command /%s requires %d arguments to be passed",
			req.Command, h.NArgs))
		return
	}
	if err := h.Fn(ctx, req, sess); err != nil {
		log.Error().Err(err).Msg("command failed")
		_ = sess.Reply("Unexpected state, please try again")
		return
	}
	log.Debug().Msg("command completed")
}
