// Package keyboard encodes (action, target) pairs into the opaque
// callback tokens carried by inline menu buttons, and renders menus.
package keyboard

import (
	"errors"
	"strings"
)

// Actions form a small closed set; dispatching an unknown action is a
// programming error, not user input.
const (
	ActionGoto   = "goto"
	ActionDelete = "delete"
)

const tokenSeparator = "|"

// ErrBadToken is returned for tokens that do not decode to a known
// action and a target. Stale-but-well-formed tokens decode fine and are
// rejected later against live tree state.
var ErrBadToken = errors.New("keyboard: malformed callback token")

// EncodeToken joins an action and a target name into one opaque token.
func EncodeToken(action, target string) string {
	return action + tokenSeparator + target
}

// DecodeToken is the inverse split. The target keeps any separator
// characters it contains; only the first one delimits the action.
func DecodeToken(token string) (action, target string, err error) {
	action, target, ok := strings.Cut(token, tokenSeparator)
	if !ok {
		return "", "", ErrBadToken
	}
	switch action {
	case ActionGoto, ActionDelete:
		return action, target, nil
	}
	return "", "", ErrBadToken
}

// Button is one selectable menu entry.
type Button struct {
	Text  string `json:"text"`
	Token string `json:"token"`
}

// Markup is the button grid attached to a reply.
type Markup [][]Button

// Render lays out one button per child name, two per row, plus a final
// cancel row whose token carries the reserved sentinel target. Input
// order is preserved, so callers passing name-sorted children get a
// stable layout.
func Render(action string, names []string, cancelSentinel string) Markup {
	var markup Markup
	for i := 0; i < len(names); i += 2 {
		row := []Button{{Text: names[i], Token: EncodeToken(action, names[i])}}
		if i+1 < len(names) {
			row = append(row, Button{Text: names[i+1], Token: EncodeToken(action, names[i+1])})
		}
		markup = append(markup, row)
	}
	markup = append(markup, []Button{{
		Text:  cancelSentinel,
		Token: EncodeToken(action, cancelSentinel),
	}})
	return markup
}
