package ui

import (
	"fmt"

	"telecloud/app/keyboard"
)

// ConsoleSession is the local command.Session implementation: replies
// are collected as transcript lines and inline keyboards become
// numbered choices the user picks by typing a number.
type ConsoleSession struct {
	lines   []string
	pending []keyboard.Button
}

func (s *ConsoleSession) Reply(text string) error {
	s.lines = append(s.lines, replyStyle.Render(text))
	return nil
}

func (s *ConsoleSession) ReplyKeyboard(text string, markup keyboard.Markup) error {
	s.lines = append(s.lines, replyStyle.Render(text))
	s.pending = nil
	for _, row := range markup {
		for _, b := range row {
			s.pending = append(s.pending, b)
			s.lines = append(s.lines, buttonStyle.Render(fmt.Sprintf("  %d. %s", len(s.pending), b.Text)))
		}
	}
	s.lines = append(s.lines, replyStyle.Render("Type the number of your choice"))
	return nil
}

func (s *ConsoleSession) ForwardMedia(reference string) error {
	s.lines = append(s.lines, replyStyle.Render("[photo] "+reference))
	return nil
}

// tokenAt maps a typed 1-based choice back to its callback token.
func (s *ConsoleSession) tokenAt(n int) (string, bool) {
	if n < 1 || n > len(s.pending) {
		return "", false
	}
	return s.pending[n-1].Token, true
}

// drain returns and clears the transcript collected by the last dispatch.
func (s *ConsoleSession) drain() []string {
	lines := s.lines
	s.lines = nil
	return lines
}
