package ui

import (
	"context"
	"strconv"
	"strings"

	"telecloud/app/command"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Model is the interactive console: a prompt for commands, a transcript
// of replies, and numbered selection for rendered keyboards.
type Model struct {
	dispatcher   *command.Dispatcher
	session      *ConsoleSession
	input        textinput.Model
	history      []string
	conversation string
	owner        string
	quitting     bool
}

func New(dispatcher *command.Dispatcher, owner string) Model {
	ti := textinput.New()
	ti.Placeholder = "/help"
	ti.Prompt = "> "
	ti.Focus()
	ti.CharLimit = 256
	return Model{
		dispatcher:   dispatcher,
		session:      &ConsoleSession{},
		input:        ti,
		conversation: "console:" + owner,
		owner:        owner,
	}
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.quitting = true
			return m, tea.Quit
		case tea.KeyEnter:
			line := strings.TrimSpace(m.input.Value())
			m.input.SetValue("")
			if line == "" {
				return m, nil
			}
			m.history = append(m.history, promptStyle.Render("> "+line))
			m.submit(line)
			m.history = append(m.history, m.session.drain()...)
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit turns one input line into a dispatched request. A leading "/"
// marks a command, a bare number answers the pending keyboard, and any
// other text is treated as a media reference to upload.
func (m *Model) submit(line string) {
	ctx := context.Background()
	req := command.Request{Conversation: m.conversation, Owner: m.owner}

	if n, err := strconv.Atoi(line); err == nil {
		token, ok := m.session.tokenAt(n)
		if !ok {
			_ = m.session.Reply("No such choice")
			return
		}
		req.Command = "callback"
		req.Token = token
		m.dispatcher.Dispatch(ctx, req, m.session)
		return
	}

	if strings.HasPrefix(line, "/") {
		fields := strings.Fields(strings.TrimPrefix(line, "/"))
		req.Command = fields[0]
		req.Args = fields[1:]
		if req.Command == "upload" && len(req.Args) == 1 {
			req.Media = req.Args[0]
			req.Args = nil
		}
		m.dispatcher.Dispatch(ctx, req, m.session)
		return
	}

	req.Command = "upload"
	req.Media = line
	m.dispatcher.Dispatch(ctx, req, m.session)
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render("telecloud") + "\n\n")
	const keep = 30
	history := m.history
	if len(history) > keep {
		history = history[len(history)-keep:]
	}
	for _, line := range history {
		b.WriteString(line + "\n")
	}
	b.WriteString("\n" + m.input.View() + "\n")
	return docStyle.Render(b.String())
}
