package main

import (
	"context"
	"crypto/subtle"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/pokearena/arena/internal/config"
	"github.com/pokearena/arena/internal/email"
	"github.com/pokearena/arena/internal/input"
	"github.com/pokearena/arena/internal/menu"
	"github.com/pokearena/arena/internal/render"
	"github.com/pokearena/arena/internal/session"
)

// emailResultMsg carries the outcome of an asynchronous send back into
// Update.
type emailResultMsg struct {
	address string
	code    string
	err     error
}

type model struct {
	st      *session.State
	machine *menu.Machine
	sender  email.Sender
	spin    spinner.Model

	// practice reveals the code on screen when no SMTP relay is set
	practice bool
	sending  bool
}

func newModel(cfg *config.Config) model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return model{
		st:       session.New(0),
		machine:  menu.NewMachine(true),
		sender:   email.FromConfig(cfg.Email),
		spin:     sp,
		practice: cfg.Email.Relay == "",
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.machine.HandleResize(m.st, msg.Width, msg.Height)
		return m, nil

	case spinner.TickMsg:
		if !m.sending {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case emailResultMsg:
		m.sending = false
		m.machine.HandleEmailResult(m.st, msg.address, msg.code, msg.err)
		if m.practice && msg.code != "" {
			m.st.Notice = "Practice mode - your code is " + msg.code
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	for _, ev := range keyEvents(msg) {
		effect := m.machine.HandleKey(m.st, ev)
		switch effect.Kind {
		case menu.EffectQuit:
			return m, tea.Quit
		case menu.EffectSendEmail:
			m.sending = true
			cmds = append(cmds, m.sendCmd(effect.Address), m.spin.Tick)
		case menu.EffectVerifyCode:
			ok := subtle.ConstantTimeCompare(
				[]byte(effect.Submitted), []byte(effect.Expected)) == 1
			m.machine.HandleVerifyResult(m.st, ok)
		}
	}
	return m, tea.Batch(cmds...)
}

// sendCmd generates a code and delivers it off the update loop.
func (m model) sendCmd(address string) tea.Cmd {
	sender := m.sender
	return func() tea.Msg {
		code, err := email.GenerateCode()
		if err != nil {
			return emailResultMsg{address: address, err: err}
		}
		err = sender.Send(context.Background(), code, address)
		return emailResultMsg{address: address, code: code, err: err}
	}
}

func (m model) View() string {
	lines := render.Lines(m.st)
	if m.sending {
		lines = append(lines, "", "  "+m.spin.View()+" sending verification email...")
	}
	return strings.Join(lines, "\n")
}

// keyEvents translates a bubbletea key message into decoder-level events
// so the shared state machine sees the same vocabulary on both paths.
func keyEvents(msg tea.KeyMsg) []input.Event {
	switch msg.Type {
	case tea.KeyEnter:
		return []input.Event{input.KeyEvent(input.KeyEnter)}
	case tea.KeyBackspace:
		return []input.Event{input.KeyEvent(input.KeyBackspace)}
	case tea.KeyTab:
		return []input.Event{input.KeyEvent(input.KeyTab)}
	case tea.KeyEscape:
		return []input.Event{input.KeyEvent(input.KeyEsc)}
	case tea.KeyUp:
		return []input.Event{input.KeyEvent(input.KeyUp)}
	case tea.KeyDown:
		return []input.Event{input.KeyEvent(input.KeyDown)}
	case tea.KeyLeft:
		return []input.Event{input.KeyEvent(input.KeyLeft)}
	case tea.KeyRight:
		return []input.Event{input.KeyEvent(input.KeyRight)}
	case tea.KeySpace:
		return []input.Event{input.RuneEvent(' ')}
	case tea.KeyCtrlQ, tea.KeyCtrlC:
		return []input.Event{input.CtrlEvent('q')}
	case tea.KeyRunes:
		events := make([]input.Event, 0, len(msg.Runes))
		for _, r := range msg.Runes {
			ev := input.RuneEvent(r)
			if msg.Alt {
				ev.Mod |= input.ModAlt
			}
			events = append(events, ev)
		}
		return events
	default:
		return nil
	}
}

func runTUI(cfg *config.Config) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("arena-play needs an interactive terminal")
	}

	p := tea.NewProgram(newModel(cfg), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("session ended with error: %w", err)
	}
	return nil
}
