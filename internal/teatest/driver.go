// Package teatest drives bubbletea models synchronously in tests.
//
// A Driver stands in for tea.Program: it calls Update directly and runs
// each returned Cmd inline, feeding the resulting message back in. Cmds
// that block (timers, cursor blinks) are abandoned after a short wait.
package teatest

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// maxDepth bounds how many chained Cmds a single Send may run.
const maxDepth = 64

const cmdTimeout = 10 * time.Millisecond

// Driver holds the model under test.
type Driver struct {
	t     *testing.T
	Model tea.Model

	// Quitting is set once a Cmd yields tea.QuitMsg. Later sends are ignored.
	Quitting bool
}

// Option configures a Driver before the test starts sending input.
type Option func(*Driver)

// WithSize delivers an initial WindowSizeMsg.
func WithSize(w, h int) Option {
	return func(d *Driver) {
		d.Resize(w, h)
	}
}

// New wraps model and runs its Init command.
func New(t *testing.T, model tea.Model, opts ...Option) *Driver {
	t.Helper()
	d := &Driver{t: t, Model: model}
	for _, opt := range opts {
		opt(d)
	}
	d.run(d.Model.Init(), 0)
	return d
}

// Send passes msg to Update and runs whatever Cmd comes back.
func (d *Driver) Send(msg tea.Msg) {
	d.t.Helper()
	if d.Quitting {
		return
	}
	var cmd tea.Cmd
	d.Model, cmd = d.Model.Update(msg)
	d.run(cmd, 0)
}

// Resize simulates a terminal resize.
func (d *Driver) Resize(w, h int) {
	d.Send(tea.WindowSizeMsg{Width: w, Height: h})
}

// PressKey sends a single printable key.
func (d *Driver) PressKey(r rune) {
	d.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
}

// Press sends a non-printable key such as tea.KeyDown or tea.KeyEsc.
func (d *Driver) Press(k tea.KeyType) {
	d.Send(tea.KeyMsg{Type: k})
}

func (d *Driver) PressDown() { d.Press(tea.KeyDown) }
func (d *Driver) PressUp()   { d.Press(tea.KeyUp) }
func (d *Driver) PressEsc()  { d.Press(tea.KeyEsc) }

// View renders the current model.
func (d *Driver) View() string {
	return d.Model.View()
}

func (d *Driver) run(cmd tea.Cmd, depth int) {
	if cmd == nil {
		return
	}
	if depth >= maxDepth {
		d.t.Logf("teatest: command chain cut at depth %d", maxDepth)
		return
	}
	msg := await(cmd)
	switch msg := msg.(type) {
	case nil:
		return
	case tea.BatchMsg:
		for _, sub := range msg {
			d.run(sub, depth+1)
		}
	case tea.QuitMsg:
		d.Quitting = true
	default:
		var next tea.Cmd
		d.Model, next = d.Model.Update(msg)
		d.run(next, depth+1)
	}
}

// await returns nil when cmd does not finish within cmdTimeout.
func await(cmd tea.Cmd) tea.Msg {
	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(cmdTimeout):
		return nil
	}
}
