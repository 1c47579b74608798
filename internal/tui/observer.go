package tui

import tea "github.com/charmbracelet/bubbletea"

// stateUpdates bridges the synchronous subscribe/notify contract of the
// state containers to the Bubble Tea message loop.
type stateUpdates struct {
	ch chan tea.Msg
}

func newStateUpdates() *stateUpdates {
	return &stateUpdates{ch: make(chan tea.Msg, 32)}
}

// push delivers a state-change message (non-blocking if the channel is full;
// the model re-reads the containers on every message, so drops are safe).
func (u *stateUpdates) push(msg tea.Msg) {
	select {
	case u.ch <- msg:
	default:
	}
}

// wait returns a command that blocks for the next state-change message.
func (u *stateUpdates) wait() tea.Cmd {
	return func() tea.Msg {
		return <-u.ch
	}
}
