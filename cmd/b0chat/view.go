package main

import (
	"fmt"

	"github.com/bzero-app/bzero/internal/chat"
	"github.com/bzero-app/bzero/pkg/errcode"
)

// view renders timeline changes incrementally on stdout. It remembers which
// message ids it has printed and the last status it printed for each, so an
// update signal only produces output for what actually changed.
type view struct {
	selfID  string
	printed map[string]chat.MessageStatus
	state   chat.ConnState
}

func newView(selfID string) *view {
	return &view{
		selfID:  selfID,
		printed: make(map[string]chat.MessageStatus),
	}
}

func (v *view) renderTimeline(c *chat.Cache) {
	for _, m := range c.Timeline() {
		v.printMessage(m)
		v.printed[m.DisplayID()] = m.EffectiveStatus()
	}
}

// renderNew prints messages not yet shown and status transitions on ones
// already shown. A reconciled send shows up under its server id; the temp id
// entry is simply never touched again.
func (v *view) renderNew(c *chat.Cache) {
	for _, m := range c.Timeline() {
		id := m.DisplayID()
		prev, seen := v.printed[id]
		status := m.EffectiveStatus()

		if !seen {
			v.printMessage(m)
		} else if prev != status && status == chat.StatusFailed {
			fmt.Printf("! send failed, /retry %s\n", m.TempID)
		}
		v.printed[id] = status
	}
}

func (v *view) renderState(state chat.ConnState, lastErr *errcode.Error) {
	if state == v.state {
		return
	}
	v.state = state

	if lastErr != nil {
		fmt.Printf("* %s: %s\n", state, lastErr.Message)
		return
	}
	fmt.Printf("* %s\n", state)
}

func (v *view) printMessage(m chat.Message) {
	if m.IsSystem() {
		fmt.Printf("* %s\n", m.Content)
		return
	}

	name := m.SenderID
	if m.Sender != nil && m.Sender.Nickname != "" {
		name = m.Sender.Nickname
		if m.Sender.ProfileEmoji != "" {
			name = m.Sender.ProfileEmoji + " " + name
		}
	}
	if m.SenderID == v.selfID {
		name = "you"
	}

	switch m.EffectiveStatus() {
	case chat.StatusSending:
		fmt.Printf("  %s: %s (sending)\n", name, m.Content)
	case chat.StatusFailed:
		fmt.Printf("  %s: %s (failed, /retry %s)\n", name, m.Content, m.TempID)
	default:
		if m.CardID != "" && m.Kind == chat.KindCardShared {
			fmt.Printf("  %s shared a card: %s\n", name, m.CardID)
			return
		}
		fmt.Printf("  %s: %s\n", name, m.Content)
	}
}
