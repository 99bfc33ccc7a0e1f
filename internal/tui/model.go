// Copyright (c) 2026 desokit Contributors.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package tui is the watch mode of the chat command: a conversation list and
// thread view refreshed by an adaptive poller.
package tui

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"github.com/desotools/desokit/internal/messaging"
	"github.com/desotools/desokit/internal/profile"
)

// Source provides the chat data.
type Source interface {
	Conversations(ctx context.Context) ([]messaging.Conversation, error)
	Thread(ctx context.Context, conv messaging.Conversation, before time.Time, limit int) ([]messaging.Message, error)
	MarkRead(ctx context.Context, conv messaging.Conversation, ts time.Time) error
}

// Poller is the polling control used by the model.
type Poller interface {
	Start(ctx context.Context) error
	Stop()
	Running() bool
	MarkActivity()
	Interval() time.Duration
	// Poll fetches now unless a fetch is in progress, and reports whether
	// it started one.
	Poll(ctx context.Context) bool
}

// busyRetry is the delay before a manual refresh that found a fetch in
// progress is tried again.
const busyRetry = 250 * time.Millisecond

// refreshMsg carries the result of a fetch.
type refreshMsg struct {
	convs  []messaging.Conversation
	convID string // thread conversation, if a thread was fetched
	thread []messaging.Message
	err    error
}

// pollBusyMsg reports that a manual refresh was refused by the poller.
type pollBusyMsg struct{}

// retryMsg asks for the refused refresh to be tried again.
type retryMsg struct{}

// pausedMsg reports the polling state after a pause/resume.
type pausedMsg struct {
	paused bool
	err    error
}

// fetcher fetches the conversations and the open thread.
type fetcher struct {
	src   Source
	limit int

	mu   sync.Mutex
	open *messaging.Conversation
}

func (f *fetcher) setOpen(c *messaging.Conversation) {
	f.mu.Lock()
	f.open = c
	f.mu.Unlock()
}

func (f *fetcher) openConv() *messaging.Conversation {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.open
}

func (f *fetcher) fetch(ctx context.Context) refreshMsg {
	var msg refreshMsg
	msg.convs, msg.err = f.src.Conversations(ctx)
	if msg.err != nil {
		return msg
	}
	if open := f.openConv(); open != nil {
		msg.convID = open.ID
		msg.thread, msg.err = f.src.Thread(ctx, *open, time.Time{}, f.limit)
	}
	return msg
}

type Model struct {
	Style  *Style
	Keymap *Keymap

	ctx  context.Context
	f    *fetcher
	poll Poller
	user string
	help help.Model

	convs   []messaging.Conversation
	cursor  int
	open    *messaging.Conversation
	thread  []messaging.Message
	err     error
	updated time.Time
	paused  bool
	loading bool
}

// New creates the model for user.  poll may be nil, in which case the data
// is only refreshed on request.
func New(ctx context.Context, src Source, poll Poller, user string, pageSize int) *Model {
	return &Model{
		Style:   DefaultStyle(),
		Keymap:  DefaultKeymap(),
		ctx:     ctx,
		f:       &fetcher{src: src, limit: pageSize},
		poll:    poll,
		user:    user,
		help:    help.New(),
		paused:  poll == nil,
		loading: true,
	}
}

func (m *Model) Init() tea.Cmd {
	if m.poll != nil {
		// the poller delivers the first result
		return nil
	}
	return m.refresh()
}

// refresh fetches the data now.  With a poller, the fetch goes through it,
// so that it never overlaps a scheduled one.
func (m *Model) refresh() tea.Cmd {
	ctx, f, poll := m.ctx, m.f, m.poll
	if poll == nil {
		return func() tea.Msg {
			return f.fetch(ctx)
		}
	}
	return func() tea.Msg {
		if !poll.Poll(ctx) {
			return pollBusyMsg{}
		}
		return nil
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case refreshMsg:
		return m, m.applyRefresh(msg)
	case pollBusyMsg:
		return m, tea.Tick(busyRetry, func(time.Time) tea.Msg { return retryMsg{} })
	case retryMsg:
		if !m.loading {
			// the running fetch brought what was asked for
			return m, nil
		}
		return m, m.refresh()
	case pausedMsg:
		m.paused = msg.paused
		if msg.err != nil {
			m.err = msg.err
		}
		return m, nil
	case tea.KeyMsg:
		if m.poll != nil {
			m.poll.MarkActivity()
		}
		return m, m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.Keymap.Quit):
		return tea.Quit
	case key.Matches(msg, m.Keymap.Up):
		if m.open == nil && m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.Keymap.Down):
		if m.open == nil && m.cursor < len(m.convs)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.Keymap.Open):
		if m.open != nil || len(m.convs) == 0 {
			return nil
		}
		c := m.convs[m.cursor]
		m.open = &c
		m.thread = nil
		m.loading = true
		m.f.setOpen(&c)
		return m.refresh()
	case key.Matches(msg, m.Keymap.Back):
		if m.open != nil {
			m.open = nil
			m.thread = nil
			m.f.setOpen(nil)
		}
	case key.Matches(msg, m.Keymap.Refresh):
		m.loading = true
		return m.refresh()
	case key.Matches(msg, m.Keymap.Pause):
		return m.togglePause()
	}
	return nil
}

// togglePause stops or starts the poller outside of the update loop, as
// Stop waits for the running fetch, which may be sending to the program.
func (m *Model) togglePause() tea.Cmd {
	if m.poll == nil {
		return nil
	}
	poll, ctx := m.poll, m.ctx
	return func() tea.Msg {
		if poll.Running() {
			poll.Stop()
			return pausedMsg{paused: true}
		}
		if err := poll.Start(ctx); err != nil {
			return pausedMsg{paused: true, err: err}
		}
		return pausedMsg{paused: false}
	}
}

func (m *Model) applyRefresh(msg refreshMsg) tea.Cmd {
	if msg.err != nil {
		m.loading = false
		m.err = msg.err
		return nil
	}
	// a result without the open thread leaves it loading
	m.loading = m.open != nil && msg.convID != m.open.ID
	m.err = nil
	m.updated = time.Now()
	m.convs = msg.convs
	if m.cursor >= len(m.convs) {
		m.cursor = max(0, len(m.convs)-1)
	}
	if m.open == nil || msg.convID != m.open.ID {
		return nil
	}
	m.thread = msg.thread
	for _, c := range m.convs {
		if c.ID == m.open.ID {
			m.open = &c
			break
		}
	}
	if len(m.thread) == 0 {
		return nil
	}
	conv, ts, ctx, src := *m.open, m.thread[len(m.thread)-1].Timestamp, m.ctx, m.f.src
	return func() tea.Msg {
		if err := src.MarkRead(ctx, conv, ts); err != nil {
			return refreshMsg{err: fmt.Errorf("mark read: %w", err)}
		}
		return nil
	}
}

func (m *Model) View() string {
	var b strings.Builder
	if m.open != nil {
		m.threadView(&b)
	} else {
		m.listView(&b)
	}
	b.WriteString("\n" + m.status())
	if m.err != nil {
		b.WriteString("\n" + m.Style.Error.Render("error: "+m.err.Error()))
	}
	b.WriteString("\n" + m.help.ShortHelpView(m.Keymap.Bindings()))
	return m.Style.Border.Render(b.String())
}

func (m *Model) status() string {
	var parts []string
	switch {
	case m.loading:
		parts = append(parts, "loading...")
	case !m.updated.IsZero():
		parts = append(parts, "updated "+humanize.Time(m.updated))
	}
	if m.paused {
		parts = append(parts, "polling paused")
	} else if m.poll != nil {
		parts = append(parts, "polling every "+m.poll.Interval().String())
	}
	return m.Style.Status.Render(strings.Join(parts, " · "))
}

func displayName(c messaging.Conversation) string {
	if c.Username != "" {
		return c.Username
	}
	return profile.ShortKey(c.OtherKey)
}

func (m *Model) listView(b *strings.Builder) {
	b.WriteString(m.Style.Title.Render("Conversations of "+profile.ShortKey(m.user)) + "\n")
	if len(m.convs) == 0 && !m.loading {
		b.WriteString(m.Style.Status.Render("no conversations") + "\n")
	}
	const (
		padding = "  "
		pointer = "> "
	)
	for i, c := range m.convs {
		name := displayName(c)
		if c.Unread > 0 {
			name += " " + m.Style.Unread.Render(fmt.Sprintf("(%d)", c.Unread))
		}
		line := fmt.Sprintf("%s  %s", name, profile.TruncateMiddle(c.LastMessage, 30, 10))
		when := m.Style.Time.Render(humanize.Time(c.LastTimestamp))
		if i == m.cursor {
			b.WriteString(m.Style.Cursor.Render(pointer) + m.Style.ItemSelected.Render(line) + " " + when + "\n")
		} else {
			b.WriteString(m.Style.Item.Render(padding+line) + " " + when + "\n")
		}
	}
}

func (m *Model) threadView(b *strings.Builder) {
	b.WriteString(m.Style.Title.Render(displayName(*m.open)) + "\n")
	if len(m.thread) == 0 && !m.loading {
		b.WriteString(m.Style.Status.Render("no messages") + "\n")
	}
	for _, msg := range m.thread {
		who := m.Style.Other.Render(displayName(*m.open))
		if msg.IsFrom(m.user) {
			who = m.Style.Own.Render("you")
		}
		text := msg.Text
		switch {
		case msg.Failed:
			text += " " + m.Style.Error.Render("(failed)")
		case msg.Pending:
			text += " " + m.Style.Pending.Render("(sending)")
		}
		fmt.Fprintf(b, "%s %s: %s\n", m.Style.Time.Render(msg.Timestamp.Format(time.DateTime)), who, text)
	}
}
