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

package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/desotools/desokit/internal/poller"
)

// Run runs the watch mode until the user quits or ctx is cancelled.  The
// data is refreshed by an adaptive poller with the given intervals.
func Run(ctx context.Context, src Source, user string, pageSize int, fast, idle, activeWindow time.Duration) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var prog *tea.Program
	f := &fetcher{src: src, limit: pageSize}
	p := poller.New(func(ctx context.Context) error {
		msg := f.fetch(ctx)
		if ctx.Err() == nil {
			prog.Send(msg)
		}
		return msg.err
	}, poller.WithIntervals(fast, idle, activeWindow))

	m := New(ctx, src, p, user, pageSize)
	m.f = f
	prog = tea.NewProgram(m, tea.WithContext(ctx), tea.WithAltScreen())
	if err := p.Start(ctx); err != nil {
		return err
	}
	_, err := prog.Run()
	cancel()
	p.Stop()
	return err
}
