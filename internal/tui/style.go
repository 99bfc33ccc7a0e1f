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

import "github.com/charmbracelet/lipgloss"

var (
	black  = lipgloss.Color("0")
	red    = lipgloss.Color("1")
	green  = lipgloss.Color("2")
	yellow = lipgloss.Color("3")
	cyan   = lipgloss.AdaptiveColor{Light: "4", Dark: "6"}
	white  = lipgloss.AdaptiveColor{Light: "0", Dark: "7"}
	gray   = lipgloss.Color("8")
)

type Style struct {
	Border       lipgloss.Style
	Title        lipgloss.Style
	Status       lipgloss.Style
	Error        lipgloss.Style
	Cursor       lipgloss.Style
	Item         lipgloss.Style
	ItemSelected lipgloss.Style
	Unread       lipgloss.Style
	Time         lipgloss.Style
	Own          lipgloss.Style
	Other        lipgloss.Style
	Pending      lipgloss.Style
}

func DefaultStyle() *Style {
	return &Style{
		Border:       lipgloss.NewStyle().BorderLeft(true).BorderForeground(cyan).BorderStyle(lipgloss.ThickBorder()).Padding(0, 1),
		Title:        lipgloss.NewStyle().Foreground(green).Bold(true),
		Status:       lipgloss.NewStyle().Foreground(gray),
		Error:        lipgloss.NewStyle().Foreground(red),
		Cursor:       lipgloss.NewStyle().Foreground(yellow),
		Item:         lipgloss.NewStyle().Foreground(white),
		ItemSelected: lipgloss.NewStyle().Background(green).Foreground(black),
		Unread:       lipgloss.NewStyle().Foreground(yellow).Bold(true),
		Time:         lipgloss.NewStyle().Foreground(gray),
		Own:          lipgloss.NewStyle().Foreground(cyan),
		Other:        lipgloss.NewStyle().Foreground(green),
		Pending:      lipgloss.NewStyle().Foreground(gray).Italic(true),
	}
}
