package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"industry-console/internal/calendar"
	"industry-console/internal/cms"
	"industry-console/internal/console"
	"industry-console/internal/model"
)

const cellWidth = 14

var (
	accent = lipgloss.Color("#7C3AED")
	muted  = lipgloss.Color("#6B7280")
	green  = lipgloss.Color("#10B981")
	red    = lipgloss.Color("#EF4444")
)

type styles struct {
	Title    lipgloss.Style
	Muted    lipgloss.Style
	Label    lipgloss.Style
	Active   lipgloss.Style
	Area     lipgloss.Style
	Success  lipgloss.Style
	Error    lipgloss.Style
	Info     lipgloss.Style
	Cell     lipgloss.Style
	Other    lipgloss.Style
	Today    lipgloss.Style
	Selected lipgloss.Style
}

func newStyles() styles {
	cell := lipgloss.NewStyle().Width(cellWidth).Height(5).Padding(0, 1).
		Border(lipgloss.NormalBorder(), false, true, true, false).BorderForeground(muted)
	return styles{
		Title:    lipgloss.NewStyle().Foreground(accent).Bold(true).MarginBottom(1),
		Muted:    lipgloss.NewStyle().Foreground(muted),
		Label:    lipgloss.NewStyle().Bold(true),
		Active:   lipgloss.NewStyle().Foreground(accent).Bold(true),
		Area:     lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(muted).Padding(0, 1),
		Success:  lipgloss.NewStyle().Foreground(green).Bold(true),
		Error:    lipgloss.NewStyle().Foreground(red).Bold(true),
		Info:     lipgloss.NewStyle().Foreground(accent),
		Cell:     cell,
		Other:    cell.Foreground(muted),
		Today:    cell.BorderForeground(accent).Bold(true),
		Selected: cell.Reverse(true),
	}
}

// toast renders a notification the way the web console shows its toasts.
func (st styles) toast(n console.Notification) string {
	switch n.Level {
	case console.LevelSuccess:
		return st.Success.Render("✓ " + n.Message)
	case console.LevelError:
		return st.Error.Render("✗ " + n.Message)
	}
	return st.Info.Render(n.Message)
}

func (st styles) widget(w cms.Widget) string {
	val := w.Value
	if val == "" {
		val = st.Muted.Render(w.Placeholder)
	}
	label := st.Label.Render(w.Label) + st.Muted.Render(" ("+w.Key+")")
	switch w.Kind {
	case cms.WidgetTextArea:
		return label + "\n" + st.Area.Render(val)
	case cms.WidgetNumber:
		return label + ": " + val + st.Muted.Render(" #")
	}
	return label + ": " + val
}

func (st styles) widgets(ws []cms.Widget) string {
	lines := make([]string, len(ws))
	for i, w := range ws {
		lines[i] = st.widget(w)
	}
	return strings.Join(lines, "\n")
}

// sidebar lists the editor's sections with the active one marked.
func (st styles) sidebar(e *cms.Editor) string {
	var b strings.Builder
	for _, s := range e.Sections() {
		if s == e.Active() {
			b.WriteString(st.Active.Render("▸ "+s) + "\n")
			continue
		}
		b.WriteString("  " + s + "\n")
	}
	return b.String()
}

// section renders the active section's form: the hero form, or one card per
// list item with its index.
func (st styles) section(e *cms.Editor) string {
	sec := e.Active()
	if sec == cms.HeroSection {
		return st.widgets(cms.RenderHero(e.Hero()))
	}
	items := e.Items(sec)
	if len(items) == 0 {
		return st.Muted.Render("No items yet. Add one with: cms add " + sec)
	}
	fields := cms.Fields(sec)
	cards := make([]string, len(items))
	for i, it := range items {
		cards[i] = st.Label.Render(fmt.Sprintf("#%d", i)) + "\n" + st.widgets(cms.Render(fields, it))
	}
	return strings.Join(cards, "\n\n")
}

func (st styles) editor(e *cms.Editor) string {
	head := st.Title.Render(e.Title() + " content")
	side := lipgloss.NewStyle().Width(20).Render(st.sidebar(e))
	return head + "\n" + lipgloss.JoinHorizontal(lipgloss.Top, side, st.section(e))
}

func (st styles) cell(c console.CellView) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%2d", c.Day()))
	for _, a := range c.Shown {
		b.WriteString("\n" + truncate(a.StartTime+" "+a.CustomerName, cellWidth-2))
	}
	if c.More > 0 {
		b.WriteString(fmt.Sprintf("\n+%d more", c.More))
	}
	style := st.Cell
	switch {
	case c.Selected:
		style = st.Selected
	case c.Today:
		style = st.Today
	case !c.CurrentMonth:
		style = st.Other
	}
	return style.Render(b.String())
}

var weekdays = []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// month renders the 6x7 grid with its month title and weekday header.
func (st styles) month(m time.Time, cells []console.CellView) string {
	head := make([]string, len(weekdays))
	for i, d := range weekdays {
		head[i] = lipgloss.NewStyle().Width(cellWidth + 1).Padding(0, 1).Bold(true).Render(d)
	}
	rows := []string{st.Title.Render(m.Format("January 2006")), lipgloss.JoinHorizontal(lipgloss.Top, head...)}
	for r := 0; r < calendar.Rows; r++ {
		row := make([]string, calendar.Cols)
		for c := 0; c < calendar.Cols; c++ {
			row[c] = st.cell(cells[r*calendar.Cols+c])
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// day is the side panel for a selected date.
func (st styles) day(d time.Time, appts []model.Appointment) string {
	var b strings.Builder
	b.WriteString(st.Title.Render(d.Format("Monday, January 2")) + "\n")
	if len(appts) == 0 {
		b.WriteString(st.Muted.Render("No appointments"))
		return b.String()
	}
	for _, a := range appts {
		line := fmt.Sprintf("%s  %-16s %-14s %s", a.StartTime, a.CustomerName, a.ServiceName, a.Status)
		if a.StaffName != "" {
			line += st.Muted.Render("  with " + a.StaffName)
		}
		b.WriteString(line + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
