// Terminal viewer for the live update feed. Tails the update log the same
// way a stream client does: cursor at the current length, no history replay.
package tui

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"fusionops-sim/internal/catalog"
	"fusionops-sim/internal/model"
)

const (
	pollEvery = 500 * time.Millisecond
	maxLines  = 200
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	countStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	typeStyles  = map[string]lipgloss.Style{
		model.UpdateAlertRaised:  lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		model.UpdateEventCreated: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		model.UpdateAssetUpdated: lipgloss.NewStyle().Foreground(lipgloss.Color("38")),
		model.UpdateAdminNotice:  lipgloss.NewStyle().Foreground(lipgloss.Color("135")),
	}
)

type tickMsg time.Time

type updatesMsg struct {
	items  []model.Update
	cursor int64
	err    error
}

// Model is the bubbletea model for the feed viewer.
type Model struct {
	cat    *catalog.Catalog
	cursor int64
	counts map[string]int
	lines  []string
	vp     viewport.Model
	ready  bool
	err    error
}

// New creates a feed viewer over the catalog.
func New(cat *catalog.Catalog) Model {
	return Model{cat: cat, cursor: -1, counts: make(map[string]int)}
}

func (m Model) Init() tea.Cmd {
	return m.poll()
}

// poll reads any log entries past the cursor. A cursor of -1 means first
// contact: it snaps to the current length without replaying history.
func (m Model) poll() tea.Cmd {
	cat, cursor := m.cat, m.cursor
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		length, err := cat.UpdatesLen(ctx)
		if err != nil {
			return updatesMsg{cursor: cursor, err: err}
		}
		if cursor < 0 || cursor > length {
			return updatesMsg{cursor: length}
		}
		if length == cursor {
			return updatesMsg{cursor: cursor}
		}
		items, err := cat.UpdatesRange(ctx, cursor, length-1)
		if err != nil {
			return updatesMsg{cursor: cursor, err: err}
		}
		return updatesMsg{items: items, cursor: length}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}
		var cmd tea.Cmd
		m.vp, cmd = m.vp.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		if !m.ready {
			m.vp = viewport.New(msg.Width, msg.Height-3)
			m.ready = true
		} else {
			m.vp.Width = msg.Width
			m.vp.Height = msg.Height - 3
		}
		m.vp.SetContent(strings.Join(m.lines, "\n"))
		return m, nil

	case updatesMsg:
		m.err = msg.err
		m.cursor = msg.cursor
		for _, u := range msg.items {
			m.counts[u.Type]++
			m.lines = append(m.lines, m.formatLine(u))
		}
		if len(m.lines) > maxLines {
			m.lines = m.lines[len(m.lines)-maxLines:]
		}
		if m.ready {
			m.vp.SetContent(strings.Join(m.lines, "\n"))
			m.vp.GotoBottom()
		}
		return m, tea.Tick(pollEvery, func(t time.Time) tea.Msg { return tickMsg(t) })

	case tickMsg:
		return m, m.poll()
	}
	return m, nil
}

func (m Model) formatLine(u model.Update) string {
	raw, _ := json.Marshal(u.Data)
	payload := string(raw)
	width := 80
	if m.ready && m.vp.Width > 20 {
		width = m.vp.Width
	}
	style, ok := typeStyles[u.Type]
	if !ok {
		style = countStyle
	}
	line := fmt.Sprintf("%s %s %s",
		time.Now().Format("15:04:05"),
		style.Render(fmt.Sprintf("%-14s", u.Type)),
		payload)
	return wordwrap.String(line, width)
}

func (m Model) View() string {
	if !m.ready {
		return "connecting..."
	}
	types := make([]string, 0, len(m.counts))
	for t := range m.counts {
		types = append(types, t)
	}
	sort.Strings(types)
	parts := make([]string, 0, len(types))
	for _, t := range types {
		parts = append(parts, fmt.Sprintf("%s=%d", t, m.counts[t]))
	}
	header := headerStyle.Render("fusionops live feed")
	counts := countStyle.Render(strings.Join(parts, "  "))
	status := countStyle.Render("q to quit")
	if m.err != nil {
		status = countStyle.Render("store error: " + m.err.Error())
	}
	return fmt.Sprintf("%s  %s\n%s\n%s", header, counts, m.vp.View(), status)
}
