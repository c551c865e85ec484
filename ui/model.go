package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
)

// AssetEntry is one written (or failed) asset in the log list
type AssetEntry struct {
	Filename string
	Error    string
}

func (a AssetEntry) FilterValue() string { return a.Filename }
func (a AssetEntry) Title() string       { return a.Filename }
func (a AssetEntry) Description() string {
	if a.Error != "" {
		return fmt.Sprintf("❌ %s", a.Error)
	}
	return "✓ written"
}

// ExportModel shows overall progress and the asset log of one export
type ExportModel struct {
	title   string
	total   int
	done    int
	entries []AssetEntry

	overall progress.Model
	assets  list.Model

	width  int
	height int

	finished bool
	err      error
	quitting bool
	onQuit   func()
}

// NewExportModel creates the export TUI. onQuit runs when the user quits
// early and should cancel the export.
func NewExportModel(title string, onQuit func()) ExportModel {
	assets := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	assets.Title = "Assets"
	assets.SetShowHelp(false)

	return ExportModel{
		title:   title,
		overall: progress.New(progress.WithDefaultGradient()),
		assets:  assets,
		onQuit:  onQuit,
	}
}

// Init implements tea.Model
func (m ExportModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m ExportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			if !m.finished && m.onQuit != nil {
				m.onQuit()
			}
			m.quitting = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.overall.Width = max(10, msg.Width-30)
		m.assets.SetSize(msg.Width-4, msg.Height/2)

	case ExportStartedMsg:
		m.total = msg.Total

	case AssetDoneMsg:
		m.done++
		entry := AssetEntry{Filename: msg.Filename}
		if msg.Err != nil {
			entry.Error = msg.Err.Error()
		}
		m.entries = append(m.entries, entry)
		items := make([]list.Item, len(m.entries))
		for i, e := range m.entries {
			items[i] = e
		}
		m.assets.SetItems(items)

	case ExportFinishedMsg:
		m.finished = true
		m.err = msg.Err
		return m, tea.Quit
	}

	return m, nil
}

// Percent is the share of assets handled so far
func (m ExportModel) Percent() float64 {
	if m.total == 0 {
		return 0
	}
	return min(1, float64(m.done)/float64(m.total))
}

// Err is the export's outcome once finished
func (m ExportModel) Err() error {
	return m.err
}

// View implements tea.Model
func (m ExportModel) View() string {
	if m.quitting && !m.finished {
		return "Cancelling export...\n"
	}

	header := HeaderStyle.Render(m.title)
	overall := fmt.Sprintf("Assets: %s (%d/%d)", m.overall.ViewAs(m.Percent()), m.done, m.total)

	status := ExportingStyle.Render("Exporting...")
	switch {
	case m.finished && m.err != nil:
		status = ErrorStyle.Render(fmt.Sprintf("❌ Export failed: %v", m.err))
	case m.finished:
		status = SuccessStyle.Render("✅ Export complete")
	}

	sections := []string{
		header,
		overall,
		m.assets.View(),
		status,
		HelpStyle.Render("Controls: [q] Quit"),
	}
	return strings.Join(sections, "\n\n")
}
