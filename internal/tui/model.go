// Package tui is the interactive week view. It renders the rows it gets
// from a Core and reports every switch flip through Core.OnToggle.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/idilsaglam/habits/internal/app"
	"github.com/idilsaglam/habits/internal/habit"
	"github.com/idilsaglam/habits/internal/model"
	"github.com/idilsaglam/habits/internal/stats"
	"github.com/idilsaglam/habits/internal/ui"
)

// Core is what the view needs from the application state.
type Core interface {
	app.ToggleHandler
	InitialData() model.Mapping
	Today() model.Day
	Week() []app.DayRow
	SavedTasks() []model.HabitEntry
	AddTask(d model.Day, task string) (stats.Summary, error)
	Stats() stats.Summary
	Reload() (stats.Summary, error)
	Sync() (stats.Summary, bool, error)
}

// fileChangedMsg is sent when the habits file changed on disk.
type fileChangedMsg struct{}

const statsWidth = 26

type Model struct {
	core    Core
	list    list.Model
	keys    keyMap
	changes <-chan struct{}

	summary stats.Summary
	width   int
	height  int

	showStats bool

	// Inline add
	adding bool
	addDay model.Day
	ti     textinput.Model

	status    string
	statusErr bool
}

// New builds the view over core. changes may be nil when the file is not
// watched.
func New(core Core, changes <-chan struct{}) Model {
	keys := defaultKeys()

	l := list.New(nil, rowDelegate{}, 0, 0)
	l.SetShowHelp(true)
	l.SetShowPagination(true)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.DisableQuitKeybindings()
	l.Styles.Title = ui.Current().Title
	l.Styles.HelpStyle = ui.Current().Muted
	l.Styles.PaginationStyle = ui.Current().Muted
	l.FilterInput.Prompt = "/ "
	l.AdditionalShortHelpKeys = keys.help
	l.AdditionalFullHelpKeys = keys.help

	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Habit name..."
	ti.CharLimit = 200

	m := Model{
		core:    core,
		list:    l,
		keys:    keys,
		changes: changes,
		ti:      ti,
		width:   80,
		height:  24,
	}
	m.populate(core.InitialData())
	m.resize()
	return m
}

// Run starts the program and blocks until the user quits or ctx is done.
func Run(ctx context.Context, core Core, changes <-chan struct{}) error {
	p := tea.NewProgram(New(core, changes), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return err
	}
	return nil
}

func waitForChange(ch <-chan struct{}) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return fileChangedMsg{}
	}
}

// Update and View implement Bubble Tea's Model
func (m Model) Init() tea.Cmd { return waitForChange(m.changes) }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil
	case fileChangedMsg:
		sum, changed, err := m.core.Sync()
		switch {
		case err != nil:
			m.summary = sum
			m.setError(err)
		case changed:
			m.setStatus("reloaded from disk")
			return m, tea.Batch(m.refresh(sum), waitForChange(m.changes))
		}
		return m, waitForChange(m.changes)
	}

	// add mode
	if m.adding {
		var cmd tea.Cmd
		if x, ok := msg.(tea.KeyMsg); ok {
			switch x.String() {
			case "enter":
				sum, err := m.core.AddTask(m.addDay, m.ti.Value())
				if err != nil {
					m.setError(err)
					return m, nil
				}
				m.setStatus("added " + strings.TrimSpace(m.ti.Value()) + " on " + m.addDay.Short())
				m.stopAdding()
				return m, m.refresh(sum)
			case "esc":
				m.stopAdding()
				return m, nil
			}
		}
		m.ti, cmd = m.ti.Update(msg)
		return m, cmd
	}

	if k, ok := msg.(tea.KeyMsg); ok && m.list.FilterState() != list.Filtering {
		switch {
		case key.Matches(k, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(k, m.keys.Toggle):
			return m, m.toggleSelected()
		case key.Matches(k, m.keys.Add):
			it, ok := m.list.SelectedItem().(rowItem)
			if !ok {
				return m, nil
			}
			m.adding = true
			m.addDay = it.day
			m.ti.SetValue("")
			m.ti.Placeholder = "Habit for " + ui.DayLabel(it.day) + "..."
			m.resize()
			return m, m.ti.Focus()
		case key.Matches(k, m.keys.Stats):
			m.showStats = !m.showStats
			m.resize()
			return m, nil
		case key.Matches(k, m.keys.Reload):
			m.reload("reloaded")
			return m, m.refresh(m.summary)
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *Model) toggleSelected() tea.Cmd {
	it, ok := m.list.SelectedItem().(rowItem)
	if !ok {
		return nil
	}
	sum, err := m.core.OnToggle(it.key(), !it.done)
	if err != nil {
		// The in-memory value changed even though the write failed.
		m.setError(err)
	} else {
		m.status = ""
	}
	return m.refresh(sum)
}

func (m *Model) reload(okMsg string) {
	sum, err := m.core.Reload()
	m.summary = sum
	if err != nil {
		m.setError(err)
		return
	}
	m.setStatus(okMsg)
}

// populate fills the first rows from the startup snapshot of the mapping.
func (m *Model) populate(data model.Mapping) {
	today := m.core.Today()
	l := habit.FromMapping(data)
	days := stats.Window(today)
	week := make([]app.DayRow, len(days))
	for i, d := range days {
		done, ok := l.Day(d)
		week[i] = app.DayRow{Day: d, Done: done, Recorded: ok, Tasks: l.TasksOn(d)}
	}
	m.setTitle(stats.Compute(data, today))
	m.list.SetItems(buildItems(week, l.SavedTasks()))
}

// refresh rebuilds the rows from the core and the title from sum.
func (m *Model) refresh(sum stats.Summary) tea.Cmd {
	m.setTitle(sum)
	return m.list.SetItems(buildItems(m.core.Week(), m.core.SavedTasks()))
}

func (m *Model) setTitle(sum stats.Summary) {
	m.summary = sum
	t := ui.Current()
	m.list.Title = fmt.Sprintf("Habits   %s %d  %s %d  %s %d",
		t.Success.Render(t.SymDone), sum.Completed,
		t.Pending.Render(t.SymPending), sum.Pending(),
		t.Accent.Render("Total"), sum.Total,
	)
}

func (m *Model) stopAdding() {
	m.adding = false
	m.ti.SetValue("")
	m.ti.Blur()
	m.resize()
}

func (m *Model) setStatus(s string) { m.status, m.statusErr = s, false }
func (m *Model) setError(err error) { m.status, m.statusErr = err.Error(), true }

func (m *Model) resize() {
	w := m.width - 4
	if m.showStats {
		w -= statsWidth + 1
	}
	h := m.height - 4
	if m.adding {
		h -= 4
	}
	m.list.SetSize(max(w, 10), max(h, 3))
}

func (m Model) View() string {
	t := ui.Current()

	content := m.list.View()
	if m.showStats {
		content = lipgloss.JoinHorizontal(lipgloss.Top, m.statsView(), " ", content)
	}
	if m.adding {
		bar := ui.PanelStyle(t).Render("Add habit on " + ui.DayLabel(m.addDay) + "\n" + m.ti.View())
		content += "\n" + bar
	}
	if m.status != "" {
		st := t.Muted
		if m.statusErr {
			st = t.Error
		}
		content += "\n" + st.Render(m.status)
	}
	return ui.PanelStyle(t).Render(content)
}

func (m Model) statsView() string {
	t := ui.Current()
	s := m.summary
	lines := []string{
		t.Title.Render("This week"),
		t.Muted.Render(m.core.Today().Short() + " - " + m.core.Today().AddDays(stats.WindowDays-1).Short()),
		"",
		fmt.Sprintf("Total:     %d", s.Total),
		fmt.Sprintf("Completed: %d", s.Completed),
		fmt.Sprintf("Rate:      %.1f%%", s.Rate),
		"",
		ui.ProgressBar(s.Completed, s.Total, statsWidth-10),
	}
	return ui.PanelStyle(t).Width(statsWidth).Render(strings.Join(lines, "\n"))
}
