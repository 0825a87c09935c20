package tui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/idilsaglam/habits/internal/app"
	"github.com/idilsaglam/habits/internal/habit"
	"github.com/idilsaglam/habits/internal/model"
	"github.com/idilsaglam/habits/internal/ui"
)

// rowItem adapts a week row or a saved task to bubbles/list.Item.
type rowItem struct {
	kind  habit.KeyKind
	day   model.Day
	task  string
	done  bool
	tasks int // tasks recorded on day, for week rows
}

// key is the persisted key the row's switch writes.
func (i rowItem) key() string {
	if i.kind == habit.KindTask {
		return habit.EncodeTaskKey(i.day, i.task)
	}
	return habit.DayKey(i.day)
}

func (i rowItem) FilterValue() string {
	if i.kind == habit.KindTask {
		return i.day.String() + " " + i.task
	}
	return i.day.String()
}

// buildItems lays out the seven week rows followed by every saved task.
func buildItems(week []app.DayRow, saved []model.HabitEntry) []list.Item {
	out := make([]list.Item, 0, len(week)+len(saved))
	for _, r := range week {
		out = append(out, rowItem{kind: habit.KindDaily, day: r.Day, done: r.Done, tasks: len(r.Tasks)})
	}
	for _, e := range saved {
		out = append(out, rowItem{kind: habit.KindTask, day: e.Date, task: e.Task, done: e.Done})
	}
	return out
}

// Custom delegate to control how rows render (single line)
type rowDelegate struct{}

func (d rowDelegate) Height() int                               { return 1 }
func (d rowDelegate) Spacing() int                              { return 0 }
func (d rowDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d rowDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(rowItem)
	if !ok {
		return
	}
	t := ui.Current()

	var line string
	if it.kind == habit.KindTask {
		text := it.task
		if it.done {
			text = t.Muted.Strikethrough(true).Render(text)
		}
		line = fmt.Sprintf("   %s %s %s", ui.Box(it.done), t.Muted.Render(it.day.String()), text)
	} else {
		line = fmt.Sprintf("%s %s", ui.Box(it.done), t.Title.Render(ui.DayLabel(it.day)))
		if it.tasks > 0 {
			line += t.Muted.Render(fmt.Sprintf("  %d task(s)", it.tasks))
		}
	}

	prefix := "  "
	if index == m.Index() {
		prefix = t.Accent.Bold(true).Render("> ")
	}
	fmt.Fprint(w, prefix+line)
}
