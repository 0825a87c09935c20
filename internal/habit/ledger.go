package habit

import (
	"sort"

	"github.com/idilsaglam/habits/internal/model"
)

// Ledger is the typed view of a model.Mapping. Converting a mapping to a
// Ledger and back is lossless.
type Ledger struct {
	Daily map[model.Day]bool
	Tasks map[TaskKey]bool
	Extra map[string]bool
}

func NewLedger() *Ledger {
	return &Ledger{
		Daily: map[model.Day]bool{},
		Tasks: map[TaskKey]bool{},
		Extra: map[string]bool{},
	}
}

// FromMapping builds a Ledger from the persisted mapping.
func FromMapping(m model.Mapping) *Ledger {
	l := NewLedger()
	for k, v := range m {
		l.Set(k, v)
	}
	return l
}

// Mapping renders the ledger back into its persisted form.
func (l *Ledger) Mapping() model.Mapping {
	out := make(model.Mapping, l.Len())
	for d, v := range l.Daily {
		out[DayKey(d)] = v
	}
	for k, v := range l.Tasks {
		out[EncodeTaskKey(k.Day, k.Task)] = v
	}
	for k, v := range l.Extra {
		out[k] = v
	}
	return out
}

func (l *Ledger) Len() int { return len(l.Daily) + len(l.Tasks) + len(l.Extra) }

// Set stores value under a raw persisted key, routing it to the table its
// grammar selects. It returns the kind the key was classified as.
func (l *Ledger) Set(key string, value bool) KeyKind {
	kind, d, task := ParseKey(key)
	switch kind {
	case KindDaily:
		l.Daily[d] = value
	case KindTask:
		l.Tasks[TaskKey{Day: d, Task: task}] = value
	default:
		l.Extra[key] = value
	}
	return kind
}

func (l *Ledger) SetDay(d model.Day, done bool) { l.Daily[d] = done }

func (l *Ledger) SetTask(d model.Day, task string, done bool) {
	l.Tasks[TaskKey{Day: d, Task: task}] = done
}

// Day returns the per-day flag for d and whether it was ever recorded.
func (l *Ledger) Day(d model.Day) (done, ok bool) {
	done, ok = l.Daily[d]
	return
}

// Task returns the flag for task on d and whether it was ever recorded.
func (l *Ledger) Task(d model.Day, task string) (done, ok bool) {
	done, ok = l.Tasks[TaskKey{Day: d, Task: task}]
	return
}

// ResolveTask returns the stored spelling of a task on d whose normalized
// name equals name, or name itself when none is recorded. name must already
// be normalized.
func (l *Ledger) ResolveTask(d model.Day, name string) string {
	if _, ok := l.Tasks[TaskKey{Day: d, Task: name}]; ok {
		return name
	}
	found := ""
	for k := range l.Tasks {
		if k.Day != d {
			continue
		}
		if n, err := NormalizeTask(k.Task); err == nil && n == name {
			if found == "" || k.Task < found {
				found = k.Task
			}
		}
	}
	if found == "" {
		return name
	}
	return found
}

// TasksOn returns the task entries recorded on d, sorted by name.
func (l *Ledger) TasksOn(d model.Day) []model.HabitEntry {
	var out []model.HabitEntry
	for k, v := range l.Tasks {
		if k.Day == d {
			out = append(out, model.HabitEntry{Date: k.Day, Task: k.Task, Done: v})
		}
	}
	sortEntries(out)
	return out
}

// SavedTasks lists every task entry by date then name.
func (l *Ledger) SavedTasks() []model.HabitEntry {
	out := make([]model.HabitEntry, 0, len(l.Tasks))
	for k, v := range l.Tasks {
		out = append(out, model.HabitEntry{Date: k.Day, Task: k.Task, Done: v})
	}
	sortEntries(out)
	return out
}

// Entries lists daily and task entries by date; on the same date the daily
// entry comes first. Extra keys are not entries and are omitted.
func (l *Ledger) Entries() []model.HabitEntry {
	out := make([]model.HabitEntry, 0, len(l.Daily)+len(l.Tasks))
	for d, v := range l.Daily {
		out = append(out, model.HabitEntry{Date: d, Done: v})
	}
	out = append(out, l.SavedTasks()...)
	sortEntries(out)
	return out
}

func sortEntries(es []model.HabitEntry) {
	sort.Slice(es, func(i, j int) bool {
		if es[i].Date != es[j].Date {
			return es[i].Date.Before(es[j].Date)
		}
		return es[i].Task < es[j].Task
	})
}
