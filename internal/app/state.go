// Package app owns the in-memory habit ledger and is the only place it is
// mutated. Every mutation persists the full mapping and returns the
// recomputed weekly summary.
package app

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"sync"
	"time"

	"github.com/idilsaglam/habits/internal/habit"
	"github.com/idilsaglam/habits/internal/logfields"
	"github.com/idilsaglam/habits/internal/model"
	"github.com/idilsaglam/habits/internal/stats"
)

var ErrTaskExists = errors.New("task already recorded")

// Store persists the full mapping. *jsonstore.Store implements it.
type Store interface {
	Load() (model.Mapping, error)
	Save(model.Mapping) error
}

// ToggleHandler is the single entry point the UI calls when a switch flips.
type ToggleHandler interface {
	OnToggle(key string, value bool) (stats.Summary, error)
}

// DayRow is one line of the week view.
type DayRow struct {
	Day      model.Day
	Done     bool
	Recorded bool // the per-day switch has been touched at least once
	Tasks    []model.HabitEntry
}

// State is the application state: constructed once at startup, shared by
// the UI and the CLI. The mutex keeps each handler (mutate, persist,
// recompute) a single critical section.
type State struct {
	mu     sync.Mutex
	store  Store
	ledger *habit.Ledger
	now    func() time.Time
	logger *slog.Logger

	// unsaved is set while the ledger holds changes the last save lost.
	unsaved bool
}

type Option func(*State)

// WithClock replaces time.Now; the reference date is the clock's local day.
func WithClock(now func() time.Time) Option {
	return func(s *State) { s.now = now }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *State) { s.logger = l }
}

// New loads the mapping once. A load error is returned unchanged so the
// caller can treat a malformed file as fatal.
func New(store Store, opts ...Option) (*State, error) {
	s := &State{
		store:  store,
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, o := range opts {
		o(s)
	}
	m, err := store.Load()
	if err != nil {
		return nil, err
	}
	s.ledger = habit.FromMapping(m)
	s.logger.Debug("Loaded habits", logfields.Entries(s.ledger.Len()))
	return s, nil
}

// Today is the reference date of the completion window.
func (s *State) Today() model.Day { return model.DayOf(s.now()) }

// InitialData returns a copy of the mapping for the view to populate from.
func (s *State) InitialData() model.Mapping {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Mapping()
}

// OnToggle stores value under key, inserting it when absent, persists the
// whole mapping and returns the new summary. If persisting fails the
// in-memory value is kept and the error returned.
func (s *State) OnToggle(key string, value bool) (stats.Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kind := s.ledger.Set(key, value)
	return s.commitLocked("toggle", logfields.Key(key), logfields.Kind(kind.String()), logfields.Value(value))
}

// ToggleDay sets the per-day flag of d.
func (s *State) ToggleDay(d model.Day, done bool) (stats.Summary, error) {
	if err := habit.CheckDay(d); err != nil {
		return s.Stats(), err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ledger.SetDay(d, done)
	return s.commitLocked("toggle", logfields.Key(habit.DayKey(d)), logfields.Kind(habit.KindDaily.String()), logfields.Value(done))
}

// ToggleTask sets the flag of task on d. The name is normalized first and
// matched against the spellings already recorded on d.
func (s *State) ToggleTask(d model.Day, task string, done bool) (stats.Summary, error) {
	task, err := s.checkTask(d, task)
	if err != nil {
		return s.Stats(), err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	task = s.ledger.ResolveTask(d, task)
	s.ledger.SetTask(d, task, done)
	return s.commitLocked("toggle", logfields.Key(habit.EncodeTaskKey(d, task)), logfields.Kind(habit.KindTask.String()), logfields.Value(done))
}

// AddTask records task on d as not done. An existing entry is left as is
// and ErrTaskExists returned.
func (s *State) AddTask(d model.Day, task string) (stats.Summary, error) {
	task, err := s.checkTask(d, task)
	if err != nil {
		return s.Stats(), err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	task = s.ledger.ResolveTask(d, task)
	if _, ok := s.ledger.Task(d, task); ok {
		return stats.Compute(s.ledger.Mapping(), s.Today()), fmt.Errorf("%s on %s: %w", task, d, ErrTaskExists)
	}
	s.ledger.SetTask(d, task, false)
	return s.commitLocked("add", logfields.Date(d.String()), logfields.Task(task))
}

// Reload replaces the ledger with the file's current content, dropping any
// unsaved changes. On error the in-memory ledger is kept.
func (s *State) Reload() (stats.Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, err := s.store.Load()
	if err != nil {
		return stats.Compute(s.ledger.Mapping(), s.Today()), err
	}
	s.ledger = habit.FromMapping(m)
	s.unsaved = false
	s.logger.Debug("Reloaded habits", logfields.Entries(s.ledger.Len()))
	return stats.Compute(m, s.Today()), nil
}

// Sync picks up external edits of the file. It reports false and keeps the
// ledger when the file matches it, or when the ledger holds changes the last
// save failed to write.
func (s *State) Sync() (stats.Summary, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current := s.ledger.Mapping()
	if s.unsaved {
		s.logger.Warn("Ignoring file change while changes are unsaved")
		return stats.Compute(current, s.Today()), false, nil
	}
	m, err := s.store.Load()
	if err != nil {
		return stats.Compute(current, s.Today()), false, err
	}
	if maps.Equal(m, current) {
		return stats.Compute(current, s.Today()), false, nil
	}
	s.ledger = habit.FromMapping(m)
	s.logger.Debug("Synced habits from disk", logfields.Entries(s.ledger.Len()))
	return stats.Compute(m, s.Today()), true, nil
}

// Stats summarizes the window starting today.
func (s *State) Stats() stats.Summary { return s.StatsFor(s.Today()) }

// StatsFor summarizes the window starting at ref.
func (s *State) StatsFor(ref model.Day) stats.Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return stats.Compute(s.ledger.Mapping(), ref)
}

// Week returns the rows of the window starting today.
func (s *State) Week() []DayRow {
	s.mu.Lock()
	defer s.mu.Unlock()
	days := stats.Window(s.Today())
	rows := make([]DayRow, len(days))
	for i, d := range days {
		done, ok := s.ledger.Day(d)
		rows[i] = DayRow{Day: d, Done: done, Recorded: ok, Tasks: s.ledger.TasksOn(d)}
	}
	return rows
}

// SavedTasks lists every recorded task entry by date.
func (s *State) SavedTasks() []model.HabitEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.SavedTasks()
}

// Entries lists every daily and task entry by date.
func (s *State) Entries() []model.HabitEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Entries()
}

func (s *State) commitLocked(op string, attrs ...any) (stats.Summary, error) {
	m := s.ledger.Mapping()
	sum := stats.Compute(m, s.Today())
	if err := s.store.Save(m); err != nil {
		s.unsaved = true
		s.logger.Error("Failed to save habits", append(attrs, logfields.Error(err))...)
		return sum, fmt.Errorf("%s: %w", op, err)
	}
	s.unsaved = false
	s.logger.Debug("Habit "+op, append(attrs, logfields.Summary(sum.Total, sum.Completed, sum.Rate))...)
	return sum, nil
}

func (s *State) checkTask(d model.Day, task string) (string, error) {
	if err := habit.CheckDay(d); err != nil {
		return "", err
	}
	return habit.NormalizeTask(task)
}
