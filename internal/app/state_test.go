package app

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/habits/internal/habit"
	"github.com/idilsaglam/habits/internal/model"
	"github.com/idilsaglam/habits/internal/store/jsonstore"
)

var june1 = model.Day{Year: 2024, Month: time.June, Day: 1}

func fixedClock() time.Time { return time.Date(2024, time.June, 1, 9, 0, 0, 0, time.Local) }

func quietLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func newTestState(t *testing.T, seed model.Mapping) (*State, *jsonstore.Store) {
	t.Helper()
	store := jsonstore.New(filepath.Join(t.TempDir(), "habit_data", "habits.json"))
	if seed != nil {
		require.NoError(t, store.Save(seed))
	}
	s, err := New(store, WithClock(fixedClock), WithLogger(quietLogger()))
	require.NoError(t, err)
	return s, store
}

// memStore is an in-memory Store that can be told to fail.
type memStore struct {
	m       model.Mapping
	saves   int
	saveErr error
	loadErr error
}

func (s *memStore) Load() (model.Mapping, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	return s.m.Clone(), nil
}

func (s *memStore) Save(m model.Mapping) error {
	s.saves++
	if s.saveErr != nil {
		return s.saveErr
	}
	s.m = m.Clone()
	return nil
}

func TestNewOnMissingFile(t *testing.T) {
	s, _ := newTestState(t, nil)
	assert.Empty(t, s.InitialData())
	assert.Equal(t, june1, s.Today())
}

func TestNewMalformedFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "habits.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o644))

	_, err := New(jsonstore.New(path), WithLogger(quietLogger()))
	var rerr *jsonstore.ReadError
	assert.ErrorAs(t, err, &rerr)
}

func TestOnToggleInsertsAndPersistsImmediately(t *testing.T) {
	s, store := newTestState(t, nil)

	sum, err := s.OnToggle("2024-06-03", true)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Total)
	assert.Equal(t, 1, sum.Completed)
	assert.InDelta(t, 100.0, sum.Rate, 1e-9)

	onDisk, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, model.Mapping{"2024-06-03": true}, onDisk)

	// Last write wins.
	sum, err = s.OnToggle("2024-06-03", false)
	require.NoError(t, err)
	assert.Equal(t, 0, sum.Completed)
	onDisk, _ = store.Load()
	assert.Equal(t, model.Mapping{"2024-06-03": false}, onDisk)
}

func TestOnToggleKeepsUnknownKeys(t *testing.T) {
	s, store := newTestState(t, model.Mapping{"legacy-key": true})

	_, err := s.OnToggle("2024-06-01-run", true)
	require.NoError(t, err)
	onDisk, _ := store.Load()
	assert.Equal(t, model.Mapping{"legacy-key": true, "2024-06-01-run": true}, onDisk)
}

func TestSummaryFollowsWindow(t *testing.T) {
	s, _ := newTestState(t, model.Mapping{
		"2024-06-01":     true,
		"2024-06-01-run": false,
		"2024-06-10":     true,
	})
	sum := s.Stats()
	assert.Equal(t, 2, sum.Total)
	assert.Equal(t, 1, sum.Completed)
	assert.InDelta(t, 50.0, sum.Rate, 1e-9)

	later := s.StatsFor(model.Day{Year: 2024, Month: time.June, Day: 10})
	assert.Equal(t, 1, later.Total)
}

func TestDailyAndTaskSwitchesStaySeparate(t *testing.T) {
	s, store := newTestState(t, nil)

	_, err := s.ToggleDay(june1, true)
	require.NoError(t, err)
	_, err = s.ToggleTask(june1, "run", false)
	require.NoError(t, err)

	onDisk, _ := store.Load()
	assert.Equal(t, model.Mapping{"2024-06-01": true, "2024-06-01-run": false}, onDisk)
}

func TestToggleTaskNormalizesName(t *testing.T) {
	s, store := newTestState(t, nil)

	_, err := s.ToggleTask(june1, "  café ", true)
	require.NoError(t, err)
	onDisk, _ := store.Load()
	assert.Equal(t, model.Mapping{"2024-06-01-café": true}, onDisk)

	_, err = s.ToggleTask(june1, "   ", true)
	assert.Error(t, err)
}

func TestAddTask(t *testing.T) {
	s, store := newTestState(t, nil)

	sum, err := s.AddTask(june1, "read")
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Total)
	assert.Equal(t, 0, sum.Completed)

	_, err = s.ToggleTask(june1, "read", true)
	require.NoError(t, err)

	_, err = s.AddTask(june1, "read")
	assert.ErrorIs(t, err, ErrTaskExists)
	onDisk, _ := store.Load()
	assert.Equal(t, model.Mapping{"2024-06-01-read": true}, onDisk)
}

func TestWeekRows(t *testing.T) {
	s, _ := newTestState(t, model.Mapping{
		"2024-06-01":       true,
		"2024-06-03-walk":  true,
		"2024-06-03-apple": false,
		"2024-06-09":       true,
	})

	rows := s.Week()
	require.Len(t, rows, 7)
	assert.Equal(t, "2024-06-01", rows[0].Day.String())
	assert.True(t, rows[0].Recorded)
	assert.True(t, rows[0].Done)
	assert.False(t, rows[1].Recorded)
	require.Len(t, rows[2].Tasks, 2)
	assert.Equal(t, "apple", rows[2].Tasks[0].Task)
	assert.Equal(t, "2024-06-07", rows[6].Day.String())

	assert.Len(t, s.SavedTasks(), 2)
	assert.Len(t, s.Entries(), 4)
}

func TestSaveFailureKeepsValueAndReturnsError(t *testing.T) {
	boom := errors.New("disk full")
	ms := &memStore{m: model.Mapping{}, saveErr: boom}
	s, err := New(ms, WithClock(fixedClock), WithLogger(quietLogger()))
	require.NoError(t, err)

	sum, err := s.OnToggle("2024-06-01", true)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, sum.Completed)
	assert.Equal(t, 1, ms.saves, "no retry")
	assert.Equal(t, model.Mapping{"2024-06-01": true}, s.InitialData())
}

func TestReload(t *testing.T) {
	ms := &memStore{m: model.Mapping{"2024-06-01": false}}
	s, err := New(ms, WithClock(fixedClock), WithLogger(quietLogger()))
	require.NoError(t, err)

	ms.m = model.Mapping{"2024-06-01": true, "2024-06-02": true}
	sum, err := s.Reload()
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Completed)

	ms.loadErr = errors.New("truncated")
	sum, err = s.Reload()
	assert.Error(t, err)
	assert.Equal(t, 2, sum.Completed, "ledger kept on failed reload")
}

func TestInitialDataIsACopy(t *testing.T) {
	s, _ := newTestState(t, model.Mapping{"2024-06-01": true})
	m := s.InitialData()
	m["2024-06-02"] = true
	assert.Len(t, s.InitialData(), 1)
}

func TestConcurrentTogglesAreSerialized(t *testing.T) {
	ms := &memStore{m: model.Mapping{}}
	s, err := New(ms, WithClock(fixedClock), WithLogger(quietLogger()))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 7; i++ {
		wg.Add(1)
		go func(d model.Day) {
			defer wg.Done()
			_, _ = s.ToggleDay(d, true)
		}(june1.AddDays(i))
	}
	wg.Wait()

	assert.Equal(t, 7, ms.saves)
	assert.Len(t, ms.m, 7)
	assert.Equal(t, 7, s.Stats().Completed)
}

var _ ToggleHandler = (*State)(nil)

func TestToggleTaskMatchesDecomposedStoredName(t *testing.T) {
	s, store := newTestState(t, model.Mapping{"2024-06-01-cafe\u0301": false})

	sum, err := s.ToggleTask(june1, "cafe\u0301", true)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Total)
	assert.Equal(t, 1, sum.Completed)

	onDisk, _ := store.Load()
	assert.Equal(t, model.Mapping{"2024-06-01-cafe\u0301": true}, onDisk)

	_, err = s.AddTask(june1, "  caf\u00e9")
	assert.ErrorIs(t, err, ErrTaskExists)
	onDisk, _ = store.Load()
	assert.Len(t, onDisk, 1)
}

func TestTogglesRejectUnrepresentableDays(t *testing.T) {
	s, store := newTestState(t, nil)
	far := model.Day{Year: 10000, Month: time.January, Day: 1}

	_, err := s.ToggleDay(far, true)
	assert.ErrorIs(t, err, habit.ErrInvalidDate)
	_, err = s.ToggleTask(far, "run", true)
	assert.ErrorIs(t, err, habit.ErrInvalidDate)
	_, err = s.AddTask(far, "run")
	assert.ErrorIs(t, err, habit.ErrInvalidDate)

	onDisk, _ := store.Load()
	assert.Empty(t, onDisk)
}

func TestSyncSkipsOwnWrites(t *testing.T) {
	ms := &memStore{m: model.Mapping{}}
	s, err := New(ms, WithClock(fixedClock), WithLogger(quietLogger()))
	require.NoError(t, err)

	_, err = s.ToggleDay(june1, true)
	require.NoError(t, err)
	sum, changed, err := s.Sync()
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, 1, sum.Completed)

	ms.m = model.Mapping{"2024-06-01": true, "2024-06-02": true}
	sum, changed, err = s.Sync()
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, 2, sum.Completed)
}

func TestSyncKeepsUnsavedChanges(t *testing.T) {
	ms := &memStore{m: model.Mapping{}}
	s, err := New(ms, WithClock(fixedClock), WithLogger(quietLogger()))
	require.NoError(t, err)

	ms.saveErr = errors.New("disk full")
	_, err = s.ToggleDay(june1, true)
	require.Error(t, err)

	_, changed, err := s.Sync()
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, model.Mapping{"2024-06-01": true}, s.InitialData())

	// A successful save clears the flag and external edits flow again.
	ms.saveErr = nil
	_, err = s.ToggleDay(june1.AddDays(1), true)
	require.NoError(t, err)
	ms.m = model.Mapping{}
	_, changed, err = s.Sync()
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Empty(t, s.InitialData())
}

func TestReloadDropsUnsavedChanges(t *testing.T) {
	ms := &memStore{m: model.Mapping{}, saveErr: errors.New("disk full")}
	s, err := New(ms, WithClock(fixedClock), WithLogger(quietLogger()))
	require.NoError(t, err)

	_, _ = s.ToggleDay(june1, true)
	_, err = s.Reload()
	require.NoError(t, err)
	assert.Empty(t, s.InitialData())
}
