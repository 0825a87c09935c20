package habit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/habits/internal/model"
)

var june1 = model.Day{Year: 2024, Month: time.June, Day: 1}

func TestParseKey(t *testing.T) {
	cases := []struct {
		key  string
		kind KeyKind
		task string
	}{
		{"2024-06-01", KindDaily, ""},
		{"2024-06-01-run", KindTask, "run"},
		{"2024-06-01-read-30-min", KindTask, "read-30-min"},
		{"2024-06-01- ", KindTask, " "},
		{"2024-06-01-", KindOther, ""},
		{"2024-06-01run", KindOther, ""},
		{"2024-6-1-run", KindOther, ""},
		{"2024-13-01", KindOther, ""},
		{"short", KindOther, ""},
		{"", KindOther, ""},
	}
	for _, tc := range cases {
		kind, d, task := ParseKey(tc.key)
		assert.Equal(t, tc.kind, kind, tc.key)
		assert.Equal(t, tc.task, task, tc.key)
		if kind != KindOther {
			assert.Equal(t, june1, d, tc.key)
		}
	}
}

func TestKeyEncodersInvertParseKey(t *testing.T) {
	kind, d, _ := ParseKey(DayKey(june1))
	assert.Equal(t, KindDaily, kind)
	assert.Equal(t, june1, d)

	kind, d, task := ParseKey(EncodeTaskKey(june1, "stretch-10"))
	assert.Equal(t, KindTask, kind)
	assert.Equal(t, june1, d)
	assert.Equal(t, "stretch-10", task)
}

func TestNormalizeTask(t *testing.T) {
	// "é" as e + combining acute folds to the precomposed form.
	got, err := NormalizeTask("  cafe\u0301 ")
	require.NoError(t, err)
	assert.Equal(t, "caf\u00e9", got)

	_, err = NormalizeTask(" \t ")
	assert.ErrorIs(t, err, ErrEmptyTask)
}

func TestLedgerRoundTripIsLossless(t *testing.T) {
	in := model.Mapping{
		"2024-06-01":     true,
		"2024-06-01-run": false,
		"2024-06-02-a-b": true,
		"2024-06-01-":    true,
		"legacy":         false,
	}
	l := FromMapping(in)
	assert.Len(t, l.Daily, 1)
	assert.Len(t, l.Tasks, 2)
	assert.Len(t, l.Extra, 2)
	assert.Equal(t, in, l.Mapping())
}

func TestDailyAndTaskEntriesAreIndependent(t *testing.T) {
	l := NewLedger()
	l.SetDay(june1, true)
	l.SetTask(june1, "run", false)

	done, ok := l.Day(june1)
	assert.True(t, ok)
	assert.True(t, done)

	done, ok = l.Task(june1, "run")
	assert.True(t, ok)
	assert.False(t, done)

	l.SetTask(june1, "run", true)
	l.SetDay(june1, false)
	done, _ = l.Day(june1)
	assert.False(t, done)
	done, _ = l.Task(june1, "run")
	assert.True(t, done)
}

func TestSetRoutesByGrammar(t *testing.T) {
	l := NewLedger()
	assert.Equal(t, KindDaily, l.Set("2024-06-01", true))
	assert.Equal(t, KindTask, l.Set("2024-06-01-run", true))
	assert.Equal(t, KindOther, l.Set("whatever", true))
	assert.Equal(t, 3, l.Len())

	// Last write wins.
	l.Set("2024-06-01", false)
	done, _ := l.Day(june1)
	assert.False(t, done)
	assert.Equal(t, 3, l.Len())
}

func TestEntriesOrdering(t *testing.T) {
	l := FromMapping(model.Mapping{
		"2024-06-02":       false,
		"2024-06-01-walk":  true,
		"2024-06-01":       true,
		"2024-06-01-apple": false,
		"junk":             true,
	})

	var got []string
	for _, e := range l.Entries() {
		got = append(got, e.Date.String()+"|"+e.Task)
	}
	assert.Equal(t, []string{
		"2024-06-01|",
		"2024-06-01|apple",
		"2024-06-01|walk",
		"2024-06-02|",
	}, got)

	saved := l.SavedTasks()
	require.Len(t, saved, 2)
	assert.Equal(t, "apple", saved[0].Task)

	on := l.TasksOn(june1)
	require.Len(t, on, 2)
	assert.Empty(t, l.TasksOn(june1.AddDays(1)))
}

func TestCheckDay(t *testing.T) {
	require.NoError(t, CheckDay(june1))
	err := CheckDay(model.Day{Year: 10000, Month: time.January, Day: 1})
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestResolveTaskReusesStoredSpelling(t *testing.T) {
	l := FromMapping(model.Mapping{
		"2024-06-01-cafe\u0301": false,
		"2024-06-02-run":          true,
	})

	assert.Equal(t, "cafe\u0301", l.ResolveTask(june1, "caf\u00e9"))
	assert.Equal(t, "run", l.ResolveTask(june1, "run"), "other days do not match")
	assert.Equal(t, "run", l.ResolveTask(june1.AddDays(1), "run"))
}
