// Package habit splits the persisted key->bool mapping into typed tables.
//
// Two key grammars share the persisted mapping:
//
//	"<date>"        per-day completion from the weekly switches
//	"<date>-<task>" completion of a named task on that date
//
// The weekly switch for a date and a task row on the same date are distinct
// entries; toggling one never changes the other.
package habit

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/idilsaglam/habits/internal/model"
)

var (
	ErrEmptyTask   = errors.New("task name required")
	ErrInvalidDate = errors.New("invalid date")
)

// KeyKind classifies a persisted key.
type KeyKind int

const (
	KindOther KeyKind = iota // matches neither grammar; kept verbatim
	KindDaily
	KindTask
)

func (k KeyKind) String() string {
	switch k {
	case KindDaily:
		return "daily"
	case KindTask:
		return "task"
	default:
		return "other"
	}
}

// TaskKey identifies a named task on a date.
type TaskKey struct {
	Day  model.Day
	Task string
}

// DayKey renders the persisted key of a per-day entry.
func DayKey(d model.Day) string { return d.String() }

// EncodeTaskKey renders the persisted key of a task entry.
func EncodeTaskKey(d model.Day, task string) string { return d.String() + "-" + task }

// ParseKey classifies key. For KindTask the task is every byte after the
// date and its separator, so task names may contain '-'.
func ParseKey(key string) (KeyKind, model.Day, string) {
	if len(key) < model.DayWidth {
		return KindOther, model.Day{}, ""
	}
	d, err := model.ParseDay(key[:model.DayWidth])
	if err != nil {
		return KindOther, model.Day{}, ""
	}
	rest := key[model.DayWidth:]
	switch {
	case rest == "":
		return KindDaily, d, ""
	case len(rest) > 1 && rest[0] == '-':
		return KindTask, d, rest[1:]
	default:
		return KindOther, model.Day{}, ""
	}
}

// CheckDay rejects days whose key would not be DayWidth bytes long. Such a
// key would not parse back as the same entry.
func CheckDay(d model.Day) error {
	if !d.Representable() {
		return fmt.Errorf("%s: %w (years 0000-9999)", d, ErrInvalidDate)
	}
	return nil
}

// NormalizeTask trims user input and folds it to NFC so that visually
// identical names produce the same key.
func NormalizeTask(s string) (string, error) {
	s = norm.NFC.String(strings.TrimSpace(s))
	if s == "" {
		return "", ErrEmptyTask
	}
	return s, nil
}
