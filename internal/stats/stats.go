// Package stats aggregates completion flags over the seven-day window.
package stats

import (
	"fmt"

	"github.com/idilsaglam/habits/internal/model"
)

// WindowDays is the length of the completion window.
const WindowDays = 7

// Summary is the weekly aggregate shown next to the week view.
type Summary struct {
	Total     int     `json:"total"`
	Completed int     `json:"completed"`
	Rate      float64 `json:"rate"`
}

// Pending is the number of counted entries not yet done.
func (s Summary) Pending() int { return s.Total - s.Completed }

func (s Summary) String() string {
	return fmt.Sprintf("%d/%d (%.1f%%)", s.Completed, s.Total, s.Rate)
}

// Window returns ref and the six days after it.
func Window(ref model.Day) []model.Day {
	out := make([]model.Day, WindowDays)
	for i := range out {
		out[i] = ref.AddDays(i)
	}
	return out
}

// Compute counts every key of m that starts with the rendered date of a
// window day, and how many of those are true. Keys are opaque strings, so
// "2024-06-01-run" belongs to 2024-06-01 through its prefix.
//
// Matching relies on dates rendering at a fixed width: no rendered window
// date is a prefix of another, so comparing the first model.DayWidth bytes
// of a key against the window set is the same as testing every prefix, and
// each key is counted at most once.
func Compute(m model.Mapping, ref model.Day) Summary {
	window := make(map[string]struct{}, WindowDays)
	for _, d := range Window(ref) {
		window[d.String()] = struct{}{}
	}

	var s Summary
	for k, v := range m {
		if len(k) < model.DayWidth {
			continue
		}
		if _, ok := window[k[:model.DayWidth]]; !ok {
			continue
		}
		s.Total++
		if v {
			s.Completed++
		}
	}
	if s.Total > 0 {
		s.Rate = float64(s.Completed) / float64(s.Total) * 100
	}
	return s
}
