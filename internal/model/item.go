package model

// Mapping is the persisted form of all completion flags: one string key per
// entry, either "<date>" or "<date>-<task>".
type Mapping map[string]bool

// Clone returns an independent copy of m. A nil mapping clones to an empty one.
func (m Mapping) Clone() Mapping {
	out := make(Mapping, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// HabitEntry is the domain model for a single completion flag.
// An empty Task marks the per-day entry from the weekly switches.
type HabitEntry struct {
	Date Day    `json:"date"`
	Task string `json:"task,omitempty"`
	Done bool   `json:"done"`
}

// IsDaily reports whether e is a per-day entry rather than a named task.
func (e HabitEntry) IsDaily() bool { return e.Task == "" }
