package logfields

import "log/slog"

// Canonical log field names shared by the core, the TUI and the CLI.
const (
	KeyKey       = "key"
	KeyKind      = "kind"
	KeyValue     = "value"
	KeyDate      = "date"
	KeyTask      = "task"
	KeyPath      = "path"
	KeyEntries   = "entries"
	KeyTotal     = "total"
	KeyCompleted = "completed"
	KeyRate      = "rate"
	KeyCommand   = "command"
	KeyError     = "error"
)

func Key(k string) slog.Attr        { return slog.String(KeyKey, k) }
func Kind(k string) slog.Attr       { return slog.String(KeyKind, k) }
func Value(v bool) slog.Attr        { return slog.Bool(KeyValue, v) }
func Date(d string) slog.Attr       { return slog.String(KeyDate, d) }
func Task(t string) slog.Attr       { return slog.String(KeyTask, t) }
func Path(p string) slog.Attr       { return slog.String(KeyPath, p) }
func Entries(n int) slog.Attr       { return slog.Int(KeyEntries, n) }
func Command(name string) slog.Attr { return slog.String(KeyCommand, name) }

// Summary groups the weekly aggregate under one attribute.
func Summary(total, completed int, rate float64) slog.Attr {
	return slog.Group("stats",
		slog.Int(KeyTotal, total),
		slog.Int(KeyCompleted, completed),
		slog.Float64(KeyRate, rate),
	)
}

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
