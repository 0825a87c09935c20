package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/idilsaglam/habits/internal/app"
	"github.com/idilsaglam/habits/internal/habit"
	"github.com/idilsaglam/habits/internal/logfields"
	"github.com/idilsaglam/habits/internal/model"
	"github.com/idilsaglam/habits/internal/stats"
	"github.com/idilsaglam/habits/internal/tui"
	"github.com/idilsaglam/habits/internal/ui"
	"github.com/idilsaglam/habits/internal/watch"
)

// ---------------------------------------------------
// Interactive view
// ---------------------------------------------------

type TUICmd struct {
	NoWatch bool `help:"Do not reload when the habits file changes on disk"`
}

// Run logs to a file next to the data, since the alternate screen owns the
// terminal.
func (cmd *TUICmd) Run(c *CLI) error {
	if err := os.MkdirAll(c.cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("create data directory %s: %w", c.cfg.DataDir, err)
	}
	logFile, err := os.OpenFile(c.cfg.LogPath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()

	logger := c.newLogger(logFile)
	st, err := c.openState(logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var changes <-chan struct{}
	if c.cfg.WatchEnabled() && !cmd.NoWatch {
		w, err := watch.New(c.cfg.DataPath(), watch.DefaultDebounce, logger)
		if err != nil {
			// Not fatal: the view still works, it just won't follow edits.
			logger.Warn("File watching disabled", logfields.Path(c.cfg.DataPath()), logfields.Error(err))
		} else {
			defer w.Close()
			wctx, cancel := context.WithCancel(ctx)
			defer cancel()
			go w.Run(wctx)
			changes = w.Changes()
		}
	}

	logger.Info("Starting interactive view", logfields.Command(c.command), logfields.Path(c.cfg.DataPath()))
	return tui.Run(ctx, st, changes)
}

// ---------------------------------------------------
// One-shot commands
// ---------------------------------------------------

type WeekCmd struct{}

func (cmd *WeekCmd) Run(c *CLI) error {
	st, err := c.cliState()
	if err != nil {
		return err
	}
	t := ui.Current()

	var lines []string
	for _, row := range st.Week() {
		lines = append(lines, ui.Box(row.Done)+" "+ui.DayLabel(row.Day))
		for _, e := range row.Tasks {
			lines = append(lines, "    "+ui.Box(e.Done)+" "+e.Task)
		}
	}
	sum := st.Stats()
	lines = append(lines, "", ui.ProgressBar(sum.Completed, sum.Total, 20), t.Muted.Render(sum.String()))

	fmt.Fprintln(c.out, t.Title.Render("Week of "+ui.DayLabel(st.Today())))
	fmt.Fprintln(c.out, ui.Panel(lines))
	return nil
}

type StatsCmd struct {
	Date string `arg:"" optional:"" help:"First day of the window (default: today)"`
}

func (cmd *StatsCmd) Run(c *CLI) error {
	st, err := c.cliState()
	if err != nil {
		return err
	}
	ref := st.Today()
	if cmd.Date != "" {
		if ref, err = parseDay(cmd.Date, ref); err != nil {
			return err
		}
	}
	printSummary(c, ref, st.StatsFor(ref))
	return nil
}

type DoneCmd struct {
	Date string   `arg:"" help:"Day: today, tomorrow, yesterday, +N, -N (after --) or YYYY-MM-DD"`
	Task []string `arg:"" optional:"" help:"Task on that day (the day itself when omitted)"`
}

func (cmd *DoneCmd) Run(c *CLI) error { return setDone(c, cmd.Date, cmd.Task, true) }

type UndoCmd struct {
	Date string   `arg:"" help:"Day: today, tomorrow, yesterday, +N, -N (after --) or YYYY-MM-DD"`
	Task []string `arg:"" optional:"" help:"Task on that day (the day itself when omitted)"`
}

func (cmd *UndoCmd) Run(c *CLI) error { return setDone(c, cmd.Date, cmd.Task, false) }

func setDone(c *CLI, date string, words []string, done bool) error {
	st, err := c.cliState()
	if err != nil {
		return err
	}
	d, err := parseDay(date, st.Today())
	if err != nil {
		return err
	}

	what := ui.DayLabel(d)
	var sum stats.Summary
	if task := strings.Join(words, " "); strings.TrimSpace(task) == "" {
		sum, err = st.ToggleDay(d, done)
	} else {
		sum, err = st.ToggleTask(d, task, done)
		what = strings.TrimSpace(task) + " on " + what
	}
	if err != nil {
		return err
	}

	if done {
		ui.OK(c.out, "done: "+what)
	} else {
		ui.OK(c.out, "not done: "+what)
	}
	fmt.Fprintln(c.out, ui.Current().Muted.Render("week "+sum.String()))
	return nil
}

type AddCmd struct {
	Date string   `arg:"" help:"Day: today, tomorrow, yesterday, +N, -N (after --) or YYYY-MM-DD"`
	Task []string `arg:"" help:"Task name (may be several words)"`
}

func (cmd *AddCmd) Run(c *CLI) error {
	st, err := c.cliState()
	if err != nil {
		return err
	}
	d, err := parseDay(cmd.Date, st.Today())
	if err != nil {
		return err
	}
	task := strings.Join(cmd.Task, " ")
	sum, err := st.AddTask(d, task)
	if errors.Is(err, app.ErrTaskExists) {
		return usagef("%v", err)
	}
	if err != nil {
		return err
	}
	ui.OK(c.out, "added: "+strings.TrimSpace(task)+" on "+ui.DayLabel(d))
	fmt.Fprintln(c.out, ui.Current().Muted.Render("week "+sum.String()))
	return nil
}

type ListCmd struct {
	All bool `short:"a" help:"Include per-day entries"`
}

func (cmd *ListCmd) Run(c *CLI) error {
	st, err := c.cliState()
	if err != nil {
		return err
	}
	entries := st.SavedTasks()
	if cmd.All {
		entries = st.Entries()
	}
	if len(entries) == 0 {
		fmt.Fprintln(c.out, ui.Current().Muted.Render("no habits recorded yet"))
		return nil
	}
	for _, e := range entries {
		label := e.Date.String()
		if !e.IsDaily() {
			label += "  " + e.Task
		}
		fmt.Fprintln(c.out, ui.Box(e.Done)+" "+label)
	}
	return nil
}

type PathCmd struct{}

func (cmd *PathCmd) Run(c *CLI) error {
	fmt.Fprintln(c.out, c.cfg.DataPath())
	return nil
}

type ConfigCmd struct{}

func (cmd *ConfigCmd) Run(c *CLI) error {
	b, err := c.cfg.YAML()
	if err != nil {
		return err
	}
	_, err = c.out.Write(b)
	return err
}

// ---------------------------------------------------
// Helpers
// ---------------------------------------------------

func printSummary(c *CLI, ref model.Day, sum stats.Summary) {
	t := ui.Current()
	lines := []string{
		t.Title.Render("Week of " + ui.DayLabel(ref)),
		t.Muted.Render(ref.Short() + " - " + ref.AddDays(stats.WindowDays-1).Short()),
		"",
		fmt.Sprintf("Total:     %d", sum.Total),
		fmt.Sprintf("Completed: %d", sum.Completed),
		fmt.Sprintf("Pending:   %d", sum.Pending()),
		fmt.Sprintf("Rate:      %.1f%%", sum.Rate),
		"",
		ui.ProgressBar(sum.Completed, sum.Total, 20),
	}
	fmt.Fprintln(c.out, ui.Panel(lines))
}

// parseDay accepts today, tomorrow, yesterday, a signed day offset (+2, -1)
// or a canonical date. Days outside years 0000-9999 are rejected.
func parseDay(s string, today model.Day) (model.Day, error) {
	d, err := resolveDay(s, today)
	if err != nil {
		return model.Day{}, err
	}
	if err := habit.CheckDay(d); err != nil {
		return model.Day{}, usagef("%v", err)
	}
	return d, nil
}

func resolveDay(s string, today model.Day) (model.Day, error) {
	switch v := strings.ToLower(strings.TrimSpace(s)); {
	case v == "today":
		return today, nil
	case v == "tomorrow":
		return today.AddDays(1), nil
	case v == "yesterday":
		return today.AddDays(-1), nil
	case strings.HasPrefix(v, "+") || strings.HasPrefix(v, "-"):
		n, err := strconv.Atoi(v)
		if err != nil {
			return model.Day{}, usagef("not a day offset: %s", s)
		}
		return today.AddDays(n), nil
	default:
		d, err := model.ParseDay(v)
		if err != nil {
			return model.Day{}, usagef("not a date: %s (want YYYY-MM-DD)", s)
		}
		return d, nil
	}
}
