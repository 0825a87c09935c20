package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/alecthomas/kong"

	"github.com/idilsaglam/habits/internal/app"
	"github.com/idilsaglam/habits/internal/config"
	"github.com/idilsaglam/habits/internal/logfields"
	"github.com/idilsaglam/habits/internal/store/jsonstore"
	"github.com/idilsaglam/habits/internal/ui"
)

// CLI definition & global flags. Command flags override config values.
type CLI struct {
	Config  string `short:"c" help:"Configuration file path (default: <user config dir>/habits/config.yaml)" type:"path"`
	DataDir string `help:"Directory holding the habits file" type:"path"`
	Theme   string `help:"Color theme: classic, neon or mono"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`

	TUI        TUICmd    `cmd:"" name:"tui" default:"1" help:"Open the interactive week view (default)"`
	Week       WeekCmd   `cmd:"" help:"Print the next seven days and the weekly summary"`
	Stats      StatsCmd  `cmd:"" help:"Print the weekly summary"`
	Done       DoneCmd   `cmd:"" help:"Mark a day, or a task on a day, as done"`
	Undo       UndoCmd   `cmd:"" help:"Mark a day, or a task on a day, as not done"`
	Add        AddCmd    `cmd:"" help:"Record a habit for a day (not done yet)"`
	List       ListCmd   `cmd:"" help:"List saved tasks"`
	Path       PathCmd   `cmd:"" help:"Print the habits file path"`
	ShowConfig ConfigCmd `cmd:"" name:"config" help:"Print the effective configuration"`

	cfg     *config.Config
	command string
	out     io.Writer
	errOut  io.Writer
	now     func() time.Time
}

// usageError exits with code 2.
type usageError struct{ msg string }

func (e usageError) Error() string { return e.msg }

func usagef(format string, args ...any) error { return usageError{fmt.Sprintf(format, args...)} }

// exitCode carries kong's requested exit status through a panic so that
// --help does not terminate the process from inside Run.
type exitCode int

// Run parses args and dispatches, returning an exit code (0 ok, 1 error, 2 usage).
func Run(args []string, stdout, stderr io.Writer) int {
	return run(args, stdout, stderr, time.Now)
}

func run(args []string, stdout, stderr io.Writer, now func() time.Time) (code int) {
	c := &CLI{out: stdout, errOut: stderr, now: now}

	parser, err := kong.New(c,
		kong.Name("habits"),
		kong.Description("Track one habit per day for the coming week."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(status int) { panic(exitCode(status)) }),
	)
	if err != nil {
		ui.Fail(stderr, err.Error())
		return 1
	}

	defer func() {
		if r := recover(); r != nil {
			ec, ok := r.(exitCode)
			if !ok {
				panic(r)
			}
			code = int(ec)
		}
	}()

	ctx, err := parser.Parse(args)
	if err != nil {
		ui.Fail(stderr, err.Error())
		fmt.Fprintln(stderr, ui.Current().Muted.Render("Hint: run `habits --help` for usage"))
		return 2
	}

	c.command = ctx.Command()
	if err := c.setup(); err != nil {
		ui.Fail(stderr, err.Error())
		return 1
	}

	if err := ctx.Run(c); err != nil {
		ui.Fail(stderr, err.Error())
		var ue usageError
		if errors.As(err, &ue) {
			return 2
		}
		return 1
	}
	return 0
}

// setup loads configuration, applies flag overrides and sets the theme.
func (c *CLI) setup() error {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return err
	}
	if c.DataDir != "" {
		cfg.DataDir = c.DataDir
	}
	if c.Theme != "" {
		cfg.Theme = c.Theme
	}
	if c.Verbose {
		cfg.LogLevel = "debug"
	}
	if err := cfg.Finalize(); err != nil {
		return err
	}
	c.cfg = cfg
	ui.SetTheme(cfg.Theme)
	return nil
}

// newLogger builds the process logger as configured, writing to w.
func (c *CLI) newLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.cfg.SlogLevel()}
	if c.cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// openState loads the habits file. A malformed file is fatal here, as at
// startup of the interactive view.
func (c *CLI) openState(logger *slog.Logger) (*app.State, error) {
	store := jsonstore.New(c.cfg.DataPath())
	st, err := app.New(store, app.WithLogger(logger), app.WithClock(c.now))
	if err != nil {
		logger.Debug("Failed to load habits", logfields.Path(store.Path()), logfields.Error(err))
		return nil, fmt.Errorf("load: %w", err)
	}
	return st, nil
}

// cliState opens the state with logging on stderr, for one-shot commands.
func (c *CLI) cliState() (*app.State, error) {
	logger := c.newLogger(c.errOut)
	slog.SetDefault(logger)
	logger.Debug("Running command", logfields.Command(c.command))
	return c.openState(logger)
}
