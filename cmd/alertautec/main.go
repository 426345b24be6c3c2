// Command alertautec reports and tracks campus safety incidents from the terminal.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/alertautec/alertautec/config"
	"github.com/alertautec/alertautec/internal/bootstrap"
)

type commandFn func(ctx *commandContext, args []string) error

type command struct {
	name        string
	description string
	run         commandFn
}

type commandContext struct {
	Ctx    context.Context
	Logger *slog.Logger
	Config config.AppConfig
	Out    io.Writer
	Err    io.Writer
	In     io.Reader

	// newApp builds the service graph; tests replace it.
	newApp func(ctx context.Context, cfg config.AppConfig, logger *slog.Logger) (*bootstrap.App, error)
}

// usageError marks argument problems so main exits with status 2.
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

func usagef(format string, args ...any) error {
	return usageError{err: fmt.Errorf(format, args...)}
}

func main() {
	cfg, cfgErr := bootstrap.LoadConfig()
	logger := bootstrap.InitLogger(cfg.Log, os.Stderr)

	if len(os.Args) < 2 {
		if err := printUsage(os.Stdout); err != nil {
			logger.Error("print usage failed", "error", err)
		}
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when no command is provided
	}

	cmdName := os.Args[1]
	if cmdName == "help" || cmdName == "-h" || cmdName == "--help" {
		if err := printUsage(os.Stdout); err != nil {
			logger.Error("print usage failed", "error", err)
		}
		return
	}

	cmd, ok := commands()[cmdName]
	if !ok {
		if err := writef(os.Stderr, "unknown command %q\n\n", cmdName); err != nil {
			logger.Error("print unknown command message failed", "error", err)
		}
		if err := printUsage(os.Stderr); err != nil {
			logger.Error("print usage failed", "error", err)
		}
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when command is unknown
	}

	if cfgErr != nil {
		logger.ErrorContext(context.Background(), "load config", "error", cfgErr)
		os.Exit(1) //nolint:forbidigo // CLI must signal configuration load failure to shell scripts
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	cmdCtx := &commandContext{
		Ctx:    ctx,
		Logger: logger,
		Config: cfg,
		Out:    os.Stdout,
		Err:    os.Stderr,
		In:     os.Stdin,
	}
	runErr := cmd.run(cmdCtx, os.Args[2:])
	stop()

	os.Exit(exitCode(cmdCtx, cmdName, runErr)) //nolint:forbidigo // CLI must propagate command execution status to callers
}

// exitCode reports err on stderr and maps it to the process status:
// 0 success or --help, 2 usage errors, 1 everything else.
func exitCode(cmdCtx *commandContext, cmdName string, err error) int {
	if err == nil || errors.Is(err, flag.ErrHelp) {
		return 0
	}
	cmdCtx.Logger.DebugContext(cmdCtx.Ctx, "command failed", "command", cmdName, "error", err)
	if writeErr := writef(cmdCtx.Err, "error: %v\n", err); writeErr != nil {
		cmdCtx.Logger.Error("print command error failed", "error", writeErr)
	}

	var usageErr usageError
	if errors.As(err, &usageErr) {
		return 2
	}
	return 1
}

func commands() map[string]command {
	return map[string]command{
		"login": {
			name:        "login",
			description: "Sign in and store the session",
			run:         runLogin,
		},
		"register": {
			name:        "register",
			description: "Create an account, then sign in",
			run:         runRegister,
		},
		"logout": {
			name:        "logout",
			description: "Clear the stored session",
			run:         runLogout,
		},
		"whoami": {
			name:        "whoami",
			description: "Show the signed-in user and token details",
			run:         runWhoami,
		},
		"incidents": {
			name:        "incidents",
			description: "List incidents (optionally filtered with a JMESPath --query)",
			run:         runIncidents,
		},
		"incident": {
			name:        "incident",
			description: "Show one incident by id",
			run:         runIncident,
		},
		"report": {
			name:        "report",
			description: "Report a new incident",
			run:         runReport,
		},
		"update-status": {
			name:        "update-status",
			description: "Change an incident's status (pendiente, en_atencion, resuelto)",
			run:         runUpdateStatus,
		},
		"admin-dashboard": {
			name:        "admin-dashboard",
			description: "Summarize incidents by status and urgency (autoridad only)",
			run:         runAdminDashboard,
		},
	}
}

func printUsage(w io.Writer) error {
	if err := writef(w, "Usage: alertautec <command> [flags]\n\n"); err != nil {
		return err
	}
	if err := writef(w, "Available commands:\n"); err != nil {
		return err
	}
	cmds := commands()
	names := make([]string, 0, len(cmds))
	for name := range cmds {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := writef(w, "  %-18s %s\n", name, cmds[name].description); err != nil {
			return err
		}
	}
	return writef(w, "\nRun 'alertautec <command> -h' for command flags.\n")
}

// app builds the services for commands that talk to the API or the session store.
func (c *commandContext) app() (*bootstrap.App, error) {
	build := c.newApp
	if build == nil {
		build = func(ctx context.Context, cfg config.AppConfig, logger *slog.Logger) (*bootstrap.App, error) {
			return bootstrap.NewApp(ctx, bootstrap.AppOptions{Config: cfg, Logger: logger})
		}
	}
	return build(c.Ctx, c.Config, c.Logger)
}

// withApp runs fn with a freshly built App and closes it afterwards.
func withApp(cmdCtx *commandContext, fn func(app *bootstrap.App) error) error {
	app, err := cmdCtx.app()
	if err != nil {
		return err
	}
	defer func() {
		if cerr := app.Close(); cerr != nil {
			cmdCtx.Logger.Warn("close session store failed", "error", cerr)
		}
	}()
	return fn(app)
}

func newFlagSet(cmdCtx *commandContext, name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(cmdCtx.Err)
	return fs
}

// parseFlags parses args and rejects stray positional arguments.
func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return usageError{err: err}
	}
	if fs.NArg() > 0 {
		return usagef("unexpected arguments: %v", fs.Args())
	}
	return nil
}
