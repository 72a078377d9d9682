package main

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"syscall"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"epubr/config"
	"epubr/misc"
	"epubr/state"
)

// prepareEnv loads configuration and builds debug report and logger. Report
// goes first so logger could put its files into it.
func prepareEnv(env *state.LocalEnv, configFile string, report bool) (err error) {
	if env.Cfg, err = config.LoadConfiguration(configFile); err != nil {
		return fmt.Errorf("unable to prepare configuration: %w", err)
	}
	if report {
		if env.Rpt, err = env.Cfg.Reporting.Prepare(); err != nil {
			return fmt.Errorf("unable to prepare debug reporter: %w", err)
		}
		if len(configFile) > 0 {
			if data, err := config.Dump(env.Cfg); err == nil {
				env.Rpt.StoreData("config/"+filepath.Base(configFile), data)
			}
		}
	}
	if env.Log, err = env.Cfg.Logging.Prepare(env.Rpt); err != nil {
		return fmt.Errorf("unable to prepare logs: %w", err)
	}
	return nil
}

// initializeAppContext runs after command line is parsed and before any
// command.
func initializeAppContext(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.NArg() == 0 {
		// help only
		return ctx, nil
	}

	env := state.EnvFromContext(ctx)
	configFile := cmd.String("config")
	if err := prepareEnv(env, configFile, cmd.Bool("debug")); err != nil {
		return ctx, err
	}
	env.CaptureStdLog()

	env.Log.Debug("Program started",
		zap.Strings("args", os.Args),
		zap.String("ver", misc.GetVersion()),
		zap.String("runtime", runtime.Version()),
		zap.String("hash", misc.GetGitHash()))
	if env.Rpt != nil {
		env.Log.Info("Creating debug report", zap.String("location", env.Rpt.Name()))
	}
	if len(configFile) == 0 {
		env.Log.Info("Using defaults (no configuration file)")
	}
	return ctx, nil
}

// removeEmptyCrashLog drops crash output prepared next to file log when
// program ended normally.
func removeEmptyCrashLog(logDestination string) error {
	debug.SetCrashOutput(nil, debug.CrashOptions{})

	name := filepath.Join(filepath.Dir(logDestination), misc.GetAppName()+"-panic.log")
	fi, err := os.Stat(name)
	if err != nil || fi.Size() > 0 {
		return nil
	}
	if err := os.Remove(name); err != nil {
		return fmt.Errorf("unable to remove empty panic log file '%s': %w", name, err)
	}
	return nil
}

func destroyAppContext(ctx context.Context, cmd *cli.Command) (err error) {
	env := state.EnvFromContext(ctx)
	if env.Log != nil {
		env.Log.Debug("Program ended", zap.Duration("elapsed", env.Uptime()), zap.Strings("parsed args", cmd.Args().Slice()))
	}

	// log is flushed after this, report may include it and errors go
	// directly to stderr
	env.ReleaseStdLog()

	if er := env.Rpt.Close(); er != nil {
		err = multierr.Append(err, fmt.Errorf("unable to close debug report: %w", er))
	}
	if env.Cfg != nil && len(env.Cfg.Logging.File.Destination) > 0 {
		err = multierr.Append(err, removeEmptyCrashLog(env.Cfg.Logging.File.Destination))
	}
	return err
}

// Errors from commands are logged once here and printed on exit only when
// there was no log to put them into.
var errWasHandled bool

func exitErrHandler(ctx context.Context, _ *cli.Command, err error) {
	if env := state.EnvFromContext(ctx); env.Log != nil {
		env.Log.Error("Program ended with error", zap.Error(err))
		errWasHandled = true
	}
}

func usageErrorHandler(_ context.Context, _ *cli.Command, err error, _ bool) error {
	return err
}

func commandNotFound(ctx context.Context, _ *cli.Command, name string) {
	state.EnvFromContext(ctx).Log.Warn("Unknown command, nothing to do", zap.String("command", name))
}

const bookHelp = `
BOOK:
    book location, one of:
        unpacked book folder: "[path_to_directory]directory" or "https://host/path/book/"
        packaged book: "[path_to_file]book.epub" or "https://host/path/book.epub"

	Relative paths are resolved against current working directory. Packaged
	books are extracted under storage directory and read from there.
`

const readHelp = `
COMMANDS:
    n, p    next or previous page
    N, P    next or previous chapter
    g LINK  follow link
    t       table of contents
    q       quit, reading position is saved
`

const dumpHelp = `
DESTINATION:
    file name to write configuration to, if absent - STDOUT

Produces file with actual "active" configuration values which is composition of
default values and values specified in configuration file. To see default
configuration embedded into the program use --default flag.
`

func newApp() *cli.Command {
	reload := func() cli.Flag {
		return &cli.BoolFlag{Name: "reload", Aliases: []string{"r"}, Usage: "ignore saved settings and book structure, unpack packaged book again"}
	}

	return &cli.Command{
		Name:            misc.GetAppName(),
		Usage:           "reader for EPUB books, local or served over http",
		Version:         misc.GetVersion() + " (" + runtime.Version() + ") : " + misc.GetGitHash(),
		HideHelpCommand: true,
		Before:          initializeAppContext,
		After:           destroyAppContext,
		OnUsageError:    usageErrorHandler,
		ExitErrHandler:  exitErrHandler,
		CommandNotFound: commandNotFound,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, DefaultText: "", Usage: "load configuration from `FILE` (YAML)"},
			&cli.BoolFlag{Name: "debug", Aliases: []string{"d"}, Usage: "changes program behavior to help troubleshooting, produces report archive"},
		},
		Commands: []*cli.Command{
			{
				Name:               "info",
				Usage:              "Loads book and prints its structure",
				OnUsageError:       usageErrorHandler,
				Action:             runInfo,
				Flags:              []cli.Flag{reload()},
				ArgsUsage:          "BOOK",
				CustomHelpTemplate: cli.CommandHelpTemplate + bookHelp,
			},
			{
				Name:         "read",
				Usage:        "Reads book page by page on terminal",
				OnUsageError: usageErrorHandler,
				Action:       runRead,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "at", Usage: "start at `LOCATION` (fragment identifier or link relative to package document)"},
					reload(),
				},
				ArgsUsage:          "BOOK",
				CustomHelpTemplate: cli.CommandHelpTemplate + bookHelp + readHelp,
			},
			{
				Name:               "store",
				Usage:              "Stores every book resource for offline reading",
				OnUsageError:       usageErrorHandler,
				Action:             runStore,
				ArgsUsage:          "BOOK",
				CustomHelpTemplate: cli.CommandHelpTemplate + bookHelp,
			},
			{
				Name:  "dumpconfig",
				Usage: "Dumps either default or actual configuration (YAML)",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "default", Usage: "output default embedded configuration"},
				},
				OnUsageError:       usageErrorHandler,
				Action:             runDumpConfig,
				ArgsUsage:          "DESTINATION",
				CustomHelpTemplate: cli.CommandHelpTemplate + dumpHelp,
			},
		},
	}
}

func main() {
	ctx, stop := signal.NotifyContext(state.ContextWithEnv(context.Background()), os.Interrupt, syscall.SIGTERM)

	err := newApp().Run(ctx, os.Args)
	stop()
	if err != nil {
		if !errWasHandled {
			fmt.Fprintf(os.Stderr, "Program ended with error: %v\n", err)
		}
		os.Exit(1)
	}
}

func runDumpConfig(ctx context.Context, cmd *cli.Command) (err error) {
	env := state.EnvFromContext(ctx)
	if cmd.Args().Len() > 1 {
		env.Log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[1:]))
	}

	var data []byte
	what := "actual"
	if cmd.Bool("default") {
		what = "default"
		data, err = config.Prepare()
	} else {
		data, err = config.Dump(env.Cfg)
	}
	if err != nil {
		return fmt.Errorf("unable to get configuration: %w", err)
	}

	fname := cmd.Args().Get(0)
	env.Log.Info("Writing configuration", zap.String("state", what), zap.String("file", cmp.Or(fname, "STDOUT")))
	return writeOutput(fname, os.Stdout, data)
}

// writeOutput writes data to named file or to stdout when name is empty.
func writeOutput(name string, stdout io.Writer, data []byte) (err error) {
	out := stdout
	if len(name) > 0 {
		f, cerr := os.Create(name)
		if cerr != nil {
			return fmt.Errorf("unable to create destination file '%s': %w", name, cerr)
		}
		defer func() { err = multierr.Append(err, f.Close()) }()
		out = f
	}
	if _, err := out.Write(data); err != nil {
		return fmt.Errorf("unable to write configuration: %w", err)
	}
	return nil
}
