package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"git.unix.lgbt/diamondburned/whenevertray/whenevertray"
	"git.unix.lgbt/diamondburned/whenevertray/whenevertray/config"
	"git.unix.lgbt/diamondburned/whenevertray/whenevertray/exec"
	"git.unix.lgbt/diamondburned/whenevertray/whenevertray/journal"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

const (
	appNameLong = "Minimalistic launcher for Whenever"
	// Version is the version of the tray.
	Version = "0.1.5"
)

var (
	configFile string
	dataDir    string
	verbose    bool
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "whenever-tray",
		Short: "Minimalistic launcher for the whenever scheduler",
		Long: `A minimalistic launcher to start and stop the whenever scheduler in a
desktop environment, and to provide basic access to the scheduler interface
through an icon in the tray notification area and its associated menu.

Without a subcommand, the tray icon is shown.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return exitOnError(runTray())
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "",
		"configuration file path (default <data-dir>/"+config.FileName+")")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "",
		"data directory path (default "+config.DataDir()+")")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"log debug messages")

	rootCmd.AddCommand(
		newRunCmd(),
		newJournalCmd(),
		newConfigCmd(),
		newVersionCmd(),
	)

	return rootCmd
}

// exitOnError prints the error, since errors are silenced to keep cobra from
// printing the usage on them.
func exitOnError(err error) error {
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
	}
	return err
}

func resolveDataDir() string {
	if dataDir != "" {
		return dataDir
	}
	return config.DataDir()
}

func resolveConfigFile(dir string) string {
	if configFile != "" {
		return configFile
	}
	return config.DefaultPath(dir)
}

// errAlreadyRunning is returned by bootstrap if another tray holds the
// journal.
var errAlreadyRunning = errors.New("whenever-tray is already running")

// instance is everything a host needs to run the supervisor.
type instance struct {
	Log        zerolog.Logger
	Config     *config.Resolved
	ConfigErr  error // warning, the defaults are used
	Supervisor *whenevertray.Supervisor
	Journaler  whenevertray.Journaler

	closers []io.Closer
}

// bootstrap acquires the journal, resolves the configuration and creates the
// supervisor. Extra journalers receive every event. The watcher stops once ctx
// is canceled.
func bootstrap(ctx context.Context, extra ...whenevertray.Journaler) (*instance, error) {
	dir := resolveDataDir()
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, errors.Wrap(err, "failed to create data directory")
	}

	logger, logFile := newLogger(dir, verbose)
	inst := &instance{
		Log:     logger,
		closers: []io.Closer{logFile},
	}

	j, err := journal.NewFileLockJournaler(filepath.Join(dir, journal.FileName))
	if err != nil {
		inst.Close()

		if errors.Is(err, journal.ErrLockedElsewhere) {
			return nil, errAlreadyRunning
		}

		return nil, errors.Wrap(err, "failed to acquire journal lock")
	}
	inst.closers = append(inst.closers, j)

	writers := append([]whenevertray.Journaler{j, journal.NewHumanWriter(logger)}, extra...)
	inst.Journaler = journal.MultiWriter(writers...)

	inst.Journaler.Write(&whenevertray.EventAcquired{Version: Version})

	path := resolveConfigFile(dir)

	inst.Config, inst.ConfigErr = config.Load(path, dir)
	if inst.ConfigErr != nil {
		inst.Journaler.Write(&whenevertray.EventWarning{
			Component: "config",
			Error:     inst.ConfigErr.Error() + "; using defaults",
		})
	}

	for _, key := range inst.Config.Undecoded {
		inst.Journaler.Write(&whenevertray.EventWarning{
			Component: "config",
			Error:     fmt.Sprintf("unknown key %q ignored", key),
		})
	}

	whenevertray.TryWatch(ctx, path, inst.Journaler)

	inst.Supervisor = whenevertray.NewSupervisor(
		inst.Config.Commands, exec.NewLauncher(), inst.Journaler)

	return inst, nil
}

// Close releases the journal and the log file.
func (inst *instance) Close() {
	for i := len(inst.closers) - 1; i >= 0; i-- {
		inst.closers[i].Close()
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func newJournalCmd() *cobra.Command {
	var n int

	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Print the newest journal records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := filepath.Join(resolveDataDir(), journal.FileName)

			entries, err := journal.TailFile(path, n)
			if err != nil {
				return exitOnError(errors.Wrap(err, "failed to read journal"))
			}

			out := cmd.OutOrStdout()
			for _, entry := range entries {
				fields, _ := json.Marshal(entry.Event)
				fmt.Fprintf(out, "%s  %-20s %s\n",
					entry.Time.Local().Format("2006-01-02 15:04:05"), entry.Event.Type(), fields)
			}

			return nil
		},
	}

	cmd.Flags().IntVarP(&n, "lines", "n", 20, "number of records to print, -1 for all")
	return cmd
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the resolved command lines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := resolveDataDir()

			r, err := config.Load(resolveConfigFile(dir), dir)
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), "warning:", err)
				fmt.Fprintln(cmd.ErrOrStderr(), "Default values will be used.")
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "file:    ", orNone(r.Path))
			fmt.Fprintln(out, "launch:  ", r.Commands.Launch)
			fmt.Fprintln(out, "logview: ", r.Commands.LogView)
			fmt.Fprintln(out, "version: ", r.Commands.Version)
			fmt.Fprintln(out, "priority:", r.Priority)

			for _, key := range r.Undecoded {
				fmt.Fprintln(cmd.ErrOrStderr(), "warning: unknown key", key)
			}

			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the tray and scheduler versions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := resolveDataDir()

			r, _ := config.Load(resolveConfigFile(dir), dir)
			s := whenevertray.NewSupervisor(r.Commands, exec.NewLauncher(), whenevertray.Discard)

			fmt.Fprintf(cmd.OutOrStdout(), "%s %s (running: %s)\n", appNameLong, Version, s.GetVersion())
			return nil
		},
	}
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
