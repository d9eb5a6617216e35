package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/mitchellh/go-linereader"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the scheduler without a tray icon",
		Long: `Run the scheduler without a tray icon. Commands are read from standard
input, one per line:

  pause     pause the scheduler
  resume    resume the scheduler
  reset     reset the conditions
  log       show the scheduler log
  version   print the scheduler version
  exit      stop the scheduler and exit

An interrupt or termination signal also stops the scheduler.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return exitOnError(runHeadless(cmd.InOrStdin(), cmd.OutOrStdout()))
		},
	}
}

// controller is the part of the supervisor driven by the run command.
type controller interface {
	Pause() bool
	Resume() bool
	ResetConditions() bool
	ShowLog() bool
	GetVersion() string
}

// dispatch executes a line of input. The returned reply is printed; quit is
// true if the host should stop the scheduler and exit.
func dispatch(c controller, line string) (reply string, quit bool) {
	var ok bool

	switch strings.TrimSpace(line) {
	case "":
		return "", false
	case "pause":
		ok = c.Pause()
	case "resume":
		ok = c.Resume()
	case "reset":
		ok = c.ResetConditions()
	case "log":
		ok = c.ShowLog()
	case "version":
		return c.GetVersion(), false
	case "exit":
		return "", true
	default:
		return fmt.Sprintf("unknown command %q", strings.TrimSpace(line)), false
	}

	if !ok {
		return "failed", false
	}
	return "ok", false
}

func runHeadless(in io.Reader, out io.Writer) error {
	ctx, cancel := signalContext()
	defer cancel()

	inst, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer inst.Close()

	sv := inst.Supervisor

	if !sv.Start(inst.Config.Priority) {
		return errors.New("could not start scheduler process: please check configuration file")
	}
	defer sv.Stop()

	inst.Log.Info().Str("version", sv.GetVersion()).Msg("scheduler started")

	lines := linereader.New(in).Ch

	for {
		select {
		case <-ctx.Done():
			return nil

		case line, ok := <-lines:
			if !ok {
				// Without input, only a signal stops the scheduler.
				lines = nil
				continue
			}

			reply, quit := dispatch(sv, line)
			if quit {
				return nil
			}
			if reply != "" {
				fmt.Fprintln(out, reply)
			}
		}
	}
}
