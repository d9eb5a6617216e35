// Package exec provides an abstraction around package os/exec's process
// handling for easier testing. A Launcher starts piped child processes; the
// real implementation talks to the operating system, while NewFakeLauncher
// provides an in-memory one.
package exec

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"os/exec"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// OutputTimeout bounds the synchronous Output call.
var OutputTimeout = 10 * time.Second

// ErrEmptyCommand is returned if a launch is requested with no executable.
var ErrEmptyCommand = errors.New("empty command line")

// Launcher starts processes.
type Launcher interface {
	// Launch starts argv as a detached child in its own process group, with
	// its standard input captured. The priority is applied best-effort.
	Launch(argv []string, prio Priority) (Process, error)
	// Exists polls the operating system for the given PID.
	Exists(pid int) bool
	// Spawn starts argv without tracking it.
	Spawn(argv []string) error
	// Output runs argv synchronously and returns the first line of its
	// standard output.
	Output(argv []string) (string, error)
}

// Process describes a piped command process.
type Process interface {
	PID() int
	// Stdin returns the writable end of the child's standard input, or nil if
	// it was not captured.
	Stdin() io.Writer
	// Alive returns false once the termination of the process has been
	// observed.
	Alive() bool
	// KillGroup forcefully kills the process and all of its group.
	KillGroup() error
	// Wait blocks until the process exits.
	Wait() ExitStatus
}

// ExitStatus is a process' exit status.
type ExitStatus struct {
	PID   int
	Code  int // -1 if killed by a signal
	Error error
}

type launcher struct{}

// NewLauncher returns the Launcher backed by the operating system.
func NewLauncher() Launcher {
	return launcher{}
}

func (launcher) Launch(argv []string, prio Priority) (Process, error) {
	if len(argv) == 0 || argv[0] == "" {
		return nil, ErrEmptyCommand
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.SysProcAttr = launchAttr(prio)
	// Stdout and Stderr are left nil so they go to the null device.

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create stdin pipe")
	}

	if err := cmd.Start(); err != nil {
		stdin.Close()
		return nil, errors.Wrapf(err, "failed to start %q", argv[0])
	}

	// Not fatal: the process runs at the default priority.
	setPriority(cmd.Process.Pid, prio)

	proc := &process{
		cmd:   cmd,
		stdin: stdin,
		done:  make(chan struct{}),
	}
	go proc.reap()

	return proc, nil
}

func (launcher) Exists(pid int) bool {
	if pid <= 0 {
		return false
	}
	return pidExists(pid)
}

func (launcher) Spawn(argv []string) error {
	if len(argv) == 0 || argv[0] == "" {
		return ErrEmptyCommand
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	if err := cmd.Start(); err != nil {
		return errors.Wrapf(err, "failed to start %q", argv[0])
	}

	go cmd.Wait()
	return nil
}

func (launcher) Output(argv []string) (string, error) {
	if len(argv) == 0 || argv[0] == "" {
		return "", ErrEmptyCommand
	}

	ctx, cancel := context.WithTimeout(context.Background(), OutputTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.SysProcAttr = hiddenAttr()

	// A failing command may still have printed something useful, so the
	// output takes precedence over the error.
	out, err := cmd.Output()
	if line := firstLine(out); line != "" {
		return line, nil
	}
	if err != nil {
		return "", errors.Wrapf(err, "failed to run %q", argv[0])
	}

	return "", nil
}

func firstLine(b []byte) string {
	s := bufio.NewScanner(bytes.NewReader(b))
	if !s.Scan() {
		return ""
	}
	return strings.TrimRight(s.Text(), "\r")
}

type process struct {
	cmd   *exec.Cmd
	stdin io.WriteCloser

	done   chan struct{}
	status ExitStatus
}

var _ Process = (*process)(nil)

// reap waits for the process to exit and records its status. It runs exactly
// once per process, which also keeps zombies from showing up in Exists.
func (proc *process) reap() {
	err := proc.cmd.Wait()

	status := ExitStatus{
		PID:  proc.cmd.Process.Pid,
		Code: proc.cmd.ProcessState.ExitCode(),
	}

	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		status.Error = err
	}

	proc.status = status
	close(proc.done)
}

func (proc *process) PID() int {
	return proc.cmd.Process.Pid
}

func (proc *process) Stdin() io.Writer {
	if proc.stdin == nil {
		return nil
	}
	return proc.stdin
}

func (proc *process) Alive() bool {
	select {
	case <-proc.done:
		return false
	default:
		return true
	}
}

func (proc *process) KillGroup() error {
	return killGroup(proc.cmd.Process.Pid)
}

func (proc *process) Wait() ExitStatus {
	<-proc.done
	return proc.status
}
