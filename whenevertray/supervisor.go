package whenevertray

import (
	"fmt"
	"sync"
	"time"

	"git.unix.lgbt/diamondburned/whenevertray/whenevertray/config"
	"git.unix.lgbt/diamondburned/whenevertray/whenevertray/exec"
)

// SettleInterval is the time given to a freshly launched scheduler before
// checking that it is still alive.
var SettleInterval = 500 * time.Millisecond

// GraceInterval is the time to wait for the scheduler to exit after the exit
// command until its process group is killed.
var GraceInterval = 1500 * time.Millisecond

// KillInterval is the time to wait for the scheduler to die after being
// killed. The supervisor considers it stopped afterwards regardless.
var KillInterval = 1500 * time.Millisecond

// UnknownVersion is what GetVersion returns if the scheduler did not report a
// version.
const UnknownVersion = "unknown version"

// Supervisor owns at most one scheduler process at a time. All of its methods
// are safe to call from multiple goroutines; operations are serialized, and
// Start and Stop block for up to their intervals.
//
// Failures are reported as false and written into the journal; none of them
// make the Supervisor unusable.
type Supervisor struct {
	settle time.Duration
	grace  time.Duration
	kill   time.Duration

	j        Journaler
	launcher exec.Launcher
	cmds     config.Commands
	version  string

	mutex sync.Mutex
	child *child // nil when stopped
}

type child struct {
	proc   exec.Process
	reaped chan struct{} // closed once the exit has been journaled
}

// NewSupervisor creates a new stopped supervisor that runs the given command
// lines using the launcher. The scheduler version is queried once here.
func NewSupervisor(cmds config.Commands, l exec.Launcher, j Journaler) *Supervisor {
	s := &Supervisor{
		settle: SettleInterval,
		grace:  GraceInterval,
		kill:   KillInterval,

		j:        j,
		launcher: l,
		cmds:     cmds,
	}

	s.version = s.queryVersion()
	return s
}

func (s *Supervisor) queryVersion() string {
	v, err := s.launcher.Output(s.cmds.Version)
	if err != nil {
		s.j.Write(&EventWarning{
			Component: "version",
			Error:     err.Error(),
		})
	}

	if v == "" {
		return UnknownVersion
	}
	return v
}

// GetVersion returns the first line printed by the scheduler's version query,
// or UnknownVersion.
func (s *Supervisor) GetVersion() string {
	return s.version
}

// Start launches the scheduler at the given priority and waits for the settle
// interval. It returns false if the scheduler is already running, could not
// be launched, or died before the interval passed.
func (s *Supervisor) Start(prio exec.Priority) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.running() {
		s.j.Write(&EventWarning{
			Component: "supervisor",
			Error:     fmt.Sprintf("scheduler already running as PID %d", s.child.proc.PID()),
		})
		return false
	}

	argv := s.cmds.Launch

	proc, err := s.launcher.Launch(argv, prio)
	if err != nil {
		s.j.Write(&EventProcessSpawnError{
			Command: argv.String(),
			Reason:  err.Error(),
		})
		return false
	}

	// Journal the spawn before the exit can be journaled.
	s.j.Write(&EventProcessSpawned{
		PID:      proc.PID(),
		Command:  argv.String(),
		Priority: prio.String(),
	})

	c := s.track(proc)
	c.wait(s.settle)

	if !s.alive(c) {
		s.j.Write(&EventProcessSpawnError{
			Command: argv.String(),
			Reason:  "exited within " + s.settle.String(),
		})
		return false
	}

	s.child = c
	return true
}

// track starts a routine waiting for the process to exit.
func (s *Supervisor) track(proc exec.Process) *child {
	c := &child{
		proc:   proc,
		reaped: make(chan struct{}),
	}

	go func() {
		status := proc.Wait()

		ev := &EventProcessExited{
			PID:      status.PID,
			ExitCode: status.Code,
		}
		if status.Error != nil {
			ev.Error = status.Error.Error()
		}

		s.j.Write(ev)
		close(c.reaped)
	}()

	return c
}

// wait waits until the process has exited or the duration passes. It returns
// true if the process exited.
func (c *child) wait(d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-c.reaped:
		return true
	case <-timer.C:
		return false
	}
}

// alive checks both the termination notification and the process table.
func (s *Supervisor) alive(c *child) bool {
	return c.proc.Alive() && s.launcher.Exists(c.proc.PID())
}

// running returns true if a scheduler is held and alive. A held scheduler that
// is found dead is dropped. It must be called with the mutex held.
func (s *Supervisor) running() bool {
	if s.child == nil {
		return false
	}

	if s.alive(s.child) {
		return true
	}

	s.child = nil
	return false
}

// Stop asks the scheduler to exit and waits for the grace interval. If it is
// still around after that, its process group is killed. The supervisor is
// stopped when Stop returns, but true is only returned if the scheduler exited
// on its own. Stopping a stopped supervisor returns false and does nothing.
func (s *Supervisor) Stop() bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.running() {
		return false
	}

	c := s.child
	pid := c.proc.PID()

	// Whatever happens below, no further action is defined for this process.
	defer func() { s.child = nil }()

	if s.write(c, CommandExit) {
		c.wait(s.grace)
	}

	if !s.launcher.Exists(pid) {
		// Let the exit be journaled first. This returns immediately, unless
		// the process vanished from the table before it was reaped.
		c.wait(s.kill)

		s.j.Write(&EventProcessStopped{PID: pid, Graceful: true})
		return true
	}

	s.j.Write(&EventStopEscalated{
		PID:   pid,
		Grace: s.grace.String(),
	})

	if err := c.proc.KillGroup(); err != nil {
		// Nothing else can be done.
		s.j.Write(&EventWarning{
			Component: "supervisor",
			Error:     fmt.Sprintf("failed to kill PID %d: %v", pid, err),
		})
	}

	c.wait(s.kill)

	s.j.Write(&EventProcessStopped{PID: pid, Graceful: false})
	return false
}

// Pause sends the pause command. It returns false if the scheduler is not
// running or the command could not be written.
func (s *Supervisor) Pause() bool {
	return s.control(CommandPause)
}

// Resume sends the resume command. See Pause.
func (s *Supervisor) Resume() bool {
	return s.control(CommandResume)
}

// ResetConditions sends the reset_conditions command. See Pause.
func (s *Supervisor) ResetConditions() bool {
	return s.control(CommandResetConditions)
}

func (s *Supervisor) control(cmd Command) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.running() {
		return false
	}

	return s.write(s.child, cmd)
}

// write writes the command line into the process' input. It never waits for
// the scheduler to act on it.
func (s *Supervisor) write(c *child, cmd Command) bool {
	w := c.proc.Stdin()
	if w == nil {
		s.j.Write(&EventWarning{
			Component: "supervisor",
			Error:     fmt.Sprintf("cannot send %s: input of PID %d not captured", cmd, c.proc.PID()),
		})
		return false
	}

	if _, err := w.Write(cmd.Line()); err != nil {
		s.j.Write(&EventWarning{
			Component: "supervisor",
			Error:     fmt.Sprintf("cannot send %s to PID %d: %v", cmd, c.proc.PID(), err),
		})
		return false
	}

	s.j.Write(&EventCommandSent{
		PID:     c.proc.PID(),
		Command: cmd,
	})
	return true
}

// ShowLog starts the log viewer on the scheduler log. The viewer is not
// tracked. It returns false if the scheduler is not running or the viewer
// could not be started.
func (s *Supervisor) ShowLog() bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.running() {
		return false
	}

	argv := s.cmds.LogView

	if err := s.launcher.Spawn(argv); err != nil {
		s.j.Write(&EventWarning{
			Component: "log viewer",
			Error:     err.Error(),
		})
		return false
	}

	s.j.Write(&EventLogViewerSpawned{Command: argv.String()})
	return true
}
