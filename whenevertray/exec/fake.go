package exec

import (
	"bytes"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// FakeBehavior describes how processes of a FakeLauncher react.
type FakeBehavior struct {
	// Hung makes the process ignore "exit" on its input; only KillGroup stops
	// it.
	Hung bool
	// ExitDelay is how long a responsive process takes to exit after reading
	// "exit".
	ExitDelay time.Duration
	// DieOnStart makes the process exit right after being launched.
	DieOnStart bool
	// CloseStdin launches the process without a captured input stream.
	CloseStdin bool
	// KillFails makes KillGroup return an error without killing anything.
	KillFails bool
}

// FakeLauncher is an in-memory Launcher used for testing. A zero-value
// instance is not valid; use NewFakeLauncher.
type FakeLauncher struct {
	mutex    sync.Mutex
	behavior FakeBehavior
	nextPID  int
	procs    map[int]*FakeProcess

	// LaunchError, if not nil, is returned by every Launch.
	LaunchError error
	// SpawnError, if not nil, is returned by every Spawn.
	SpawnError error
	// VersionOutput is what Output returns.
	VersionOutput string

	launched [][]string
	spawned  [][]string
}

var _ Launcher = (*FakeLauncher)(nil)

// NewFakeLauncher creates a new fake launcher whose processes behave as
// described.
func NewFakeLauncher(behavior FakeBehavior) *FakeLauncher {
	return &FakeLauncher{
		behavior: behavior,
		procs:    make(map[int]*FakeProcess),
	}
}

// Launch implements Launcher.
func (l *FakeLauncher) Launch(argv []string, prio Priority) (Process, error) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	if len(argv) == 0 || argv[0] == "" {
		return nil, ErrEmptyCommand
	}

	l.launched = append(l.launched, append([]string(nil), argv...))

	if l.LaunchError != nil {
		return nil, l.LaunchError
	}

	l.nextPID++
	proc := newFakeProcess(l.nextPID, prio, l.behavior)
	l.procs[proc.pid] = proc

	if l.behavior.DieOnStart {
		proc.exit(1)
	}

	return proc, nil
}

// Exists implements Launcher.
func (l *FakeLauncher) Exists(pid int) bool {
	l.mutex.Lock()
	proc, ok := l.procs[pid]
	l.mutex.Unlock()

	return ok && proc.Alive()
}

// Spawn implements Launcher.
func (l *FakeLauncher) Spawn(argv []string) error {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	if l.SpawnError != nil {
		return l.SpawnError
	}

	l.spawned = append(l.spawned, append([]string(nil), argv...))
	return nil
}

// Output implements Launcher.
func (l *FakeLauncher) Output(argv []string) (string, error) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	if l.VersionOutput == "" {
		return "", errors.New("no output")
	}

	return l.VersionOutput, nil
}

// Process returns the fake process with the given PID, or nil.
func (l *FakeLauncher) Process(pid int) *FakeProcess {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	return l.procs[pid]
}

// Launched returns the argv of every Launch call.
func (l *FakeLauncher) Launched() [][]string {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	return l.launched
}

// Spawned returns the argv of every successful Spawn call.
func (l *FakeLauncher) Spawned() [][]string {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	return l.spawned
}

// FakeProcess is a process created by FakeLauncher. It records everything
// written to its input and reacts to the "exit" line.
type FakeProcess struct {
	pid      int
	priority Priority
	behavior FakeBehavior

	mutex  sync.Mutex
	stdin  bytes.Buffer
	line   bytes.Buffer
	kills  int
	status ExitStatus

	once sync.Once
	stop chan struct{}
}

var _ Process = (*FakeProcess)(nil)

func newFakeProcess(pid int, prio Priority, behavior FakeBehavior) *FakeProcess {
	return &FakeProcess{
		pid:      pid,
		priority: prio,
		behavior: behavior,
		stop:     make(chan struct{}),
	}
}

func (proc *FakeProcess) PID() int { return proc.pid }

// Priority returns the priority the process was launched with.
func (proc *FakeProcess) Priority() Priority { return proc.priority }

func (proc *FakeProcess) Stdin() io.Writer {
	if proc.behavior.CloseStdin {
		return nil
	}
	return fakeStdin{proc}
}

// Input returns everything written to the process' input so far.
func (proc *FakeProcess) Input() string {
	proc.mutex.Lock()
	defer proc.mutex.Unlock()

	return proc.stdin.String()
}

// Kills returns the number of KillGroup calls.
func (proc *FakeProcess) Kills() int {
	proc.mutex.Lock()
	defer proc.mutex.Unlock()

	return proc.kills
}

func (proc *FakeProcess) Alive() bool {
	select {
	case <-proc.stop:
		return false
	default:
		return true
	}
}

func (proc *FakeProcess) KillGroup() error {
	proc.mutex.Lock()
	proc.kills++
	proc.mutex.Unlock()

	if proc.behavior.KillFails {
		return errors.New("operation not permitted")
	}

	proc.exit(-1)
	return nil
}

func (proc *FakeProcess) Wait() ExitStatus {
	<-proc.stop

	proc.mutex.Lock()
	defer proc.mutex.Unlock()

	return proc.status
}

func (proc *FakeProcess) exit(code int) {
	proc.once.Do(func() {
		proc.mutex.Lock()
		proc.status = ExitStatus{PID: proc.pid, Code: code}
		proc.mutex.Unlock()

		close(proc.stop)
	})
}

type fakeStdin struct{ proc *FakeProcess }

func (w fakeStdin) Write(b []byte) (int, error) {
	proc := w.proc

	if !proc.Alive() {
		return 0, io.ErrClosedPipe
	}

	proc.mutex.Lock()
	proc.stdin.Write(b)
	proc.line.Write(b)

	var lines []string
	for {
		line, err := proc.line.ReadString('\n')
		if err != nil {
			// Put the incomplete line back.
			proc.line.Reset()
			proc.line.WriteString(line)
			break
		}
		lines = append(lines, strings.TrimSuffix(line, "\n"))
	}
	proc.mutex.Unlock()

	for _, line := range lines {
		if line == "exit" && !proc.behavior.Hung {
			proc.exitAfter(proc.behavior.ExitDelay)
		}
	}

	return len(b), nil
}

func (proc *FakeProcess) exitAfter(delay time.Duration) {
	if delay <= 0 {
		proc.exit(0)
		return
	}

	go func() {
		select {
		case <-time.After(delay):
			proc.exit(0)
		case <-proc.stop:
		}
	}()
}
