package whenevertray

// eventType describes an event type.
type eventType = string

const (
	eventWarning           eventType = "warning"
	eventAcquired          eventType = "acquired lock"
	eventProcessSpawnError eventType = "process spawn error"
	eventProcessSpawned    eventType = "process spawned"
	eventProcessExited     eventType = "process exited"
	eventProcessStopped    eventType = "process stopped"
	eventStopEscalated     eventType = "stop escalated"
	eventCommandSent       eventType = "command sent"
	eventLogViewerSpawned  eventType = "log viewer spawned"
	eventConfigModified    eventType = "config modified"
)

// Event is an interface describing known events.
type Event interface {
	Type() string
	event()
}

// NewEvent creates a new event from the given event type. It is used primarily
// for decoding events from its type. Nil is returned if the event type is
// unknown.
func NewEvent(eventType string) Event {
	switch eventType {
	case eventWarning:
		return &EventWarning{}
	case eventAcquired:
		return &EventAcquired{}
	case eventProcessSpawnError:
		return &EventProcessSpawnError{}
	case eventProcessSpawned:
		return &EventProcessSpawned{}
	case eventProcessExited:
		return &EventProcessExited{}
	case eventProcessStopped:
		return &EventProcessStopped{}
	case eventStopEscalated:
		return &EventStopEscalated{}
	case eventCommandSent:
		return &EventCommandSent{}
	case eventLogViewerSpawned:
		return &EventLogViewerSpawned{}
	case eventConfigModified:
		return &EventConfigModified{}
	default:
		return nil
	}
}

// IsWarning returns true if the event reports something going wrong.
func IsWarning(ev Event) bool {
	switch ev.(type) {
	case *EventWarning, *EventProcessSpawnError, *EventStopEscalated, *EventConfigModified:
		return true
	default:
		return false
	}
}

// EventWarning is emitted when a non-fatal error occurs.
type EventWarning struct {
	Component string `json:"component"`
	Error     string `json:"error"`
}

func (ev *EventWarning) Type() string { return eventWarning }
func (ev *EventWarning) event()       {}

// EventAcquired is emitted when the flock (i.e. write lock on the journal) is
// acquired, which is on startup.
type EventAcquired struct {
	Version string `json:"version"`
}

func (ev *EventAcquired) Type() string { return eventAcquired }
func (ev *EventAcquired) event()       {}

// EventProcessSpawnError is emitted when the scheduler fails to start, either
// because it could not be launched or because it died before the settle
// interval passed.
type EventProcessSpawnError struct {
	Command string `json:"command"`
	Reason  string `json:"reason"`
}

func (ev *EventProcessSpawnError) Type() string { return eventProcessSpawnError }
func (ev *EventProcessSpawnError) event()       {}

// EventProcessSpawned is emitted when the scheduler has been launched.
type EventProcessSpawned struct {
	PID      int    `json:"pid"`
	Command  string `json:"command"`
	Priority string `json:"priority"`
}

func (ev *EventProcessSpawned) Type() string { return eventProcessSpawned }
func (ev *EventProcessSpawned) event()       {}

// EventProcessExited is emitted when the operating system reports that the
// scheduler exited, for any reason.
type EventProcessExited struct {
	PID      int    `json:"pid"`
	Error    string `json:"error,omitempty"`
	ExitCode int    `json:"exit_code"` // -1 if killed
}

func (ev *EventProcessExited) Type() string { return eventProcessExited }
func (ev *EventProcessExited) event()       {}

// EventProcessStopped is emitted when Stop is done with the scheduler.
// Graceful is false if the process had to be killed.
type EventProcessStopped struct {
	PID      int  `json:"pid"`
	Graceful bool `json:"graceful"`
}

func (ev *EventProcessStopped) Type() string { return eventProcessStopped }
func (ev *EventProcessStopped) event()       {}

// EventStopEscalated is emitted when the scheduler did not exit within the
// grace interval and its process group is about to be killed.
type EventStopEscalated struct {
	PID   int    `json:"pid"`
	Grace string `json:"grace"`
}

func (ev *EventStopEscalated) Type() string { return eventStopEscalated }
func (ev *EventStopEscalated) event()       {}

// EventCommandSent is emitted when a control command has been written to the
// scheduler.
type EventCommandSent struct {
	PID     int     `json:"pid"`
	Command Command `json:"command"`
}

func (ev *EventCommandSent) Type() string { return eventCommandSent }
func (ev *EventCommandSent) event()       {}

// EventLogViewerSpawned is emitted when the log viewer has been started.
type EventLogViewerSpawned struct {
	Command string `json:"command"`
}

func (ev *EventLogViewerSpawned) Type() string { return eventLogViewerSpawned }
func (ev *EventLogViewerSpawned) event()       {}

// EventConfigModified is emitted when the configuration file changes while
// the tray is running. The changes only apply after a restart.
type EventConfigModified struct {
	Op   ConfigModifyOp `json:"op"`
	File string         `json:"file"`
}

// ConfigModifyOp contains possible operations on the configuration file.
type ConfigModifyOp string

const (
	ConfigCreate ConfigModifyOp = "create"
	ConfigUpdate ConfigModifyOp = "update"
	ConfigRemove ConfigModifyOp = "remove"
)

func (ev *EventConfigModified) Type() string { return eventConfigModified }
func (ev *EventConfigModified) event()       {}
