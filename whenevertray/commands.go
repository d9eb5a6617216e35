package whenevertray

// Command is a control command understood by the scheduler.
type Command string

const (
	CommandExit            Command = "exit"
	CommandPause           Command = "pause"
	CommandResume          Command = "resume"
	CommandResetConditions Command = "reset_conditions"
)

// Line returns the command as written on the scheduler's input.
func (c Command) Line() []byte {
	return []byte(string(c) + "\n")
}
