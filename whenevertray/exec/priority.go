package exec

// Priority is the scheduling priority tier a child is launched with.
type Priority uint8

const (
	PriorityMinimum Priority = iota
	PriorityLow
	PriorityNormal
)

var priorityNames = [...]string{
	PriorityMinimum: "minimum",
	PriorityLow:     "low",
	PriorityNormal:  "normal",
}

func (p Priority) String() string {
	if int(p) < len(priorityNames) {
		return priorityNames[p]
	}
	return "unknown"
}

// ParsePriority parses the name of a priority tier. False is returned if the
// name is unknown.
func ParsePriority(name string) (Priority, bool) {
	for i, known := range priorityNames {
		if name == known {
			return Priority(i), true
		}
	}
	return PriorityMinimum, false
}
