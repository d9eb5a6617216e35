package config

import "strings"

// CommandLine is an argument vector; the first element is the executable.
type CommandLine []string

// With returns a copy of the command line with args appended.
func (c CommandLine) With(args ...string) CommandLine {
	cpy := make(CommandLine, 0, len(c)+len(args))
	cpy = append(cpy, c...)
	return append(cpy, args...)
}

// String renders the command line for display. Arguments that are empty or
// contain whitespace or quotes are double-quoted.
func (c CommandLine) String() string {
	var b strings.Builder
	for i, arg := range c {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(quote(arg))
	}
	return b.String()
}

func quote(arg string) string {
	if arg != "" && !strings.ContainsAny(arg, " \t\n\"'") {
		return arg
	}
	return `"` + strings.ReplaceAll(arg, `"`, `\"`) + `"`
}

// Commands is the set of command lines the supervisor runs. It is computed
// once and never changes afterwards.
type Commands struct {
	// Launch starts the scheduler:
	//    <executable> -L <log_level> -l <log_path> <scheduler_config_path>
	Launch CommandLine
	// LogView opens the scheduler log:
	//    <log_viewer> <log_path>
	LogView CommandLine
	// Version queries the scheduler version:
	//    <executable> --version
	Version CommandLine
}
