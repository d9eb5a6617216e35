// Package whenevertray is the core of the whenever tray launcher. It
// supervises a single whenever scheduler process on behalf of a desktop shell:
// it starts the scheduler, sends it control commands, and stops it either
// gracefully or forcefully.
//
// Control Protocol
//
// The scheduler reads commands from its standard input, one per line, and
// never answers. The supervisor writes one of the following lines:
//
//    exit
//    pause
//    resume
//    reset_conditions
//
// The scheduler polls its input about once a second, so a graceful stop is
// given a grace interval before the process group is killed.
//
// Journal
//
// Every state change of the supervised process is written as an Event into a
// Journaler. The journal is a log for humans and tools; nothing is read back
// from it to restore state.
package whenevertray
