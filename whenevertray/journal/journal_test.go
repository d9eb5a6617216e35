package journal

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"git.unix.lgbt/diamondburned/whenevertray/whenevertray"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

func TestFileLockJournaler(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", FileName)

	j, err := NewFileLockJournaler(path)
	if err != nil {
		t.Fatal("failed to create journaler:", err)
	}

	if _, err := NewFileLockJournaler(path); !errors.Is(err, ErrLockedElsewhere) {
		t.Fatal("second journaler did not fail with ErrLockedElsewhere:", err)
	}

	events := []whenevertray.Event{
		&whenevertray.EventAcquired{Version: "0.1.5"},
		&whenevertray.EventProcessSpawned{PID: 42, Command: "whenever", Priority: "minimum"},
		&whenevertray.EventCommandSent{PID: 42, Command: whenevertray.CommandPause},
		&whenevertray.EventProcessStopped{PID: 42, Graceful: true},
	}

	for _, ev := range events {
		if err := j.Write(ev); err != nil {
			t.Fatal("failed to write:", err)
		}
	}

	session := j.Session()

	if err := j.Close(); err != nil {
		t.Fatal("failed to close:", err)
	}

	entries, err := TailFile(path, -1)
	if err != nil {
		t.Fatal("failed to read journal:", err)
	}

	if len(entries) != len(events) {
		t.Fatalf("read %d entries, expected %d", len(entries), len(events))
	}

	for i, entry := range entries {
		if entry.Session != session {
			t.Errorf("entry %d has session %q, expected %q", i, entry.Session, session)
		}
		if entry.Time.IsZero() {
			t.Errorf("entry %d has no time", i)
		}
		if !reflect.DeepEqual(entry.Event, events[i]) {
			t.Errorf("entry %d mismatch, got %#v, expected %#v", i, entry.Event, events[i])
		}
	}

	// The lock is free again, and a new session appends.
	j, err = NewFileLockJournaler(path)
	if err != nil {
		t.Fatal("failed to reacquire journaler:", err)
	}
	defer j.Close()

	if j.Session() == session {
		t.Error("session ID reused")
	}

	j.Write(&whenevertray.EventAcquired{Version: "0.1.6"})

	entries, err = TailFile(path, 2)
	if err != nil {
		t.Fatal("failed to read journal:", err)
	}

	expect := []whenevertray.Event{
		&whenevertray.EventProcessStopped{PID: 42, Graceful: true},
		&whenevertray.EventAcquired{Version: "0.1.6"},
	}

	for i, entry := range entries {
		if !reflect.DeepEqual(entry.Event, expect[i]) {
			t.Errorf("tail entry %d mismatch, got %#v, expected %#v", i, entry.Event, expect[i])
		}
	}
}

func TestReader(t *testing.T) {
	t.Run("unknown event", func(t *testing.T) {
		const input = `{"time":"2021-04-13T05:35:00Z","type":"nope","data":{}}` + "\n"

		_, err := Tail(strings.NewReader(input), -1)
		if err == nil || !strings.Contains(err.Error(), `unknown event "nope"`) {
			t.Fatal("unexpected error:", err)
		}
	})

	t.Run("empty", func(t *testing.T) {
		entries, err := Tail(strings.NewReader(""), 10)
		if err != nil {
			t.Fatal("failed to read empty journal:", err)
		}
		if len(entries) != 0 {
			t.Fatalf("read %d entries", len(entries))
		}
	})
}

func TestHumanWriter(t *testing.T) {
	var buf bytes.Buffer
	w := NewHumanWriter(zerolog.New(&buf))

	w.Write(&whenevertray.EventProcessSpawned{PID: 7, Command: "whenever", Priority: "low"})
	w.Write(&whenevertray.EventStopEscalated{PID: 7, Grace: "1.5s"})

	type logLine struct {
		Level   string  `json:"level"`
		Message string  `json:"message"`
		PID     float64 `json:"pid"`
	}

	var lines []logLine
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var l logLine
		if err := json.Unmarshal([]byte(line), &l); err != nil {
			t.Fatalf("invalid log line %q: %v", line, err)
		}
		lines = append(lines, l)
	}

	expect := []logLine{
		{Level: "info", Message: "process spawned", PID: 7},
		{Level: "warn", Message: "stop escalated", PID: 7},
	}

	if !reflect.DeepEqual(lines, expect) {
		t.Fatalf("unexpected log lines %+v", lines)
	}
}

func TestMultiWriter(t *testing.T) {
	var calls []string

	writer := func(name string, err error) whenevertray.Journaler {
		return whenevertray.JournalerFunc(func(whenevertray.Event) error {
			calls = append(calls, name)
			return err
		})
	}

	first := errors.New("first")

	w := MultiWriter(
		writer("a", nil),
		writer("b", first),
		writer("c", errors.New("second")),
	)

	if err := w.Write(&whenevertray.EventAcquired{}); err != first {
		t.Fatal("unexpected error:", err)
	}

	if !reflect.DeepEqual(calls, []string{"a", "b", "c"}) {
		t.Fatal("unexpected calls:", calls)
	}
}
