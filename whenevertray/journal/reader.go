package journal

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"git.unix.lgbt/diamondburned/whenevertray/whenevertray"
	"git.unix.lgbt/diamondburned/whenevertray/whenevertray/journal/backwardio"
	"github.com/pkg/errors"
)

// Entry is a decoded journal record.
type Entry struct {
	Time    time.Time
	Session string
	Event   whenevertray.Event
}

// Reader implements a primitive reader that parses journals written by Writer
// from the newest record to the oldest.
type Reader struct {
	s *backwardio.Scanner
}

// NewReader creates a new journal reader.
func NewReader(r io.ReadSeeker) *Reader {
	return &Reader{backwardio.NewScanner(r)}
}

// Read reads the previous entry. An EOF error is returned if the file has been
// fully consumed.
func (r *Reader) Read() (*Entry, error) {
	var line []byte
	var err error

	for {
		line, err = r.s.Line()
		if err != nil {
			return nil, err
		}
		if len(line) > 0 {
			break
		}
	}

	var raw struct {
		Time    time.Time       `json:"time"`
		Session string          `json:"session"`
		Type    string          `json:"type"`
		Data    json.RawMessage `json:"data"`
	}

	if err := json.Unmarshal(line, &raw); err != nil {
		return nil, errors.Wrap(err, "failed to decode JSON")
	}

	event := whenevertray.NewEvent(raw.Type)
	if event == nil {
		return nil, errors.Errorf("unknown event %q", raw.Type)
	}

	if err := json.Unmarshal(raw.Data, event); err != nil {
		return nil, errors.Wrap(err, "failed to decode event data")
	}

	return &Entry{
		Time:    raw.Time,
		Session: raw.Session,
		Event:   event,
	}, nil
}

// Tail reads up to the last n entries and returns them oldest first. A
// negative n reads everything.
func Tail(r io.ReadSeeker, n int) ([]Entry, error) {
	reader := NewReader(r)

	var entries []Entry
	for n < 0 || len(entries) < n {
		e, err := reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}

		entries = append(entries, *e)
	}

	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}

	return entries, nil
}

// TailFile reads the last n entries of the journal file at path. See Tail.
func TailFile(path string, n int) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Tail(f, n)
}
