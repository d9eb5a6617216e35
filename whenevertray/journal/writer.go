package journal

import (
	"bytes"
	"encoding/json"
	"io"
	"sync"
	"time"

	"git.unix.lgbt/diamondburned/whenevertray/whenevertray"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Record describes the JSON structure of a journal line.
type Record struct {
	Time    time.Time          `json:"time"`
	Session string             `json:"session"`
	Type    string             `json:"type"`
	Data    whenevertray.Event `json:"data"`
}

// Writer is a simple journaler that writes line-delimited JSON records into
// the writer. Every record carries the session ID of the Writer, so that
// records of concurrent or consecutive runs can be told apart.
type Writer struct {
	mutex   sync.Mutex
	w       io.Writer
	session string
}

var _ whenevertray.Journaler = (*Writer)(nil)

// NewWriter creates a new journal writer with a new random session ID.
func NewWriter(w io.Writer) *Writer {
	return &Writer{
		w:       w,
		session: uuid.NewString(),
	}
}

// Session returns the session ID written with every record.
func (l *Writer) Session() string {
	return l.session
}

// Write writes the given event into the writer. Writes are concurrently safe,
// and each record is written with a single Write call.
func (l *Writer) Write(ev whenevertray.Event) error {
	record := Record{
		Time:    time.Now(),
		Session: l.session,
		Type:    ev.Type(),
		Data:    ev,
	}

	buf := bytes.Buffer{}
	buf.Grow(512)

	// Encode appends the new line.
	if err := json.NewEncoder(&buf).Encode(record); err != nil {
		return errors.Wrap(err, "failed to marshal event")
	}

	l.mutex.Lock()
	defer l.mutex.Unlock()

	if _, err := l.w.Write(buf.Bytes()); err != nil {
		return errors.Wrap(err, "failed to write event")
	}

	return nil
}
