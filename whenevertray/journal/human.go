package journal

import (
	"encoding/json"

	"git.unix.lgbt/diamondburned/whenevertray/whenevertray"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// HumanWriter is a journaler that writes events as log entries. Warnings are
// logged at the warn level, everything else at the info level.
type HumanWriter struct {
	log zerolog.Logger
}

var _ whenevertray.Journaler = HumanWriter{}

// NewHumanWriter creates a journaler that logs into the given logger.
func NewHumanWriter(log zerolog.Logger) HumanWriter {
	return HumanWriter{log}
}

func (w HumanWriter) Write(ev whenevertray.Event) error {
	fields, err := eventFields(ev)
	if err != nil {
		return err
	}

	level := zerolog.InfoLevel
	if whenevertray.IsWarning(ev) {
		level = zerolog.WarnLevel
	}

	w.log.WithLevel(level).Fields(fields).Msg(ev.Type())
	return nil
}

// eventFields flattens the event's JSON form into log fields.
func eventFields(ev whenevertray.Event) (map[string]interface{}, error) {
	b, err := json.Marshal(ev)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal event")
	}

	var fields map[string]interface{}
	if err := json.Unmarshal(b, &fields); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal event")
	}

	return fields, nil
}
