// Package backwardio implements a line scanner that scans a file from its end
// towards its start.
package backwardio

import (
	"bufio"
	"bytes"
	"io"

	"github.com/pkg/errors"
)

// maxTok is the maximum line length, and also the size of a chunk read at
// once.
var maxTok = bufio.MaxScanTokenSize

// Scanner returns the lines of a file in reverse order. A line ends with a
// '\n' or the end of the file; like bufio.ScanLines, a final newline does not
// start an empty line, and a trailing '\r' is dropped.
type Scanner struct {
	r   io.ReadSeeker
	buf []byte // unscanned bytes right before off
	off int64  // file offset of buf

	started bool
	done    bool
}

// NewScanner creates a new scanner. The reader is seeked around; the caller
// must not use it concurrently.
func NewScanner(r io.ReadSeeker) *Scanner {
	return &Scanner{r: r}
}

// Line returns the previous line. The returned slice stays valid after the
// next call. io.EOF is returned once the start of the file has been consumed,
// and bufio.ErrTooLong if a line does not fit into maxTok.
func (s *Scanner) Line() ([]byte, error) {
	if !s.started {
		if err := s.start(); err != nil {
			return nil, err
		}
	}

	for {
		if i := bytes.LastIndexByte(s.buf, '\n'); i >= 0 {
			line := s.buf[i+1:]
			s.buf = s.buf[:i]
			return dropCR(line), nil
		}

		if s.off == 0 {
			// The first line of the file has no delimiter before it.
			if s.done {
				return nil, io.EOF
			}
			s.done = true

			line := s.buf
			s.buf = nil
			return dropCR(line), nil
		}

		if len(s.buf) >= maxTok {
			return nil, bufio.ErrTooLong
		}

		if err := s.fill(); err != nil {
			return nil, err
		}
	}
}

func (s *Scanner) start() error {
	end, err := s.r.Seek(0, io.SeekEnd)
	if err != nil {
		return errors.Wrap(err, "failed to find end of file")
	}

	s.started = true
	s.off = end
	// An empty file has no lines at all.
	s.done = end == 0

	if end == 0 {
		return nil
	}

	if err := s.fill(); err != nil {
		return err
	}

	// Drop the final newline.
	if n := len(s.buf); n > 0 && s.buf[n-1] == '\n' {
		s.buf = s.buf[:n-1]
	}

	return nil
}

// fill prepends the chunk right before off into buf.
func (s *Scanner) fill() error {
	n := int64(maxTok)
	if n > s.off {
		n = s.off
	}

	off := s.off - n

	if _, err := s.r.Seek(off, io.SeekStart); err != nil {
		return errors.Wrap(err, "failed to seek backwards")
	}

	chunk := make([]byte, n, n+int64(len(s.buf)))

	if _, err := io.ReadFull(s.r, chunk); err != nil {
		return errors.Wrap(err, "failed to read seeked chunk")
	}

	s.off = off
	s.buf = append(chunk, s.buf...)
	return nil
}

func dropCR(line []byte) []byte {
	if n := len(line); n > 0 && line[n-1] == '\r' {
		return line[:n-1]
	}
	return line
}
