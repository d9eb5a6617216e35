package backwardio

import (
	"bufio"
	"errors"
	"io"
	"strings"
	"testing"
)

func TestScanner(t *testing.T) {
	maxTok = 4
	t.Cleanup(func() {
		maxTok = bufio.MaxScanTokenSize
	})

	type test struct {
		name   string
		input  string
		output []string
	}

	var tests = []test{
		{"empty", "", nil},
		{"newline", "\n", []string{""}},
		{"no newline", "aa", []string{"aa"}},
		{"trailing", "aa\nbb\ncc\ndd\n", []string{"dd", "cc", "bb", "aa"}},
		{"both", "\naa\nbb\n", []string{"bb", "aa", ""}},
		{"prefix", "\naa\nbb", []string{"bb", "aa", ""}},
		{"empty lines", "a\n\n\nb\n", []string{"b", "", "", "a"}},
		{"crlf", "aa\r\nbb\r\n", []string{"bb", "aa"}},
		{"uneven", "abc\nd\nefg\nhi", []string{"hi", "efg", "d", "abc"}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			s := NewScanner(strings.NewReader(test.input))

			for _, expect := range test.output {
				b, err := s.Line()
				if err != nil {
					t.Fatal("failed to read:", err)
				}

				if got := string(b); got != expect {
					t.Errorf("expected %q, got %q", expect, got)
				}
			}

			_, err := s.Line()
			errorEq(t, err, io.EOF)

			// EOF is sticky.
			_, err = s.Line()
			errorEq(t, err, io.EOF)
		})
	}

	t.Run("too long", func(t *testing.T) {
		const input = "aaaaaa\nbbbbbb"

		s := NewScanner(strings.NewReader(input))

		_, err := s.Line()
		errorEq(t, err, bufio.ErrTooLong)
	})

	t.Run("stable", func(t *testing.T) {
		s := NewScanner(strings.NewReader("aa\nbb\ncc"))

		first, _ := s.Line()
		s.Line()
		s.Line()

		if string(first) != "cc" {
			t.Fatalf("earlier line changed to %q", first)
		}
	})
}

func TestScannerError(t *testing.T) {
	// Mimic failing behaviors of io.ReadSeeker at each stage.

	fseek := failSeeker{
		err: errors.New("custom error"),
	}

	type seekError struct {
		name  string
		error string
	}

	seekErrors := []seekError{
		// Keep these in sync with start() and fill().
		{"seek end", "failed to find end of file"},
		{"seek start", "failed to seek backwards"},
		{"read", "failed to read seeked chunk"},
	}

	for i, seekErr := range seekErrors {
		t.Run(seekErr.name, func(t *testing.T) {
			fseek.stage = i
			s := NewScanner(fseek)

			_, err := s.Line()
			errorEq(t, err, fseek.err)

			if !strings.Contains(err.Error(), seekErr.error) {
				t.Fatalf("returned error does not contain substring\n"+
					"got:      %q\n"+
					"expected: %q", err, seekErr.error)
			}
		})
	}
}

func errorEq(t *testing.T, got, expect error) {
	t.Helper()

	if got == nil {
		t.Fatal("missing error")
	}

	if !errors.Is(got, expect) {
		t.Fatal("unexpected error:", got)
	}
}

type failSeeker struct {
	err   error
	stage int
}

var _ io.ReadSeeker = (*failSeeker)(nil)

func (s failSeeker) Read(b []byte) (int, error) {
	if s.stage == 2 {
		return 0, s.err
	}

	return len(b), nil
}

func (s failSeeker) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekEnd:
		if s.stage == 0 {
			return 0, s.err
		}
		return 10, nil

	case io.SeekStart:
		if s.stage == 1 {
			return 0, s.err
		}
		return offset, nil

	default:
		return 0, errors.New("unexpected whence value")
	}
}
