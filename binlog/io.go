package binlog

import (
	"fmt"
	"io"
	"os"
)

// Source is a positioned byte-oriented reader over the input file.
// Every read seeks first; there is no assumption of sequential access
// beyond what the caller happens to do.
type Source struct {
	file *os.File
}

// NewSource wraps an already-open file for positioned reads.
func NewSource(file *os.File) *Source {
	return &Source{file: file}
}

// ReadAt reads exactly n bytes starting at offset. A short read is
// reported as an *IOError wrapping io.ErrUnexpectedEOF; a read that finds nothing at all is
// reported as io.EOF, matching the convention the scanner relies on to
// recognize a clean end-of-file at an event boundary.
func (s *Source) ReadAt(offset int64, n int) ([]byte, error) {
	buf := make([]byte, n)
	read, err := s.file.ReadAt(buf, offset)
	if read == n {
		return buf, nil
	}
	if err == io.EOF {
		if read == 0 {
			return nil, io.EOF
		}
		return nil, &IOError{Op: "read", Err: io.ErrUnexpectedEOF}
	}
	if err != nil {
		return nil, &IOError{Op: "read", Err: err}
	}
	return nil, &IOError{Op: "read", Err: io.ErrUnexpectedEOF}
}

// Sink is a sequential, append-only byte-oriented writer over the output
// file. It never seeks.
type Sink struct {
	file    *os.File
	written int64
}

// NewSink wraps an already-open, empty file for sequential writes.
func NewSink(file *os.File) *Sink {
	return &Sink{file: file}
}

// Write appends b to the output. A short write is treated as an I/O
// error; the caller must discard the output file in that case.
func (s *Sink) Write(b []byte) error {
	n, err := s.file.Write(b)
	s.written += int64(n)
	if err != nil {
		return &IOError{Op: "write", Err: err}
	}
	if n != len(b) {
		return &IOError{Op: "write", Err: fmt.Errorf("short write: wrote %d of %d bytes", n, len(b))}
	}
	return nil
}

// Written returns the number of bytes written so far.
func (s *Sink) Written() int64 {
	return s.written
}
