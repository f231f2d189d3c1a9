package executor

import (
	"io"
	"sync"
)

// Sink serializes output from concurrent workers.
//
// Every Write and Line holds one mutex for the duration of a single
// underlying Write, so captured output is always a sequence of complete,
// single-worker lines and never interleaves mid-line.
//
// The sink is handed to task variants as an io.Writer; lifecycle markers go
// through Line.
type Sink struct {
	mu sync.Mutex
	w  io.Writer
}

func NewSink(w io.Writer) *Sink {
	if w == nil {
		w = io.Discard
	}
	return &Sink{w: w}
}

func (s *Sink) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

// Line writes one complete line, appending the newline itself.
func (s *Sink) Line(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, _ = io.WriteString(s.w, line+"\n")
}
