package task

import (
	"context"
	"fmt"
	"io"
	"time"
)

// Wait blocks for a fixed duration.
//
// Its job is to prove that one slow task cannot starve unrelated tasks:
// the sleep blocks only the worker dedicated to it.
type Wait struct {
	d time.Duration
	w io.Writer
}

func NewWait(d time.Duration, w io.Writer) *Wait {
	if d < 0 {
		d = 0
	}
	if w == nil {
		w = io.Discard
	}
	return &Wait{d: d, w: w}
}

func (t *Wait) Run(ctx context.Context) error {
	_, _ = fmt.Fprintf(t.w, "WaitTask: Sleeping for %s\n", t.d)
	tmr := time.NewTimer(t.d)
	defer tmr.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-tmr.C:
		return nil
	}
}
