package task

import (
	"context"
	"fmt"
	"io"
)

// Print writes a fixed message to the shared output sink on every execution.
// It is the cheapest way to observe repeated-scheduling behavior.
type Print struct {
	msg string
	w   io.Writer
}

func NewPrint(msg string, w io.Writer) *Print {
	if msg == "" {
		msg = "Hello World"
	}
	if w == nil {
		w = io.Discard
	}
	return &Print{msg: msg, w: w}
}

func (p *Print) Run(ctx context.Context) error {
	_ = ctx
	_, err := fmt.Fprintln(p.w, "PrintTask: "+p.msg)
	return err
}
