package task

import (
	"context"
	"fmt"
	"io"
	"sync/atomic"
)

// Compute sums the integers 1..limit and writes the result.
//
// The result is deterministic (limit=100 yields 5050), which makes it a
// useful correctness probe for CPU-bound work.
type Compute struct {
	limit int
	w     io.Writer
	sum   atomic.Int64
}

func NewCompute(limit int, w io.Writer) *Compute {
	if limit < 0 {
		limit = 0
	}
	if w == nil {
		w = io.Discard
	}
	return &Compute{limit: limit, w: w}
}

func (c *Compute) Run(ctx context.Context) error {
	_ = ctx
	var sum int64
	for i := 1; i <= c.limit; i++ {
		sum += int64(i)
	}
	c.sum.Store(sum)
	_, err := fmt.Fprintf(c.w, "ComputeTask: Sum = %d\n", sum)
	return err
}

// Sum returns the result of the most recent execution (0 before the first).
func (c *Compute) Sum() int64 { return c.sum.Load() }
