package executor

import "errors"

var (
	// ErrRunStarted rejects registration and re-starts once the run began.
	ErrRunStarted = errors.New("executor: run already started")
	// ErrNotStarted is returned by Wait before Start.
	ErrNotStarted = errors.New("executor: run not started")
	// ErrJoinTimeout reports a bounded wait that expired while workers were
	// still running. The workers keep draining; only the join gave up.
	ErrJoinTimeout = errors.New("executor: join timed out")
)
