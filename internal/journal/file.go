package journal

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"

	logx "taskrun/pkg/logx"
)

// fileStore is a dependency-free persistence backend.
//
// Files:
//   - <prefix>.tasks.jsonl (append-only JSON Lines, one row per outcome)
//   - <prefix>.runs.jsonl  (append-only JSON Lines, one row per run)
type fileStore struct {
	log logx.Logger

	mu sync.Mutex

	taskFile *os.File
	runFile  *os.File
}

func openFile(cfg Config, log logx.Logger) (Store, error) {
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		return nil, errors.New("journal.path is required for file driver")
	}
	if log.IsZero() {
		log = logx.Nop()
	}

	dir := filepath.Dir(path)
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	prefix := filepath.Join(dir, base)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	tf, err := os.OpenFile(prefix+".tasks.jsonl", os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, err
	}
	rf, err := os.OpenFile(prefix+".runs.jsonl", os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		_ = tf.Close()
		return nil, err
	}

	return &fileStore{log: log, taskFile: tf, runFile: rf}, nil
}

func (s *fileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var err1, err2 error
	if s.taskFile != nil {
		err1 = s.taskFile.Close()
		s.taskFile = nil
	}
	if s.runFile != nil {
		err2 = s.runFile.Close()
		s.runFile = nil
	}
	if err1 != nil {
		return err1
	}
	return err2
}

func (s *fileStore) AppendTask(ctx context.Context, r TaskRecord) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.taskFile == nil {
		return errors.New("task journal closed")
	}
	return json.NewEncoder(s.taskFile).Encode(r)
}

func (s *fileStore) AppendRun(ctx context.Context, r RunRecord) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.runFile == nil {
		return errors.New("run journal closed")
	}
	return json.NewEncoder(s.runFile).Encode(r)
}
