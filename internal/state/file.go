package state

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/zap"
)

// FileStore keeps the state in a JSON file on the local filesystem. This is
// the default backend.
type FileStore struct {
	path   string
	logger *zap.Logger
}

// NewFileStore creates a file-backed store at the given path.
func NewFileStore(path string, logger *zap.Logger) (*FileStore, error) {
	if path == "" {
		return nil, fmt.Errorf("state file path is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileStore{path: path, logger: logger}, nil
}

// Load reads the state file. A missing or unparseable file yields the fresh
// default, which is persisted immediately so the next run starts from a
// well-formed record.
func (s *FileStore) Load(ctx context.Context) State {
	data, err := os.ReadFile(s.path)
	switch {
	case err == nil:
		var st State
		if jerr := json.Unmarshal(data, &st); jerr == nil {
			return st
		}
		s.logger.Warn("state file is corrupt, resetting to default",
			zap.String("path", s.path))
	case os.IsNotExist(err):
		s.logger.Info("no state file yet, creating default",
			zap.String("path", s.path))
	default:
		s.logger.Warn("state file unreadable, resetting to default",
			zap.String("path", s.path), zap.Error(err))
	}

	st := State{}
	if serr := s.Save(ctx, st); serr != nil {
		s.logger.Warn("failed to persist default state", zap.Error(serr))
	}
	return st
}

// Save writes the state synchronously. Failures wrap ErrUnwritable.
func (s *FileStore) Save(_ context.Context, st State) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("%w: %s", ErrUnwritable, err)
	}
	s.logger.Info("state saved",
		zap.String("path", s.path), zap.Bool("notified", st.Notified))
	return nil
}
