package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	"go.uber.org/zap"
)

// GCSStore keeps the state as a JSON object in a Google Cloud Storage
// bucket, for deployments where runs have no stable local disk.
type GCSStore struct {
	client *storage.Client
	bucket string
	object string
	logger *zap.Logger
}

// NewGCSStore creates a GCS-backed store.
func NewGCSStore(client *storage.Client, bucket, object string, logger *zap.Logger) (*GCSStore, error) {
	if client == nil {
		return nil, fmt.Errorf("storage client is required")
	}
	if bucket == "" {
		return nil, fmt.Errorf("bucket name is required")
	}
	if object == "" {
		object = "state.json"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GCSStore{client: client, bucket: bucket, object: object, logger: logger}, nil
}

// Load reads the state object. A missing or unparseable object yields the
// fresh default, persisted on a best-effort basis.
func (s *GCSStore) Load(ctx context.Context) State {
	reader, err := s.client.Bucket(s.bucket).Object(s.object).NewReader(ctx)
	if err == nil {
		data, rerr := io.ReadAll(reader)
		cerr := reader.Close()
		if rerr == nil && cerr == nil {
			var st State
			if jerr := json.Unmarshal(data, &st); jerr == nil {
				return st
			}
			s.logger.Warn("state object is corrupt, resetting to default",
				zap.String("object", s.uri()))
		}
	} else if errors.Is(err, storage.ErrObjectNotExist) {
		s.logger.Info("no state object yet, creating default",
			zap.String("object", s.uri()))
	} else {
		s.logger.Warn("state object unreadable, resetting to default",
			zap.String("object", s.uri()), zap.Error(err))
	}

	st := State{}
	if serr := s.Save(ctx, st); serr != nil {
		s.logger.Warn("failed to persist default state", zap.Error(serr))
	}
	return st
}

// Save overwrites the state object. Failures wrap ErrUnwritable.
func (s *GCSStore) Save(ctx context.Context, st State) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	writer := s.client.Bucket(s.bucket).Object(s.object).NewWriter(ctx)
	writer.ContentType = "application/json"
	if _, err := writer.Write(data); err != nil {
		if cerr := writer.Close(); cerr != nil {
			return fmt.Errorf("%w: %s (close writer: %s)", ErrUnwritable, err, cerr)
		}
		return fmt.Errorf("%w: %s", ErrUnwritable, err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("%w: %s", ErrUnwritable, err)
	}
	s.logger.Info("state saved",
		zap.String("object", s.uri()), zap.Bool("notified", st.Notified))
	return nil
}

func (s *GCSStore) uri() string {
	return fmt.Sprintf("gs://%s/%s", s.bucket, s.object)
}
