// Package state persists the notify-once flag across monitoring runs.
package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnwritable marks save failures caused by unwritable storage. Callers
// must treat a failed save as fatal for the run, since durability of the
// notified flag cannot be assumed.
var ErrUnwritable = errors.New("state storage is unwritable")

// Store loads and saves the monitor state. Load never fails: missing or
// corrupt state degrades to the fresh default, which is persisted
// immediately. Save reports storage failures to the caller.
type Store interface {
	Load(ctx context.Context) State
	Save(ctx context.Context, st State) error
}

// State is the persisted monitor record. Notified starts false and is set
// to true at most once; no code path resets it. Unknown fields found in the
// persisted form are carried along untouched.
type State struct {
	Notified bool

	extra map[string]json.RawMessage
}

// MarshalJSON renders the state with any preserved unknown fields merged
// back in.
func (s State) MarshalJSON() ([]byte, error) {
	merged := make(map[string]json.RawMessage, len(s.extra)+1)
	for k, v := range s.extra {
		merged[k] = v
	}
	notified, err := json.Marshal(s.Notified)
	if err != nil {
		return nil, fmt.Errorf("marshal notified flag: %w", err)
	}
	merged["notified"] = notified
	return json.Marshal(merged)
}

// UnmarshalJSON reads the notified flag and retains every other field
// verbatim.
func (s *State) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode state record: %w", err)
	}
	s.Notified = false
	if v, ok := raw["notified"]; ok {
		if err := json.Unmarshal(v, &s.Notified); err != nil {
			return fmt.Errorf("decode notified flag: %w", err)
		}
		delete(raw, "notified")
	}
	if len(raw) > 0 {
		s.extra = raw
	} else {
		s.extra = nil
	}
	return nil
}
