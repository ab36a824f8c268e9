package monitor

import (
	"context"
	"time"

	"github.com/abhinayb/pubwatch/internal/notify"
)

// Fetcher obtains the raw rendered content of the monitored page.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Notifier dispatches the one-time alert.
type Notifier interface {
	Send(ctx context.Context, msg notify.Message) error
}

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// Hasher digests fetched page content for diagnostic logging.
type Hasher interface {
	Hash(data []byte) (string, error)
}

// IDGenerator tags each run with a unique identifier.
type IDGenerator interface {
	NewID() (string, error)
}
