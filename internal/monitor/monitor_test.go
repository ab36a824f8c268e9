package monitor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/abhinayb/pubwatch/internal/extract"
	"github.com/abhinayb/pubwatch/internal/match"
	"github.com/abhinayb/pubwatch/internal/notify"
	"github.com/abhinayb/pubwatch/internal/state"
)

type fakeFetcher struct {
	content string
	err     error
	calls   int
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) (string, error) {
	f.calls++
	return f.content, f.err
}

type fakeNotifier struct {
	err   error
	calls int
	last  notify.Message
}

func (n *fakeNotifier) Send(ctx context.Context, msg notify.Message) error {
	n.calls++
	n.last = msg
	return n.err
}

type panicNotifier struct{}

func (panicNotifier) Send(ctx context.Context, msg notify.Message) error {
	panic("smtp client exploded")
}

type fakeStore struct {
	st      state.State
	saveErr error
	saves   int
}

func (s *fakeStore) Load(ctx context.Context) state.State {
	return s.st
}

func (s *fakeStore) Save(ctx context.Context, st state.State) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.st = st
	s.saves++
	return nil
}

func testConfig() Config {
	return Config{
		URL:       "https://conference.example.org/all-proceedings",
		Year:      "2025",
		Keyword:   "iconat",
		Recipient: "alerts@example.org",
		Subject:   "Proceedings alert",
	}
}

func newTestMonitor(store state.Store, fetcher Fetcher, notifier Notifier) *Monitor {
	logger := zap.NewNop()
	return New(
		testConfig(),
		store,
		fetcher,
		notifier,
		extract.New(extract.DefaultConfig(), logger),
		match.New("2025", "iconat"),
		nil, nil, nil,
		logger,
	)
}

func TestRunAlreadyNotifiedShortCircuits(t *testing.T) {
	t.Parallel()

	store := &fakeStore{st: state.State{Notified: true}}
	fetcher := &fakeFetcher{content: "ICONAT 2025 Proceedings"}
	notifier := &fakeNotifier{}
	m := newTestMonitor(store, fetcher, notifier)

	for i := 0; i < 2; i++ {
		report := m.Run(context.Background())
		require.Equal(t, AlreadyNotified, report.Outcome)
	}

	require.Zero(t, fetcher.calls)
	require.Zero(t, notifier.calls)
	require.Zero(t, store.saves)
}

func TestRunFetchFailure(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	fetcher := &fakeFetcher{err: errors.New("connection refused")}
	notifier := &fakeNotifier{}
	m := newTestMonitor(store, fetcher, notifier)

	report := m.Run(context.Background())

	require.Equal(t, FetchFailed, report.Outcome)
	require.NotZero(t, report.Outcome.ExitCode())
	require.Zero(t, notifier.calls)
	require.Zero(t, store.saves)
	require.False(t, store.st.Notified)
}

func TestRunEmptyContentIsFetchFailure(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	m := newTestMonitor(store, &fakeFetcher{content: ""}, &fakeNotifier{})

	report := m.Run(context.Background())

	require.Equal(t, FetchFailed, report.Outcome)
	require.Zero(t, store.saves)
}

func TestRunNoEntriesFound(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	fetcher := &fakeFetcher{content: "<html><body><p>Welcome to our homepage.</p></body></html>"}
	m := newTestMonitor(store, fetcher, &fakeNotifier{})

	report := m.Run(context.Background())

	require.Equal(t, NoEntriesFound, report.Outcome)
	require.Zero(t, report.Outcome.ExitCode())
	require.Zero(t, store.saves)
}

func TestRunNoMatchYet(t *testing.T) {
	t.Parallel()

	page := `Proceedings archive for ICONAT 2022, the International Conference for Advancement in Technology, with keynote talks and poster sessions included
Proceedings archive for ICONAT 2023, the International Conference for Advancement in Technology, with keynote talks and poster sessions included
Proceedings archive for ICONAT 2024, the International Conference for Advancement in Technology, with keynote talks and poster sessions included
Proceedings archive for the International Conference on Robotics and Automation Systems 2025, with keynote talks and poster sessions included`

	store := &fakeStore{}
	notifier := &fakeNotifier{}
	m := newTestMonitor(store, &fakeFetcher{content: page}, notifier)

	report := m.Run(context.Background())

	require.Equal(t, NoMatchYet, report.Outcome)
	require.NotZero(t, report.EntryCount)
	require.Zero(t, notifier.calls)
	require.False(t, store.st.Notified)
}

func TestRunNotifiesOnMatch(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	notifier := &fakeNotifier{}
	m := newTestMonitor(store, &fakeFetcher{content: "ICONAT 2025 Proceedings - Location: TBD"}, notifier)

	report := m.Run(context.Background())

	require.Equal(t, NotifiedSuccessfully, report.Outcome)
	require.Zero(t, report.Outcome.ExitCode())
	require.Equal(t, 1, notifier.calls)
	require.Equal(t, "alerts@example.org", notifier.last.Recipient)
	require.Equal(t, "Proceedings alert", notifier.last.Subject)
	require.Contains(t, notifier.last.Body, "ICONAT 2025 Proceedings - Location: TBD")
	require.Contains(t, notifier.last.Body, "https://conference.example.org/all-proceedings")
	require.True(t, store.st.Notified)
	require.Contains(t, report.MatchedEntry, "ICONAT 2025")
	require.NotEmpty(t, report.ContentHash)
}

func TestRunSendFailureStillMarksNotified(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	notifier := &fakeNotifier{err: errors.New("smtp timeout")}
	m := newTestMonitor(store, &fakeFetcher{content: "ICONAT 2025 Proceedings - Location: TBD"}, notifier)

	report := m.Run(context.Background())

	require.Equal(t, NotifiedButSendFailed, report.Outcome)
	require.NotZero(t, report.Outcome.ExitCode())
	require.True(t, store.st.Notified)
	require.Contains(t, report.Error, "smtp timeout")

	// The terminal state suppresses any further attempts.
	second := m.Run(context.Background())
	require.Equal(t, AlreadyNotified, second.Outcome)
	require.Equal(t, 1, notifier.calls)
}

func TestRunSaveFailureIsUnexpectedError(t *testing.T) {
	t.Parallel()

	store := &fakeStore{saveErr: state.ErrUnwritable}
	notifier := &fakeNotifier{}
	m := newTestMonitor(store, &fakeFetcher{content: "ICONAT 2025 Proceedings - Location: TBD"}, notifier)

	report := m.Run(context.Background())

	require.Equal(t, UnexpectedError, report.Outcome)
	require.NotZero(t, report.Outcome.ExitCode())
}

func TestRunRecoversFromPanic(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	m := newTestMonitor(store, &fakeFetcher{content: "ICONAT 2025 Proceedings - Location: TBD"}, panicNotifier{})

	report := m.Run(context.Background())

	require.Equal(t, UnexpectedError, report.Outcome)
	require.Contains(t, report.Error, "panic")
	require.False(t, store.st.Notified)
	require.Zero(t, store.saves)
}

func TestOutcomeExitCodes(t *testing.T) {
	t.Parallel()

	zero := []Outcome{AlreadyNotified, NoEntriesFound, NoMatchYet, NotifiedSuccessfully}
	for _, o := range zero {
		require.Zero(t, o.ExitCode(), "outcome %s", o)
	}
	nonZero := []Outcome{FetchFailed, NotifiedButSendFailed, UnexpectedError}
	for _, o := range nonZero {
		require.NotZero(t, o.ExitCode(), "outcome %s", o)
	}
}
