// Package monitor coordinates one monitoring run: load state, fetch the
// page, extract entries, detect the match, notify, persist.
package monitor

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/abhinayb/pubwatch/internal/clock/system"
	"github.com/abhinayb/pubwatch/internal/extract"
	"github.com/abhinayb/pubwatch/internal/hash/sha256"
	"github.com/abhinayb/pubwatch/internal/id/uuid"
	"github.com/abhinayb/pubwatch/internal/match"
	"github.com/abhinayb/pubwatch/internal/metrics"
	"github.com/abhinayb/pubwatch/internal/notify"
	"github.com/abhinayb/pubwatch/internal/state"
)

// Outcome classifies a completed run.
type Outcome string

const (
	AlreadyNotified       Outcome = "already_notified"
	FetchFailed           Outcome = "fetch_failed"
	NoEntriesFound        Outcome = "no_entries_found"
	NoMatchYet            Outcome = "no_match_yet"
	NotifiedSuccessfully  Outcome = "notified"
	NotifiedButSendFailed Outcome = "notify_send_failed"
	UnexpectedError       Outcome = "unexpected_error"
)

// ExitCode maps an outcome to a process exit status. Normal polling
// outcomes are zero; anything an operator should look at is non-zero.
func (o Outcome) ExitCode() int {
	switch o {
	case AlreadyNotified, NoEntriesFound, NoMatchYet, NotifiedSuccessfully:
		return 0
	case FetchFailed:
		return 1
	case NotifiedButSendFailed:
		return 2
	default:
		return 3
	}
}

// Report captures what one run did. It is served verbatim on the status
// endpoint in watch mode.
type Report struct {
	RunID        string    `json:"run_id"`
	StartedAt    time.Time `json:"started_at"`
	FinishedAt   time.Time `json:"finished_at"`
	Outcome      Outcome   `json:"outcome"`
	ContentHash  string    `json:"content_hash,omitempty"`
	EntryCount   int       `json:"entry_count"`
	MatchedEntry string    `json:"matched_entry,omitempty"`
	Error        string    `json:"error,omitempty"`
}

// Config names the page being watched and the match that fires the alert.
type Config struct {
	URL       string
	Year      string
	Keyword   string
	Recipient string
	Subject   string
}

// Monitor runs the check pipeline. It holds no per-run state and is safe
// to invoke repeatedly.
type Monitor struct {
	cfg       Config
	store     state.Store
	fetcher   Fetcher
	notifier  Notifier
	extractor *extract.Extractor
	detector  *match.Detector
	clock     Clock
	hasher    Hasher
	ids       IDGenerator
	logger    *zap.Logger
}

// New creates a Monitor. Nil clock, hasher, or ids fall back to the real
// implementations.
func New(
	cfg Config,
	store state.Store,
	fetcher Fetcher,
	notifier Notifier,
	extractor *extract.Extractor,
	detector *match.Detector,
	clk Clock,
	hasher Hasher,
	ids IDGenerator,
	logger *zap.Logger,
) *Monitor {
	if clk == nil {
		clk = system.New()
	}
	if hasher == nil {
		hasher = sha256.New()
	}
	if ids == nil {
		ids = uuid.NewGenerator()
	}
	return &Monitor{
		cfg:       cfg,
		store:     store,
		fetcher:   fetcher,
		notifier:  notifier,
		extractor: extractor,
		detector:  detector,
		clock:     clk,
		hasher:    hasher,
		ids:       ids,
		logger:    logger,
	}
}

// Run performs one monitoring run and never panics; unanticipated failures
// surface as UnexpectedError with state untouched.
func (m *Monitor) Run(ctx context.Context) (report Report) {
	report.StartedAt = m.clock.Now()

	runID, err := m.ids.NewID()
	if err != nil {
		m.logger.Warn("run id generation failed", zap.Error(err))
	}
	report.RunID = runID

	logger := m.logger.With(zap.String("run_id", runID))
	logger.Info("starting monitoring run", zap.String("url", m.cfg.URL))

	defer func() {
		if r := recover(); r != nil {
			logger.Error("monitoring run panicked", zap.Any("panic", r))
			report.Outcome = UnexpectedError
			report.Error = fmt.Sprintf("panic: %v", r)
		}
		report.FinishedAt = m.clock.Now()
		metrics.ObserveRun(string(report.Outcome), report.FinishedAt.Sub(report.StartedAt))
		logger.Info("monitoring run finished",
			zap.String("outcome", string(report.Outcome)),
			zap.Duration("duration", report.FinishedAt.Sub(report.StartedAt)),
		)
	}()

	st := m.store.Load(ctx)
	metrics.SetNotified(st.Notified)
	if st.Notified {
		logger.Info("notification already sent, nothing to do")
		report.Outcome = AlreadyNotified
		return report
	}

	content, err := m.fetcher.Fetch(ctx, m.cfg.URL)
	if err != nil {
		logger.Warn("fetch failed", zap.Error(err))
		report.Outcome = FetchFailed
		report.Error = err.Error()
		return report
	}
	if content == "" {
		logger.Warn("fetch returned empty content")
		report.Outcome = FetchFailed
		report.Error = "empty page content"
		return report
	}

	if digest, hashErr := m.hasher.Hash([]byte(content)); hashErr == nil {
		report.ContentHash = digest
		logger.Debug("fetched page", zap.String("content_hash", digest), zap.Int("bytes", len(content)))
	}

	entries := m.extractor.Extract(content)
	report.EntryCount = len(entries)
	metrics.ObserveEntries(len(entries))
	if len(entries) == 0 {
		logger.Warn("no entries extracted from page")
		report.Outcome = NoEntriesFound
		return report
	}

	entry, found := m.detector.FindMatch(entries)
	if !found {
		logger.Info("no match yet", zap.Int("entries", len(entries)))
		report.Outcome = NoMatchYet
		return report
	}
	report.MatchedEntry = entry.Text
	logger.Info("match detected", zap.String("entry", entry.Text))

	msg := notify.Message{
		Recipient: m.cfg.Recipient,
		Subject:   m.cfg.Subject,
		Body:      notify.BuildBody(m.cfg.Keyword, m.cfg.Year, m.cfg.URL, entry.Text),
	}
	sendErr := m.notifier.Send(ctx, msg)
	if sendErr != nil {
		logger.Error("notification send failed", zap.Error(sendErr))
	}

	// Mark notified even when the send failed, so a broken notifier cannot
	// cause repeated alert attempts against the same publication.
	st.Notified = true
	if saveErr := m.store.Save(ctx, st); saveErr != nil {
		logger.Error("failed to persist notified flag", zap.Error(saveErr))
		report.Outcome = UnexpectedError
		report.Error = saveErr.Error()
		return report
	}
	metrics.SetNotified(true)

	if sendErr != nil {
		report.Outcome = NotifiedButSendFailed
		report.Error = sendErr.Error()
		return report
	}
	report.Outcome = NotifiedSuccessfully
	return report
}
