package journal

import (
	"context"
	"time"

	"bookingproxy/internal/models"

	"github.com/rs/zerolog"
)

// Appender writes one reconciliation row to the backing spreadsheet.
type Appender interface {
	Append(ctx context.Context, entry models.JournalEntry) error
}

// Worker drains booking outcomes into the journal out of band. Record never
// blocks the request path; retries with backoff apply only here.
type Worker struct {
	appender Appender
	retry    RetryPolicy
	queue    chan models.JournalEntry
	logger   *zerolog.Logger
}

// NewWorker builds a worker with sane retry defaults.
func NewWorker(appender Appender, retry RetryPolicy, logger *zerolog.Logger) *Worker {
	if retry.MaxRetries == 0 {
		retry.MaxRetries = 5
	}
	if retry.InitialDelay == 0 {
		retry.InitialDelay = 2 * time.Second
	}
	if retry.MaxDelay == 0 {
		retry.MaxDelay = time.Minute
	}
	if retry.BackoffFactor == 0 {
		retry.BackoffFactor = 2
	}

	return &Worker{
		appender: appender,
		retry:    retry,
		queue:    make(chan models.JournalEntry, 128),
		logger:   logger,
	}
}

// Record enqueues an entry. A full queue drops the row with a log line
// rather than stalling a booking.
func (w *Worker) Record(entry models.JournalEntry) {
	select {
	case w.queue <- entry:
	default:
		w.logger.Warn().Str("payment_id", entry.PaymentID).Msg("journal queue full, row dropped")
	}
}

// Run processes the queue until ctx is canceled.
func (w *Worker) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case entry := <-w.queue:
			w.append(ctx, entry)
		}
	}
}

func (w *Worker) append(ctx context.Context, entry models.JournalEntry) {
	var err error
	for attempt := 1; attempt <= w.retry.MaxRetries; attempt++ {
		if err = w.appender.Append(ctx, entry); err == nil {
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(w.retry.NextDelay(attempt)):
		}
	}

	w.logger.Error().Err(err).
		Str("payment_id", entry.PaymentID).
		Str("state", entry.State).
		Msg("journal append gave up")
}
