// Package worker exports saved records to the external statement sheet.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"granaia/internal/amqp"
	"granaia/internal/core"
	"granaia/internal/sheets"
	"granaia/internal/storage"
)

// ExportWorker consumes record events and appends statement rows.
// Rows that fail to append are parked and retried periodically, so a
// sheets outage does not turn into a hot requeue loop on the broker.
type ExportWorker struct {
	storage  *storage.Repository
	appender sheets.StatementAppender

	batchSize int
	interval  time.Duration

	mu      sync.Mutex
	pending []sheets.StatementRow
}

func NewExportWorker(storage *storage.Repository, appender sheets.StatementAppender, batchSize int, interval time.Duration) *ExportWorker {
	if batchSize < 1 {
		batchSize = 10
	}
	if interval < time.Second {
		interval = 30 * time.Second
	}
	return &ExportWorker{
		storage:   storage,
		appender:  appender,
		batchSize: batchSize,
		interval:  interval,
	}
}

// HandleRecordEvent processes one event from the queue. Only creations
// reach the statement; the export is append-only, so updates and
// deletions are acknowledged without a row.
func (w *ExportWorker) HandleRecordEvent(ctx context.Context, event *amqp.RecordEvent) error {
	slog.InfoContext(ctx, "Processing record event",
		"kind", event.Kind, "action", event.Action, "id", event.ID)

	if event.Action != amqp.ActionCreated {
		slog.DebugContext(ctx, "Skipping non-creation event",
			"kind", event.Kind, "action", event.Action, "id", event.ID)
		return nil
	}

	row, err := w.buildRow(ctx, event)
	if err != nil {
		return err
	}

	if _, err := w.appender.Append(ctx, row); err != nil {
		slog.WarnContext(ctx, "Statement append failed, parking row",
			"kind", event.Kind, "id", event.ID, "error", err)
		w.park(row)
	}

	return nil
}

func (w *ExportWorker) buildRow(ctx context.Context, event *amqp.RecordEvent) (sheets.StatementRow, error) {
	var row sheets.StatementRow

	user, err := w.storage.GetUser(ctx, event.UserID)
	if err != nil {
		return row, fmt.Errorf("get user for event: %w", err)
	}

	switch event.Kind {
	case core.KindExpense:
		e, err := w.storage.GetExpense(ctx, event.ID)
		if err != nil {
			return row, fmt.Errorf("get expense for event: %w", err)
		}
		row = sheets.StatementRow{
			Date:        e.Date,
			Kind:        string(core.KindExpense),
			Description: e.Description,
			Category:    string(e.Category),
			Amount:      core.FormatCents(e.Amount.Cents),
		}
	case core.KindIncome:
		in, err := w.storage.GetIncome(ctx, event.ID)
		if err != nil {
			return row, fmt.Errorf("get income for event: %w", err)
		}
		row = sheets.StatementRow{
			Date:        in.Date,
			Kind:        string(core.KindIncome),
			Description: in.Description,
			Category:    string(in.Category),
			Amount:      core.FormatCents(in.Amount.Cents),
		}
	default:
		return row, fmt.Errorf("unknown record kind %q", event.Kind)
	}

	row.UserName = user.Name
	row.RemoteJID = user.RemoteJID
	return row, nil
}

func (w *ExportWorker) park(row sheets.StatementRow) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pending = append(w.pending, row)
}

// PendingCount reports how many rows await retry.
func (w *ExportWorker) PendingCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.pending)
}

// Flush retries parked rows, at most one batch per call. Rows that
// fail again stay parked.
func (w *ExportWorker) Flush(ctx context.Context) int {
	w.mu.Lock()
	n := len(w.pending)
	if n > w.batchSize {
		n = w.batchSize
	}
	batch := make([]sheets.StatementRow, n)
	copy(batch, w.pending[:n])
	w.pending = w.pending[n:]
	w.mu.Unlock()

	exported := 0
	for _, row := range batch {
		if _, err := w.appender.Append(ctx, row); err != nil {
			slog.WarnContext(ctx, "Retry append failed", "error", err)
			w.park(row)
			continue
		}
		exported++
	}

	if exported > 0 {
		slog.InfoContext(ctx, "Flushed parked statement rows", "exported", exported)
	}
	return exported
}

// RunRetryLoop flushes parked rows until the context is canceled.
func (w *ExportWorker) RunRetryLoop(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.Flush(ctx)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
