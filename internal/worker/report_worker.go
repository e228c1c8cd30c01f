package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"kesho/internal/amqp"
	"kesho/internal/clock"
	"kesho/internal/core"
	"kesho/internal/sheets"
	"kesho/internal/store"
)

// ReportWorker mirrors the persisted ledger into the monthly report.
// It reads the store rather than trusting message contents, so replays and
// duplicate deliveries only rewrite the same report.
type ReportWorker struct {
	loader store.StateLoader
	writer sheets.ReportWriter
	clock  clock.Clock

	mu       sync.Mutex
	lastSeen int64
}

func NewReportWorker(loader store.StateLoader, writer sheets.ReportWriter, c clock.Clock) *ReportWorker {
	if c == nil {
		c = clock.System{}
	}
	return &ReportWorker{loader: loader, writer: writer, clock: c}
}

// HandleLedgerChanged processes a single LedgerChanged message from AMQP.
func (w *ReportWorker) HandleLedgerChanged(ctx context.Context, msg *amqp.LedgerChanged) error {
	slog.InfoContext(ctx, "Processing ledger change",
		"revision", msg.Revision,
		"operation", msg.Operation,
		"month", msg.Month)

	if err := w.Refresh(ctx); err != nil {
		return fmt.Errorf("refresh report for revision %d: %w", msg.Revision, err)
	}

	w.mu.Lock()
	w.lastSeen = msg.Revision
	w.mu.Unlock()
	return nil
}

// Refresh rebuilds the report from the current persisted ledger. Nothing is
// written while no ledger has been saved yet.
func (w *ReportWorker) Refresh(ctx context.Context) error {
	doc, err := w.loader.Load(ctx, core.StateKey)
	if errors.Is(err, store.ErrNotFound) {
		slog.InfoContext(ctx, "No ledger persisted yet, skipping report")
		return nil
	}
	if err != nil {
		return fmt.Errorf("load ledger: %w", err)
	}

	state, err := core.DecodeState(doc)
	if err != nil {
		return fmt.Errorf("decode ledger: %w", err)
	}

	report := sheets.NewReport(state.Summarize(), w.clock.Now())
	if err := w.writer.WriteReport(ctx, report); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	slog.InfoContext(ctx, "Report refreshed",
		"tab", report.TabName(),
		"categories", len(report.Overview.Categories),
		"spent_cents", report.Overview.TotalSpent.Cents)
	return nil
}

// LastRevision is the revision of the last message handled successfully.
func (w *ReportWorker) LastRevision() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastSeen
}
