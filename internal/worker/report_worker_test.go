package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"kesho/internal/amqp"
	"kesho/internal/clock"
	"kesho/internal/core"
	"kesho/internal/sheets"
	sheetsmem "kesho/internal/sheets/memory"
	"kesho/internal/store/memory"
)

var reportTime = time.Date(2024, 5, 31, 23, 0, 0, 0, time.UTC)

func saveState(t *testing.T, st *memory.Store, s core.BudgetState) {
	t.Helper()
	doc, err := core.EncodeState(s)
	if err != nil {
		t.Fatalf("EncodeState: %v", err)
	}
	if err := st.Save(context.Background(), core.StateKey, doc); err != nil {
		t.Fatalf("Save: %v", err)
	}
}

func TestHandleLedgerChanged_WritesReport(t *testing.T) {
	st := memory.New()
	writer := sheetsmem.New()
	w := NewReportWorker(st, writer, clock.NewFixed(reportTime))

	state, _, err := core.NewState("2024-05").SetIncome(core.Shillings(40000))
	if err != nil {
		t.Fatalf("SetIncome: %v", err)
	}
	state, _, err = state.AddTransaction("Utilities", core.Transaction{Amount: core.Shillings(1200), Date: core.NewDate(2024, 5, 4)})
	if err != nil {
		t.Fatalf("AddTransaction: %v", err)
	}
	saveState(t, st, state)

	msg := amqp.NewLedgerChanged(4, "add_transaction", "2024-05")
	if err := w.HandleLedgerChanged(context.Background(), msg); err != nil {
		t.Fatalf("HandleLedgerChanged: %v", err)
	}

	report, ok := writer.Report("Report 2024-05")
	if !ok {
		t.Fatal("expected a report for 2024-05")
	}
	if report.Overview.TotalSpent != core.Shillings(1200) {
		t.Errorf("TotalSpent = %v, want 1200", report.Overview.TotalSpent)
	}
	if !report.GeneratedAt.Equal(reportTime) {
		t.Errorf("GeneratedAt = %v", report.GeneratedAt)
	}
	if w.LastRevision() != 4 {
		t.Errorf("LastRevision() = %d, want 4", w.LastRevision())
	}
}

func TestRefresh_NothingPersisted(t *testing.T) {
	writer := sheetsmem.New()
	w := NewReportWorker(memory.New(), writer, nil)

	if err := w.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if writer.Writes() != 0 {
		t.Errorf("Writes() = %d, want 0", writer.Writes())
	}
}

type failingWriter struct{}

func (failingWriter) WriteReport(context.Context, sheets.Report) error {
	return errors.New("quota exceeded")
}

func TestHandleLedgerChanged_WriterErrorRequeues(t *testing.T) {
	st := memory.New()
	saveState(t, st, core.NewState("2024-05"))
	w := NewReportWorker(st, failingWriter{}, clock.NewFixed(reportTime))

	err := w.HandleLedgerChanged(context.Background(), amqp.NewLedgerChanged(1, "set_income", "2024-05"))
	if err == nil {
		t.Fatal("expected error so the message is requeued")
	}
	if w.LastRevision() != 0 {
		t.Errorf("LastRevision() = %d, want 0 after failure", w.LastRevision())
	}
}

func TestRefresh_CorruptLedger(t *testing.T) {
	st := memory.New()
	if err := st.Save(context.Background(), core.StateKey, []byte(`{"income": -1}`)); err != nil {
		t.Fatal(err)
	}
	w := NewReportWorker(st, sheetsmem.New(), nil)

	if err := w.Refresh(context.Background()); !errors.Is(err, core.ErrCorruptState) {
		t.Fatalf("Refresh() error = %v, want ErrCorruptState", err)
	}
}
