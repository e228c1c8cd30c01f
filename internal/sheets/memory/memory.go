package memory

import (
	"context"
	"sync"

	ports "kesho/internal/sheets"
)

// Writer keeps the latest report per tab in memory.
type Writer struct {
	mu      sync.Mutex
	reports map[string]ports.Report
	writes  int
}

var _ ports.ReportWriter = (*Writer)(nil)

func New() *Writer {
	return &Writer{reports: make(map[string]ports.Report)}
}

// WriteReport implements sheets.ReportWriter.
func (w *Writer) WriteReport(_ context.Context, r ports.Report) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.reports[r.TabName()] = r
	w.writes++
	return nil
}

// Report returns the last report written to tab.
func (w *Writer) Report(tab string) (ports.Report, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	r, ok := w.reports[tab]
	return r, ok
}

// Writes counts WriteReport calls.
func (w *Writer) Writes() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.writes
}
