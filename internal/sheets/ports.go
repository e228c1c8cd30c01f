package sheets

import (
	"context"
)

// Ports for outbound adapters.
type (
	// ReportWriter replaces the contents of a month's report tab.
	ReportWriter interface {
		WriteReport(ctx context.Context, r Report) error
	}
)
