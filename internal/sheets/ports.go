package sheets

import (
	"context"

	"conto/internal/ledger"
)

// Ports for outbound adapters.
type (
	// SplitExporter writes a released split to an external ledger sheet.
	SplitExporter interface {
		Export(ctx context.Context, s *ledger.Split) (rowRef string, err error)
	}
)
