// Package worker exports released splits to the configured spreadsheet,
// driven by funds.released events with a periodic catch-up sweep for
// messages lost while the worker was down.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"conto/internal/amqp"
	"conto/internal/ledger"
	"conto/internal/metrics"
	"conto/internal/sheets"
	"conto/internal/storage"
)

type ExportWorker struct {
	storage   *storage.SQLiteRepository
	exporter  sheets.SplitExporter
	batchSize int
}

func NewExportWorker(storage *storage.SQLiteRepository, exporter sheets.SplitExporter, batchSize int) *ExportWorker {
	return &ExportWorker{
		storage:   storage,
		exporter:  exporter,
		batchSize: batchSize,
	}
}

// HandleEvent processes a single split event from AMQP. Only funds.released
// triggers an export; other lifecycle events are acknowledged and dropped.
func (w *ExportWorker) HandleEvent(ctx context.Context, msg *amqp.SplitEventMessage) error {
	if msg.Event != amqp.EventFundsReleased {
		slog.DebugContext(ctx, "Ignoring split event", "event", msg.Event, "split_id", msg.SplitID)
		return nil
	}

	split, err := w.storage.GetSplit(ctx, msg.SplitID)
	if err != nil {
		return fmt.Errorf("get split from storage: %w", err)
	}

	return w.exportSplit(ctx, split)
}

// ProcessPendingExports sweeps released splits the event stream missed.
func (w *ExportWorker) ProcessPendingExports(ctx context.Context) error {
	pending, err := w.storage.ListReleasedUnexported(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("list unexported splits: %w", err)
	}

	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending exports", "count", len(pending))

	for i := range pending {
		if err := w.exportSplit(ctx, &pending[i]); err != nil {
			slog.ErrorContext(ctx, "Failed to export split", "split_id", pending[i].ID, "error", err)
			continue
		}
	}

	return nil
}

// StartupCheck sweeps a larger backlog once at worker startup to recover
// from downtime.
func (w *ExportWorker) StartupCheck(ctx context.Context) error {
	pending, err := w.storage.ListReleasedUnexported(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("list unexported splits for startup check: %w", err)
	}

	if len(pending) == 0 {
		slog.InfoContext(ctx, "No unexported splits found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found unexported splits on startup, processing...",
		"count", len(pending))

	exported := 0
	failed := 0
	for i := range pending {
		if err := w.exportSplit(ctx, &pending[i]); err != nil {
			slog.ErrorContext(ctx, "Failed to export split during startup",
				"split_id", pending[i].ID, "error", err)
			failed++
			continue
		}
		exported++
	}

	slog.InfoContext(ctx, "Startup export check completed",
		"total", len(pending),
		"exported", exported,
		"errors", failed)

	return nil
}

// Run consumes split events and sweeps pending exports until the context is
// cancelled. Either loop failing stops the other.
func (w *ExportWorker) Run(ctx context.Context, client *amqp.Client, interval time.Duration) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return client.ConsumeSplitEvents(ctx, func(msg *amqp.SplitEventMessage) error {
			return w.HandleEvent(ctx, msg)
		})
	})

	g.Go(func() error {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
				if err := w.ProcessPendingExports(ctx); err != nil {
					slog.ErrorContext(ctx, "Periodic export sweep failed", "error", err)
				}
			}
		}
	})

	return g.Wait()
}

func (w *ExportWorker) exportSplit(ctx context.Context, split *ledger.Split) error {
	if split.Status != ledger.StatusReleased {
		slog.WarnContext(ctx, "Skipping export of unreleased split",
			"split_id", split.ID, "status", string(split.Status))
		return nil
	}

	ref, err := w.exporter.Export(ctx, split)
	if err != nil {
		return fmt.Errorf("export split: %w", err)
	}

	if err := w.storage.MarkExported(ctx, split.ID); err != nil {
		// The row landed on the sheet; a duplicate on the next sweep is
		// preferable to failing the whole batch.
		slog.ErrorContext(ctx, "Failed to mark split as exported",
			"split_id", split.ID, "error", err)
		return nil
	}

	metrics.SplitsExportedTotal.Inc()
	slog.InfoContext(ctx, "Split exported",
		"split_id", split.ID,
		"sheets_ref", ref,
		"total_cents", split.TotalCents)
	return nil
}
