// Package services orchestrates split operations across the calculation
// engine, SQLite and AMQP.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"conto/internal/amqp"
	"conto/internal/core"
	"conto/internal/ledger"
	"conto/internal/metrics"
	"conto/internal/split"
	"conto/internal/storage"
)

type SplitService struct {
	storage    *storage.SQLiteRepository
	amqpClient *amqp.Client
}

func NewSplitService(storage *storage.SQLiteRepository, amqpClient *amqp.Client) *SplitService {
	return &SplitService{
		storage:    storage,
		amqpClient: amqpClient,
	}
}

// Calculate runs the split engine without persisting anything. Useful for
// previewing shares before creating a settlement.
func (s *SplitService) Calculate(ctx context.Context, req core.CalculationRequest) (*core.CalculationResult, error) {
	result, err := split.Calculate(req)
	if err != nil {
		if core.IsValidationError(err) {
			metrics.ValidationFailuresTotal.Inc()
		}
		return nil, err
	}

	metrics.CalculationsTotal.WithLabelValues(string(result.SplitType)).Inc()
	return result, nil
}

// CreateSplit calculates the shares, opens a settlement ledger for them and
// publishes a created event.
func (s *SplitService) CreateSplit(ctx context.Context, creatorID, description string, req core.CalculationRequest) (*ledger.Split, error) {
	result, err := s.Calculate(ctx, req)
	if err != nil {
		return nil, err
	}

	record, err := ledger.FromResult(creatorID, description, result)
	if err != nil {
		return nil, fmt.Errorf("build settlement record: %w", err)
	}

	// Save to SQLite first (fast, reliable)
	if err := s.storage.CreateSplit(ctx, record); err != nil {
		return nil, fmt.Errorf("save split: %w", err)
	}

	metrics.SplitsCreatedTotal.WithLabelValues(string(record.SplitType)).Inc()

	// Publish async event (non-blocking)
	s.publishEvent(ctx, amqp.NewSplitEventMessage(amqp.EventSplitCreated, record.ID))

	return record, nil
}

// Deposit applies a partial or full payment from a participant and persists
// the advanced lifecycle state.
func (s *SplitService) Deposit(ctx context.Context, splitID, participantID string, amountCents int64) (*ledger.Split, error) {
	record, err := s.storage.GetSplit(ctx, splitID)
	if err != nil {
		return nil, fmt.Errorf("load split: %w", err)
	}

	if err := record.Deposit(participantID, amountCents); err != nil {
		return nil, err
	}

	if err := s.storage.SaveDeposit(ctx, record, participantID, amountCents); err != nil {
		return nil, fmt.Errorf("save deposit: %w", err)
	}

	metrics.DepositsTotal.Inc()
	metrics.DepositedCentsTotal.Add(float64(amountCents))

	s.publishEvent(ctx, amqp.NewDepositEventMessage(record.ID, participantID, amountCents))
	if record.Status == ledger.StatusCompleted {
		s.publishEvent(ctx, amqp.NewSplitEventMessage(amqp.EventSplitCompleted, record.ID))
	}

	return record, nil
}

// Release hands the collected funds to the creator. The funds.released event
// is what triggers the spreadsheet export worker.
func (s *SplitService) Release(ctx context.Context, splitID string) (*ledger.Split, error) {
	record, err := s.storage.GetSplit(ctx, splitID)
	if err != nil {
		return nil, fmt.Errorf("load split: %w", err)
	}

	if err := record.Release(); err != nil {
		return nil, err
	}

	if err := s.storage.UpdateStatus(ctx, record.ID, record.Status); err != nil {
		return nil, fmt.Errorf("update status: %w", err)
	}

	metrics.SplitsReleasedTotal.Inc()
	s.publishEvent(ctx, amqp.NewSplitEventMessage(amqp.EventFundsReleased, record.ID))

	return record, nil
}

// Cancel abandons a split that has not been released yet.
func (s *SplitService) Cancel(ctx context.Context, splitID string) (*ledger.Split, error) {
	record, err := s.storage.GetSplit(ctx, splitID)
	if err != nil {
		return nil, fmt.Errorf("load split: %w", err)
	}

	if err := record.Cancel(); err != nil {
		return nil, err
	}

	if err := s.storage.UpdateStatus(ctx, record.ID, record.Status); err != nil {
		return nil, fmt.Errorf("update status: %w", err)
	}

	s.publishEvent(ctx, amqp.NewSplitEventMessage(amqp.EventSplitCancelled, record.ID))

	return record, nil
}

func (s *SplitService) GetSplit(ctx context.Context, splitID string) (*ledger.Split, error) {
	return s.storage.GetSplit(ctx, splitID)
}

func (s *SplitService) ListSplits(ctx context.Context, limit int) ([]ledger.Split, error) {
	return s.storage.ListSplits(ctx, limit)
}

func (s *SplitService) publishEvent(ctx context.Context, msg *amqp.SplitEventMessage) {
	if s.amqpClient == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping event", "event", msg.Event)
		return
	}

	if err := s.amqpClient.PublishSplitEvent(ctx, msg); err != nil {
		// Don't fail the request - the split is saved locally
		slog.ErrorContext(ctx, "Failed to publish split event",
			"event", msg.Event,
			"split_id", msg.SplitID,
			"error", err)
	}
}

// Close closes both storage and AMQP connections.
func (s *SplitService) Close() error {
	var errs []error

	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close split service: %v", errs)
	}

	return nil
}
