package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"conto/internal/core"
	"conto/internal/ledger"
	"conto/internal/storage"
)

func testService(t *testing.T) *SplitService {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "conto.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository() error: %v", err)
	}
	// No AMQP broker in tests; event publishing degrades to a warning.
	svc := NewSplitService(repo, nil)
	t.Cleanup(func() { svc.Close() })
	return svc
}

func equalRequest() core.CalculationRequest {
	return core.CalculationRequest{
		SplitType:      core.SplitEqual,
		Subtotal:       100.00,
		Tax:            10.00,
		Tip:            15.00,
		ParticipantIDs: []string{"u1", "u2"},
	}
}

func TestCalculatePreviewDoesNotPersist(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	result, err := svc.Calculate(ctx, equalRequest())
	if err != nil {
		t.Fatalf("Calculate() error: %v", err)
	}
	if result.GrandTotal != 125.00 {
		t.Errorf("grand total = %v, want 125.00", result.GrandTotal)
	}

	splits, err := svc.ListSplits(ctx, 10)
	if err != nil {
		t.Fatalf("ListSplits() error: %v", err)
	}
	if len(splits) != 0 {
		t.Errorf("preview persisted %d splits, want 0", len(splits))
	}
}

func TestCalculateRejectsInvalidRequest(t *testing.T) {
	svc := testService(t)

	req := equalRequest()
	req.ParticipantIDs = nil

	if _, err := svc.Calculate(context.Background(), req); !core.IsValidationError(err) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestCreateSplitPersistsLedger(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	record, err := svc.CreateSplit(ctx, "creator", "Dinner at Luigi's", equalRequest())
	if err != nil {
		t.Fatalf("CreateSplit() error: %v", err)
	}
	if record.ID == "" {
		t.Fatal("CreateSplit did not assign an ID")
	}
	if record.TotalCents != 12500 {
		t.Errorf("total = %d cents, want 12500", record.TotalCents)
	}

	got, err := svc.GetSplit(ctx, record.ID)
	if err != nil {
		t.Fatalf("GetSplit() error: %v", err)
	}
	if got.Status != ledger.StatusPending {
		t.Errorf("status = %s, want pending", got.Status)
	}
	if len(got.Participants) != 2 || got.Participants[0].ShareCents != 6250 {
		t.Errorf("unexpected participants: %+v", got.Participants)
	}
}

func TestDepositLifecycle(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	record, err := svc.CreateSplit(ctx, "creator", "Dinner", equalRequest())
	if err != nil {
		t.Fatalf("CreateSplit() error: %v", err)
	}

	// Partial deposit activates the split.
	got, err := svc.Deposit(ctx, record.ID, "u1", 2000)
	if err != nil {
		t.Fatalf("Deposit() error: %v", err)
	}
	if got.Status != ledger.StatusActive {
		t.Errorf("status = %s, want active", got.Status)
	}

	// Overpayment is rejected without touching storage.
	if _, err := svc.Deposit(ctx, record.ID, "u1", 10000); !errors.Is(err, ledger.ErrDepositTooLarge) {
		t.Errorf("expected ErrDepositTooLarge, got %v", err)
	}
	persisted, err := svc.GetSplit(ctx, record.ID)
	if err != nil {
		t.Fatalf("GetSplit() error: %v", err)
	}
	if persisted.CollectedCents != 2000 {
		t.Errorf("collected = %d, want 2000 after rejected deposit", persisted.CollectedCents)
	}

	// Paying every share completes the split.
	if _, err := svc.Deposit(ctx, record.ID, "u1", 4250); err != nil {
		t.Fatalf("Deposit() error: %v", err)
	}
	got, err = svc.Deposit(ctx, record.ID, "u2", 6250)
	if err != nil {
		t.Fatalf("Deposit() error: %v", err)
	}
	if got.Status != ledger.StatusCompleted {
		t.Errorf("status = %s, want completed", got.Status)
	}
}

func TestReleaseRequiresCompletion(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	record, err := svc.CreateSplit(ctx, "creator", "Dinner", equalRequest())
	if err != nil {
		t.Fatalf("CreateSplit() error: %v", err)
	}

	if _, err := svc.Release(ctx, record.ID); !errors.Is(err, ledger.ErrNotCompleted) {
		t.Errorf("expected ErrNotCompleted, got %v", err)
	}

	if _, err := svc.Deposit(ctx, record.ID, "u1", 6250); err != nil {
		t.Fatalf("Deposit() error: %v", err)
	}
	if _, err := svc.Deposit(ctx, record.ID, "u2", 6250); err != nil {
		t.Fatalf("Deposit() error: %v", err)
	}

	got, err := svc.Release(ctx, record.ID)
	if err != nil {
		t.Fatalf("Release() error: %v", err)
	}
	if got.Status != ledger.StatusReleased {
		t.Errorf("status = %s, want released", got.Status)
	}

	persisted, err := svc.GetSplit(ctx, record.ID)
	if err != nil {
		t.Fatalf("GetSplit() error: %v", err)
	}
	if persisted.Status != ledger.StatusReleased {
		t.Errorf("persisted status = %s, want released", persisted.Status)
	}
}

func TestCancelBlockedAfterRelease(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	record, err := svc.CreateSplit(ctx, "creator", "Dinner", equalRequest())
	if err != nil {
		t.Fatalf("CreateSplit() error: %v", err)
	}
	if _, err := svc.Deposit(ctx, record.ID, "u1", 6250); err != nil {
		t.Fatalf("Deposit() error: %v", err)
	}
	if _, err := svc.Deposit(ctx, record.ID, "u2", 6250); err != nil {
		t.Fatalf("Deposit() error: %v", err)
	}
	if _, err := svc.Release(ctx, record.ID); err != nil {
		t.Fatalf("Release() error: %v", err)
	}

	if _, err := svc.Cancel(ctx, record.ID); !errors.Is(err, ledger.ErrAlreadyReleased) {
		t.Errorf("expected ErrAlreadyReleased, got %v", err)
	}
}

func TestCancelPendingSplit(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	record, err := svc.CreateSplit(ctx, "creator", "Dinner", equalRequest())
	if err != nil {
		t.Fatalf("CreateSplit() error: %v", err)
	}

	got, err := svc.Cancel(ctx, record.ID)
	if err != nil {
		t.Fatalf("Cancel() error: %v", err)
	}
	if got.Status != ledger.StatusCancelled {
		t.Errorf("status = %s, want cancelled", got.Status)
	}

	if _, err := svc.Deposit(ctx, record.ID, "u1", 100); !errors.Is(err, ledger.ErrNotAcceptingFunds) {
		t.Errorf("expected ErrNotAcceptingFunds, got %v", err)
	}
}

func TestDepositUnknownSplit(t *testing.T) {
	svc := testService(t)

	if _, err := svc.Deposit(context.Background(), "missing", "u1", 100); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSplitServiceCloseWithNilComponents(t *testing.T) {
	svc := &SplitService{}
	if err := svc.Close(); err != nil {
		t.Fatalf("Close should not return error with nil components: %v", err)
	}
}
