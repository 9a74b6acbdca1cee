package memory

import (
	"context"
	"testing"

	"conto/internal/ledger"
)

func releasedSplit(t *testing.T) *ledger.Split {
	t.Helper()
	s, err := ledger.NewSplit("creator", "Dinner", []ledger.Participant{
		{ID: "u1", ShareCents: 5000},
	})
	if err != nil {
		t.Fatalf("NewSplit() error: %v", err)
	}
	s.ID = "split-1"
	if err := s.Deposit("u1", 5000); err != nil {
		t.Fatalf("Deposit() error: %v", err)
	}
	if err := s.Release(); err != nil {
		t.Fatalf("Release() error: %v", err)
	}
	return s
}

func TestExportReleasedSplit(t *testing.T) {
	store := New()

	ref, err := store.Export(context.Background(), releasedSplit(t))
	if err != nil {
		t.Fatalf("Export() error: %v", err)
	}
	if ref != "mem:1" {
		t.Errorf("ref = %s, want mem:1", ref)
	}
	if got := store.Exported(); len(got) != 1 || got[0].ID != "split-1" {
		t.Errorf("unexpected exported splits: %+v", got)
	}
}

func TestExportRejectsUnreleasedSplit(t *testing.T) {
	store := New()

	s, err := ledger.NewSplit("creator", "Dinner", []ledger.Participant{
		{ID: "u1", ShareCents: 5000},
	})
	if err != nil {
		t.Fatalf("NewSplit() error: %v", err)
	}

	if _, err := store.Export(context.Background(), s); err == nil {
		t.Error("Export should reject a pending split")
	}
	if len(store.Exported()) != 0 {
		t.Error("rejected split must not be recorded")
	}
}
