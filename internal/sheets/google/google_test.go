package google

import (
	"context"
	"strings"
	"testing"

	"conto/internal/ledger"
)

func TestNewFromEnvRequiresSpreadsheetID(t *testing.T) {
	t.Setenv("GOOGLE_SPREADSHEET_ID", "")

	if _, err := NewFromEnv(context.Background()); err == nil {
		t.Error("NewFromEnv should fail without GOOGLE_SPREADSHEET_ID")
	}
}

func TestNewFromEnvRequiresCredentials(t *testing.T) {
	t.Setenv("GOOGLE_SPREADSHEET_ID", "sheet-123")
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_JSON", "")
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_FILE", "")
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")

	_, err := NewFromEnv(context.Background())
	if err == nil {
		t.Fatal("NewFromEnv should fail without credentials")
	}
	if !strings.Contains(err.Error(), "service account credentials") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestExportRejectsUnreleasedSplit(t *testing.T) {
	c := &Client{svc: nil, spreadsheetID: "sheet-123", sheetName: "Splits"}

	s, err := ledger.NewSplit("creator", "Dinner", []ledger.Participant{
		{ID: "u1", ShareCents: 5000},
	})
	if err != nil {
		t.Fatalf("NewSplit() error: %v", err)
	}

	if _, err := c.Export(context.Background(), s); err == nil {
		t.Error("Export should fail without an initialized service")
	}
}
