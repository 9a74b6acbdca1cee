package split

import (
	"strings"
	"testing"

	"conto/internal/core"
)

func equalRequest(participants ...string) core.CalculationRequest {
	return core.CalculationRequest{
		SplitType:      core.SplitEqual,
		Subtotal:       100,
		ParticipantIDs: participants,
	}
}

func TestValidateParticipants(t *testing.T) {
	tests := []struct {
		name    string
		req     core.CalculationRequest
		wantErr string
	}{
		{
			name:    "no participants",
			req:     equalRequest(),
			wantErr: "at least one participant",
		},
		{
			name:    "duplicate participants",
			req:     equalRequest("u1", "u2", "u1"),
			wantErr: "duplicate participant",
		},
		{
			name: "negative subtotal",
			req: core.CalculationRequest{
				SplitType:      core.SplitEqual,
				Subtotal:       -1,
				ParticipantIDs: []string{"u1"},
			},
			wantErr: "subtotal cannot be negative",
		},
		{
			name: "negative tax",
			req: core.CalculationRequest{
				SplitType:      core.SplitEqual,
				Subtotal:       10,
				Tax:            -0.5,
				ParticipantIDs: []string{"u1"},
			},
			wantErr: "tax cannot be negative",
		},
		{
			name: "negative tip",
			req: core.CalculationRequest{
				SplitType:      core.SplitEqual,
				Subtotal:       10,
				Tip:            -2,
				ParticipantIDs: []string{"u1"},
			},
			wantErr: "tip cannot be negative",
		},
		{
			name: "zero total",
			req: core.CalculationRequest{
				SplitType:      core.SplitEqual,
				ParticipantIDs: []string{"u1", "u2"},
			},
			wantErr: "greater than zero",
		},
		{
			name:    "valid equal request",
			req:     equalRequest("u1", "u2"),
			wantErr: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.req)
			assertValidation(t, err, tt.wantErr)
		})
	}
}

// Strategy exclusivity: a payload belonging to a different strategy must be
// rejected no matter which strategy is declared.
func TestValidatePayloadExclusivity(t *testing.T) {
	items := []core.Item{{Name: "Pizza", Price: 100, ParticipantIDs: []string{"u1"}}}
	percentages := []core.PercentageEntry{
		{ParticipantID: "u1", Percentage: 50},
		{ParticipantID: "u2", Percentage: 50},
	}
	customs := []core.CustomAmount{
		{ParticipantID: "u1", Amount: 60},
		{ParticipantID: "u2", Amount: 40},
	}

	tests := []struct {
		name    string
		mutate  func(*core.CalculationRequest)
		split   core.SplitType
		wantErr string
	}{
		{"equal with items", func(r *core.CalculationRequest) { r.Items = items }, core.SplitEqual, "only allowed for itemized"},
		{"equal with percentages", func(r *core.CalculationRequest) { r.Percentages = percentages }, core.SplitEqual, "only allowed for percentage"},
		{"equal with custom amounts", func(r *core.CalculationRequest) { r.CustomAmounts = customs }, core.SplitEqual, "only allowed for custom"},
		{"itemized with percentages", func(r *core.CalculationRequest) { r.Items = items; r.Percentages = percentages }, core.SplitItemized, "only allowed for percentage"},
		{"percentage with items", func(r *core.CalculationRequest) { r.Percentages = percentages; r.Items = items }, core.SplitPercentage, "only allowed for itemized"},
		{"custom with items", func(r *core.CalculationRequest) { r.CustomAmounts = customs; r.Items = items }, core.SplitCustom, "only allowed for itemized"},
		{"itemized without items", func(r *core.CalculationRequest) {}, core.SplitItemized, "requires at least one item"},
		{"percentage without percentages", func(r *core.CalculationRequest) {}, core.SplitPercentage, "requires percentages"},
		{"custom without amounts", func(r *core.CalculationRequest) {}, core.SplitCustom, "requires custom amounts"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := equalRequest("u1", "u2")
			req.SplitType = tt.split
			tt.mutate(&req)
			assertValidation(t, Validate(req), tt.wantErr)
		})
	}
}

func TestValidateItems(t *testing.T) {
	base := func(items ...core.Item) core.CalculationRequest {
		return core.CalculationRequest{
			SplitType:      core.SplitItemized,
			Subtotal:       50,
			ParticipantIDs: []string{"u1", "u2"},
			Items:          items,
		}
	}

	tests := []struct {
		name    string
		req     core.CalculationRequest
		wantErr string
	}{
		{
			name: "valid items",
			req: base(
				core.Item{Name: "Pasta", Price: 30, ParticipantIDs: []string{"u1"}},
				core.Item{Name: "Wine", Price: 20, ParticipantIDs: []string{"u1", "u2"}},
			),
		},
		{
			name:    "blank item name",
			req:     base(core.Item{Name: "   ", Price: 50, ParticipantIDs: []string{"u1"}}),
			wantErr: "empty name",
		},
		{
			name: "negative price",
			req: base(
				core.Item{Name: "Pasta", Price: 60, ParticipantIDs: []string{"u1"}},
				core.Item{Name: "Refund", Price: -10, ParticipantIDs: []string{"u2"}},
			),
			wantErr: "negative price",
		},
		{
			name:    "item without participants",
			req:     base(core.Item{Name: "Pasta", Price: 50, ParticipantIDs: nil}),
			wantErr: "no participants assigned",
		},
		{
			name:    "item with foreign participant",
			req:     base(core.Item{Name: "Pasta", Price: 50, ParticipantIDs: []string{"u9"}}),
			wantErr: "unknown participant",
		},
		{
			name:    "item with duplicated participant",
			req:     base(core.Item{Name: "Pasta", Price: 50, ParticipantIDs: []string{"u1", "u1"}}),
			wantErr: "more than once",
		},
		{
			name:    "prices do not sum to subtotal",
			req:     base(core.Item{Name: "Pasta", Price: 40, ParticipantIDs: []string{"u1"}}),
			wantErr: "sum to 40.00 but subtotal is 50.00",
		},
		{
			name: "prices within tolerance",
			req: base(
				core.Item{Name: "Pasta", Price: 30.004, ParticipantIDs: []string{"u1"}},
				core.Item{Name: "Wine", Price: 20, ParticipantIDs: []string{"u2"}},
			),
		},
		{
			// 125.01-125 computes to slightly more than 0.01 in float64; the
			// inclusive tolerance must still accept it.
			name: "prices a full cent over the subtotal",
			req: core.CalculationRequest{
				SplitType:      core.SplitItemized,
				Subtotal:       125,
				ParticipantIDs: []string{"u1"},
				Items:          []core.Item{{Name: "Tasting menu", Price: 125.01, ParticipantIDs: []string{"u1"}}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertValidation(t, Validate(tt.req), tt.wantErr)
		})
	}
}

func TestValidatePercentages(t *testing.T) {
	base := func(entries ...core.PercentageEntry) core.CalculationRequest {
		return core.CalculationRequest{
			SplitType:      core.SplitPercentage,
			Subtotal:       100,
			ParticipantIDs: []string{"u1", "u2"},
			Percentages:    entries,
		}
	}

	tests := []struct {
		name    string
		req     core.CalculationRequest
		wantErr string
	}{
		{
			name: "valid percentages",
			req: base(
				core.PercentageEntry{ParticipantID: "u1", Percentage: 60},
				core.PercentageEntry{ParticipantID: "u2", Percentage: 40},
			),
		},
		{
			name: "foreign participant",
			req: base(
				core.PercentageEntry{ParticipantID: "u1", Percentage: 60},
				core.PercentageEntry{ParticipantID: "u9", Percentage: 40},
			),
			wantErr: "unknown participant",
		},
		{
			name: "duplicate entry",
			req: base(
				core.PercentageEntry{ParticipantID: "u1", Percentage: 60},
				core.PercentageEntry{ParticipantID: "u1", Percentage: 40},
			),
			wantErr: "more than one percentage entry",
		},
		{
			name: "missing participant",
			req: base(
				core.PercentageEntry{ParticipantID: "u1", Percentage: 100},
			),
			wantErr: "no percentage entry",
		},
		{
			name: "percentage out of range",
			req: base(
				core.PercentageEntry{ParticipantID: "u1", Percentage: 120},
				core.PercentageEntry{ParticipantID: "u2", Percentage: -20},
			),
			wantErr: "between 0 and 100",
		},
		{
			name: "sum outside tolerance",
			req: base(
				core.PercentageEntry{ParticipantID: "u1", Percentage: 59.5},
				core.PercentageEntry{ParticipantID: "u2", Percentage: 40},
			),
			wantErr: "sum to 99.50",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertValidation(t, Validate(tt.req), tt.wantErr)
		})
	}
}

func TestValidateCustomAmounts(t *testing.T) {
	base := func(entries ...core.CustomAmount) core.CalculationRequest {
		return core.CalculationRequest{
			SplitType:      core.SplitCustom,
			Subtotal:       100,
			ParticipantIDs: []string{"u1", "u2"},
			CustomAmounts:  entries,
		}
	}

	tests := []struct {
		name    string
		req     core.CalculationRequest
		wantErr string
	}{
		{
			name: "valid amounts",
			req: base(
				core.CustomAmount{ParticipantID: "u1", Amount: 70},
				core.CustomAmount{ParticipantID: "u2", Amount: 30},
			),
		},
		{
			name: "amounts do not sum to subtotal",
			req: base(
				core.CustomAmount{ParticipantID: "u1", Amount: 60},
				core.CustomAmount{ParticipantID: "u2", Amount: 30},
			),
			wantErr: "sum to 90.00 but subtotal is 100.00",
		},
		{
			name: "negative amount",
			req: base(
				core.CustomAmount{ParticipantID: "u1", Amount: 110},
				core.CustomAmount{ParticipantID: "u2", Amount: -10},
			),
			wantErr: "cannot be negative",
		},
		{
			name: "missing participant",
			req: base(
				core.CustomAmount{ParticipantID: "u1", Amount: 100},
			),
			wantErr: "no custom amount",
		},
		{
			name: "duplicate entry",
			req: base(
				core.CustomAmount{ParticipantID: "u1", Amount: 50},
				core.CustomAmount{ParticipantID: "u1", Amount: 50},
			),
			wantErr: "more than one custom amount",
		},
		{
			// Exactly one cent of drift sits on the inclusive boundary.
			name: "amounts a full cent over the subtotal",
			req: core.CalculationRequest{
				SplitType:      core.SplitCustom,
				Subtotal:       125,
				ParticipantIDs: []string{"u1"},
				CustomAmounts:  []core.CustomAmount{{ParticipantID: "u1", Amount: 125.01}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertValidation(t, Validate(tt.req), tt.wantErr)
		})
	}
}

func TestValidateResult(t *testing.T) {
	req := core.CalculationRequest{
		SplitType:      core.SplitEqual,
		Subtotal:       100,
		Tax:            10,
		Tip:            15,
		ParticipantIDs: []string{"u1", "u2"},
	}

	if err := ValidateResult(req, 125, 0); err != nil {
		t.Errorf("exact total rejected: %v", err)
	}
	if err := ValidateResult(req, 125.01, 0.01); err != nil {
		t.Errorf("total within tolerance rejected: %v", err)
	}
	if err := ValidateResult(req, 125.5, 0); err == nil {
		t.Error("drifted total accepted")
	}
	// Two participants allow at most 0.02 of adjustment, inclusive.
	if err := ValidateResult(req, 125, 0.02); err != nil {
		t.Errorf("adjustment at the per-participant cap rejected: %v", err)
	}
	if err := ValidateResult(req, 125, 0.05); err == nil {
		t.Error("oversized rounding adjustment accepted")
	}
}

func assertValidation(t *testing.T, err error, wantErr string) {
	t.Helper()
	if wantErr == "" {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		return
	}
	if err == nil {
		t.Fatalf("expected error containing %q, got nil", wantErr)
	}
	if !core.IsValidationError(err) {
		t.Fatalf("expected ValidationError, got %T: %v", err, err)
	}
	if !strings.Contains(err.Error(), wantErr) {
		t.Fatalf("error %q does not contain %q", err.Error(), wantErr)
	}
}
