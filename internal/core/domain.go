package core

import (
	"errors"
	"fmt"
)

const (
	SplitEqual      SplitType = "equal"
	SplitItemized   SplitType = "itemized"
	SplitPercentage SplitType = "percentage"
	SplitCustom     SplitType = "custom"
)

const (
	TipEqual        TipMode = "equal"
	TipProportional TipMode = "proportional"
)

type (
	// SplitType selects the allocation strategy for a calculation.
	SplitType string

	// TipMode selects how the tip is distributed among participants.
	TipMode string

	// Item is a single line on an itemized bill, shared equally by the
	// participants it is assigned to.
	Item struct {
		Name           string
		Price          float64
		ParticipantIDs []string
	}

	// PercentageEntry assigns a participant their percentage of the subtotal.
	PercentageEntry struct {
		ParticipantID string
		Percentage    float64
	}

	// CustomAmount assigns a participant a fixed share of the subtotal.
	CustomAmount struct {
		ParticipantID string
		Amount        float64
	}

	// CalculationRequest is the input to the split engine. Exactly one of
	// Items, Percentages or CustomAmounts must be set, matching SplitType.
	CalculationRequest struct {
		SplitType      SplitType
		Subtotal       float64
		Tax            float64
		Tip            float64
		TipMode        TipMode // empty means strategy default
		ParticipantIDs []string
		Items          []Item
		Percentages    []PercentageEntry
		CustomAmounts  []CustomAmount
	}

	// ParticipantShare is one participant's allocated portion of the bill.
	// All monetary fields are rounded to two decimals.
	ParticipantShare struct {
		ParticipantID string
		Subtotal      float64
		Tax           float64
		Tip           float64
		Total         float64
		Items         []string // item names, itemized splits only
	}

	// CalculationResult is the reconciled output of the split engine.
	CalculationResult struct {
		SplitType          SplitType
		Subtotal           float64
		Tax                float64
		Tip                float64
		GrandTotal         float64
		Shares             []ParticipantShare
		RoundingAdjustment float64
	}
)

// ValidationError reports a request or result that violates a split rule.
// The reason is meant to be surfaced to the caller verbatim.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// NewValidationError builds a ValidationError with a formatted reason.
func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// IsValidationError reports whether err is (or wraps) a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// EffectiveTipMode resolves the tip distribution mode, applying the strategy
// default when the caller did not specify one: equal for equal splits,
// proportional for everything else.
func (r CalculationRequest) EffectiveTipMode() TipMode {
	if r.TipMode != "" {
		return r.TipMode
	}
	if r.SplitType == SplitEqual {
		return TipEqual
	}
	return TipProportional
}

// ExpectedTotal is the unrounded sum the shares must reconcile against.
func (r CalculationRequest) ExpectedTotal() float64 {
	return r.Subtotal + r.Tax + r.Tip
}

// ParseSplitType validates a wire-level split type string.
func ParseSplitType(s string) (SplitType, error) {
	switch SplitType(s) {
	case SplitEqual, SplitItemized, SplitPercentage, SplitCustom:
		return SplitType(s), nil
	}
	return "", NewValidationError("invalid split type %q", s)
}

// ParseTipMode validates a wire-level tip mode string. Empty is allowed and
// means "use the strategy default".
func ParseTipMode(s string) (TipMode, error) {
	switch TipMode(s) {
	case "", TipEqual, TipProportional:
		return TipMode(s), nil
	}
	return "", NewValidationError("invalid tip distribution %q", s)
}
