package split

import (
	"math"
	"strings"

	"conto/internal/core"
)

// sumTolerance is the maximum discrepancy, in currency units, allowed between
// a caller-provided aggregate (item prices, percentages, custom amounts) and
// its expected value before the request is rejected.
const sumTolerance = 0.01

// floatSlack absorbs binary representation error in the tolerance checks.
// The tolerance is inclusive, but a drift of exactly one cent computed in
// float64 lands a hair above 0.01 (125.01-125.00 is 0.01000000000000512)
// and must not be rejected.
const floatSlack = 1e-9

// Validate checks every precondition on a calculation request. It returns a
// *core.ValidationError describing the first rule that fails, or nil when the
// request is safe to hand to a strategy.
func Validate(req core.CalculationRequest) error {
	if len(req.ParticipantIDs) == 0 {
		return core.NewValidationError("at least one participant is required")
	}
	seen := make(map[string]bool, len(req.ParticipantIDs))
	for _, id := range req.ParticipantIDs {
		if seen[id] {
			return core.NewValidationError("duplicate participant ID: %s", id)
		}
		seen[id] = true
	}

	if req.Subtotal < 0 {
		return core.NewValidationError("subtotal cannot be negative")
	}
	if req.Tax < 0 {
		return core.NewValidationError("tax cannot be negative")
	}
	if req.Tip < 0 {
		return core.NewValidationError("tip cannot be negative")
	}
	if req.ExpectedTotal() <= 0 {
		return core.NewValidationError("total amount must be greater than zero")
	}

	if err := validatePayloadPresence(req); err != nil {
		return err
	}

	switch req.SplitType {
	case core.SplitEqual:
		return nil
	case core.SplitItemized:
		return validateItems(req)
	case core.SplitPercentage:
		return validatePercentages(req)
	case core.SplitCustom:
		return validateCustomAmounts(req)
	default:
		return core.NewValidationError("invalid split type %q", string(req.SplitType))
	}
}

// validatePayloadPresence enforces strategy exclusivity: exactly the payload
// field matching the declared split type may be set.
func validatePayloadPresence(req core.CalculationRequest) error {
	if req.SplitType != core.SplitItemized && len(req.Items) > 0 {
		return core.NewValidationError("items are only allowed for itemized splits")
	}
	if req.SplitType != core.SplitPercentage && len(req.Percentages) > 0 {
		return core.NewValidationError("percentages are only allowed for percentage splits")
	}
	if req.SplitType != core.SplitCustom && len(req.CustomAmounts) > 0 {
		return core.NewValidationError("custom amounts are only allowed for custom splits")
	}

	switch req.SplitType {
	case core.SplitItemized:
		if len(req.Items) == 0 {
			return core.NewValidationError("itemized split requires at least one item")
		}
	case core.SplitPercentage:
		if len(req.Percentages) == 0 {
			return core.NewValidationError("percentage split requires percentages")
		}
	case core.SplitCustom:
		if len(req.CustomAmounts) == 0 {
			return core.NewValidationError("custom split requires custom amounts")
		}
	}
	return nil
}

func validateItems(req core.CalculationRequest) error {
	members := participantSet(req.ParticipantIDs)

	var priceSum float64
	for i, item := range req.Items {
		if strings.TrimSpace(item.Name) == "" {
			return core.NewValidationError("item %d has an empty name", i+1)
		}
		if item.Price < 0 {
			return core.NewValidationError("item %q has a negative price", item.Name)
		}
		if len(item.ParticipantIDs) == 0 {
			return core.NewValidationError("item %q has no participants assigned", item.Name)
		}
		assigned := make(map[string]bool, len(item.ParticipantIDs))
		for _, id := range item.ParticipantIDs {
			if !members[id] {
				return core.NewValidationError("item %q references unknown participant %s", item.Name, id)
			}
			if assigned[id] {
				return core.NewValidationError("item %q lists participant %s more than once", item.Name, id)
			}
			assigned[id] = true
		}
		priceSum += item.Price
	}

	if math.Abs(priceSum-req.Subtotal) > sumTolerance+floatSlack {
		return core.NewValidationError("item prices sum to %.2f but subtotal is %.2f", priceSum, req.Subtotal)
	}
	return nil
}

func validatePercentages(req core.CalculationRequest) error {
	members := participantSet(req.ParticipantIDs)

	var total float64
	covered := make(map[string]bool, len(req.Percentages))
	for _, entry := range req.Percentages {
		if !members[entry.ParticipantID] {
			return core.NewValidationError("percentage entry references unknown participant %s", entry.ParticipantID)
		}
		if covered[entry.ParticipantID] {
			return core.NewValidationError("participant %s has more than one percentage entry", entry.ParticipantID)
		}
		covered[entry.ParticipantID] = true
		if entry.Percentage < 0 || entry.Percentage > 100 {
			return core.NewValidationError("percentage for participant %s must be between 0 and 100", entry.ParticipantID)
		}
		total += entry.Percentage
	}
	for _, id := range req.ParticipantIDs {
		if !covered[id] {
			return core.NewValidationError("participant %s has no percentage entry", id)
		}
	}
	if math.Abs(total-100) > sumTolerance+floatSlack {
		return core.NewValidationError("percentages sum to %.2f, expected 100", total)
	}
	return nil
}

func validateCustomAmounts(req core.CalculationRequest) error {
	members := participantSet(req.ParticipantIDs)

	var total float64
	covered := make(map[string]bool, len(req.CustomAmounts))
	for _, entry := range req.CustomAmounts {
		if !members[entry.ParticipantID] {
			return core.NewValidationError("custom amount references unknown participant %s", entry.ParticipantID)
		}
		if covered[entry.ParticipantID] {
			return core.NewValidationError("participant %s has more than one custom amount", entry.ParticipantID)
		}
		covered[entry.ParticipantID] = true
		if entry.Amount < 0 {
			return core.NewValidationError("custom amount for participant %s cannot be negative", entry.ParticipantID)
		}
		total += entry.Amount
	}
	for _, id := range req.ParticipantIDs {
		if !covered[id] {
			return core.NewValidationError("participant %s has no custom amount", id)
		}
	}
	if math.Abs(total-req.Subtotal) > sumTolerance+floatSlack {
		return core.NewValidationError("custom amounts sum to %.2f but subtotal is %.2f", total, req.Subtotal)
	}
	return nil
}

// ValidateResult checks the engine's postconditions after reconciliation.
// A failure here signals an internal inconsistency rather than bad input,
// but it is surfaced as a ValidationError all the same.
func ValidateResult(req core.CalculationRequest, calculatedTotal, roundingAdjustment float64) error {
	if math.Abs(calculatedTotal-req.ExpectedTotal()) > sumTolerance+floatSlack {
		return core.NewValidationError(
			"calculated total %.2f does not reconcile with expected total %.2f",
			calculatedTotal, req.ExpectedTotal())
	}
	// One cent of slack per participant.
	if math.Abs(roundingAdjustment) > sumTolerance*float64(len(req.ParticipantIDs))+floatSlack {
		return core.NewValidationError(
			"rounding adjustment %.2f exceeds tolerance for %d participants",
			roundingAdjustment, len(req.ParticipantIDs))
	}
	return nil
}

func participantSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
