package split

import (
	"math"

	"conto/internal/core"
)

// adjustmentThreshold is the smallest absolute drift worth correcting. Below
// this the calculated total already matches the expected total to the cent.
const adjustmentThreshold = 0.001

// Calculate runs the full split pipeline: validate the request, allocate
// subtotals with the strategy matching the split type, distribute tax and
// tip, reconcile rounding drift, and validate the result.
//
// The calculation is pure: it reads only the request and returns either a
// fully reconciled result or a *core.ValidationError. No partial results.
func Calculate(req core.CalculationRequest) (*core.CalculationResult, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}

	allocations := allocatorFor(req.SplitType).allocate(req)

	mode := req.EffectiveTipMode()
	shares := make([]core.ParticipantShare, len(allocations))
	for i, a := range allocations {
		tax := taxShare(a.subtotal, req.Subtotal, req.Tax)
		tip := tipShare(a.subtotal, req.Subtotal, req.Tip, mode, len(allocations))
		shares[i] = core.ParticipantShare{
			ParticipantID: a.participantID,
			Subtotal:      a.subtotal,
			Tax:           tax,
			Tip:           tip,
			Total:         core.Round(a.subtotal + tax + tip),
			Items:         a.items,
		}
	}

	adjustment := core.Round(sumTotals(shares) - req.ExpectedTotal())
	if math.Abs(adjustment) > adjustmentThreshold {
		applyRoundingAdjustment(shares, adjustment)
	}

	if err := ValidateResult(req, sumTotals(shares), adjustment); err != nil {
		return nil, err
	}

	return &core.CalculationResult{
		SplitType:          req.SplitType,
		Subtotal:           req.Subtotal,
		Tax:                req.Tax,
		Tip:                req.Tip,
		GrandTotal:         core.Round(req.ExpectedTotal()),
		Shares:             shares,
		RoundingAdjustment: adjustment,
	}, nil
}

// applyRoundingAdjustment subtracts the accumulated rounding drift from the
// share with the largest total, first occurrence winning ties. The share is
// replaced with a corrected copy; every other share is left untouched.
func applyRoundingAdjustment(shares []core.ParticipantShare, adjustment float64) {
	largest := 0
	for i := 1; i < len(shares); i++ {
		if shares[i].Total > shares[largest].Total {
			largest = i
		}
	}
	corrected := shares[largest]
	corrected.Total = core.Round(corrected.Total - adjustment)
	shares[largest] = corrected
}

func sumTotals(shares []core.ParticipantShare) float64 {
	var sum float64
	for _, s := range shares {
		sum += s.Total
	}
	return sum
}
