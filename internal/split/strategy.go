// Package split implements the bill split calculation engine.
//
// This file implements the Strategy Pattern for share allocation. Each split
// type (equal, itemized, percentage, custom) has its own strategy that turns
// a validated request into per-participant subtotals; tax, tip and rounding
// reconciliation are handled by the engine on top.

package split

import (
	"conto/internal/core"
)

// allocation is a participant's pre-tax share as produced by a strategy.
// The subtotal is already rounded to cents; items is populated only by the
// itemized strategy.
type allocation struct {
	participantID string
	subtotal      float64
	items         []string
}

// allocator is the strategy interface for splitting a subtotal. Every
// implementation returns one allocation per request participant, in request
// order, each independently rounded to cents.
type allocator interface {
	allocate(req core.CalculationRequest) []allocation
}

func allocatorFor(t core.SplitType) allocator {
	switch t {
	case core.SplitItemized:
		return itemizedAllocator{}
	case core.SplitPercentage:
		return percentageAllocator{}
	case core.SplitCustom:
		return customAllocator{}
	default:
		return equalAllocator{}
	}
}

// equalAllocator divides the subtotal evenly. Each participant's share is
// rounded independently, so the per-participant error is reconciled later.
type equalAllocator struct{}

func (equalAllocator) allocate(req core.CalculationRequest) []allocation {
	perPerson := req.Subtotal / float64(len(req.ParticipantIDs))
	out := make([]allocation, len(req.ParticipantIDs))
	for i, id := range req.ParticipantIDs {
		out[i] = allocation{participantID: id, subtotal: core.Round(perPerson)}
	}
	return out
}

// itemizedAllocator splits every item's price evenly across the participants
// it is assigned to and accumulates the result per participant, recording
// which item names contributed to each share.
type itemizedAllocator struct{}

func (itemizedAllocator) allocate(req core.CalculationRequest) []allocation {
	subtotals := make(map[string]float64, len(req.ParticipantIDs))
	itemNames := make(map[string][]string, len(req.ParticipantIDs))

	for _, item := range req.Items {
		perPerson := item.Price / float64(len(item.ParticipantIDs))
		for _, id := range item.ParticipantIDs {
			subtotals[id] += perPerson
			itemNames[id] = append(itemNames[id], item.Name)
		}
	}

	out := make([]allocation, len(req.ParticipantIDs))
	for i, id := range req.ParticipantIDs {
		out[i] = allocation{
			participantID: id,
			subtotal:      core.Round(subtotals[id]),
			items:         itemNames[id],
		}
	}
	return out
}

// percentageAllocator assigns each participant their validated percentage of
// the subtotal.
type percentageAllocator struct{}

func (percentageAllocator) allocate(req core.CalculationRequest) []allocation {
	percentages := make(map[string]float64, len(req.Percentages))
	for _, entry := range req.Percentages {
		percentages[entry.ParticipantID] = entry.Percentage
	}

	out := make([]allocation, len(req.ParticipantIDs))
	for i, id := range req.ParticipantIDs {
		out[i] = allocation{
			participantID: id,
			subtotal:      core.Round(req.Subtotal * percentages[id] / 100),
		}
	}
	return out
}

// customAllocator takes each participant's validated fixed amount as-is.
type customAllocator struct{}

func (customAllocator) allocate(req core.CalculationRequest) []allocation {
	amounts := make(map[string]float64, len(req.CustomAmounts))
	for _, entry := range req.CustomAmounts {
		amounts[entry.ParticipantID] = entry.Amount
	}

	out := make([]allocation, len(req.ParticipantIDs))
	for i, id := range req.ParticipantIDs {
		out[i] = allocation{participantID: id, subtotal: core.Round(amounts[id])}
	}
	return out
}
