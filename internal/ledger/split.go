// Package ledger tracks the settlement lifecycle of a calculated split:
// who owes what, who has paid, and whether the collected funds have been
// released back to the bill's creator.
//
// The ledger works exclusively in cents so that share sums are exact; the
// tolerance-based reconciliation belongs to the calculation engine, not here.
package ledger

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"conto/internal/core"
)

const (
	StatusPending   Status = "pending"   // created, no deposits yet
	StatusActive    Status = "active"    // at least one deposit received
	StatusCompleted Status = "completed" // every participant fully paid
	StatusReleased  Status = "released"  // funds handed to the creator
	StatusCancelled Status = "cancelled" // abandoned, refunds may be needed
)

var (
	ErrNoParticipants     = errors.New("at least one participant is required")
	ErrSharesMismatch     = errors.New("participant shares must sum to the total amount")
	ErrNotAcceptingFunds  = errors.New("split is not accepting deposits")
	ErrUnknownParticipant = errors.New("participant not found in split")
	ErrDepositTooLarge    = errors.New("deposit exceeds remaining amount owed")
	ErrDepositNotPositive = errors.New("deposit must be positive")
	ErrNotCompleted       = errors.New("split is not completed")
	ErrAlreadyReleased    = errors.New("cannot cancel a released split")
	ErrEmptyDescription   = errors.New("empty description")
)

type (
	// Status is a split's position in its settlement lifecycle.
	Status string

	// Participant is one debtor on a split. PaidCents may lag ShareCents
	// across several partial deposits.
	Participant struct {
		ID         string
		ShareCents int64
		PaidCents  int64
		Settled    bool
	}

	// Split is a settlement record for one calculated bill.
	Split struct {
		ID             string
		CreatorID      string
		Description    string
		SplitType      core.SplitType
		TotalCents     int64
		CollectedCents int64
		Participants   []Participant
		Status         Status
		CreatedAt      time.Time
	}
)

// Valid reports whether s is one of the known lifecycle statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusActive, StatusCompleted, StatusReleased, StatusCancelled:
		return true
	}
	return false
}

// NewSplit builds a pending settlement record. Shares are exact cents and
// must sum to the total with no tolerance.
func NewSplit(creatorID, description string, participants []Participant) (*Split, error) {
	if len(participants) == 0 {
		return nil, ErrNoParticipants
	}
	if strings.TrimSpace(description) == "" {
		return nil, ErrEmptyDescription
	}

	var total int64
	for _, p := range participants {
		if p.ShareCents < 0 {
			return nil, fmt.Errorf("participant %s: %w", p.ID, core.ErrNegativeCents)
		}
		total += p.ShareCents
	}

	copied := make([]Participant, len(participants))
	for i, p := range participants {
		copied[i] = Participant{ID: p.ID, ShareCents: p.ShareCents}
	}

	return &Split{
		CreatorID:    creatorID,
		Description:  description,
		TotalCents:   total,
		Participants: copied,
		Status:       StatusPending,
		CreatedAt:    time.Now().UTC(),
	}, nil
}

// FromResult converts a reconciled calculation result into a settlement
// record, carrying each share's total over as exact cents.
func FromResult(creatorID, description string, result *core.CalculationResult) (*Split, error) {
	participants := make([]Participant, len(result.Shares))
	var shareSum int64
	for i, share := range result.Shares {
		cents, err := core.CentsFromFloat(share.Total)
		if err != nil {
			return nil, fmt.Errorf("share for %s: %w", share.ParticipantID, err)
		}
		participants[i] = Participant{ID: share.ParticipantID, ShareCents: cents}
		shareSum += cents
	}

	s, err := NewSplit(creatorID, description, participants)
	if err != nil {
		return nil, err
	}
	s.SplitType = result.SplitType

	// The engine guarantees reconciliation to the cent, so the cents total
	// must equal the rounded grand total exactly.
	grandCents, err := core.CentsFromFloat(result.GrandTotal)
	if err != nil {
		return nil, err
	}
	if shareSum != grandCents {
		return nil, ErrSharesMismatch
	}
	return s, nil
}

// Deposit records a (possibly partial) payment from a participant. It
// advances the lifecycle: the first deposit activates the split and the one
// that covers the last open share completes it.
func (s *Split) Deposit(participantID string, cents int64) error {
	if cents <= 0 {
		return ErrDepositNotPositive
	}
	if s.Status != StatusPending && s.Status != StatusActive {
		return ErrNotAcceptingFunds
	}

	idx := -1
	for i := range s.Participants {
		if s.Participants[i].ID == participantID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrUnknownParticipant
	}

	p := &s.Participants[idx]
	remaining := p.ShareCents - p.PaidCents
	if cents > remaining {
		return ErrDepositTooLarge
	}

	p.PaidCents += cents
	p.Settled = p.PaidCents >= p.ShareCents
	s.CollectedCents += cents

	if s.CollectedCents >= s.TotalCents {
		s.Status = StatusCompleted
	} else if s.Status == StatusPending {
		s.Status = StatusActive
	}
	return nil
}

// Release marks the collected funds as handed over to the creator. Only a
// completed split can be released.
func (s *Split) Release() error {
	if s.Status != StatusCompleted {
		return ErrNotCompleted
	}
	s.Status = StatusReleased
	return nil
}

// Cancel abandons the split. Anything but a released split can be cancelled;
// refunding collected deposits is the caller's concern.
func (s *Split) Cancel() error {
	if s.Status == StatusReleased {
		return ErrAlreadyReleased
	}
	s.Status = StatusCancelled
	return nil
}

// Remaining returns the cents a participant still owes, or zero for unknown
// participants.
func (s *Split) Remaining(participantID string) int64 {
	for _, p := range s.Participants {
		if p.ID == participantID {
			return p.ShareCents - p.PaidCents
		}
	}
	return 0
}
