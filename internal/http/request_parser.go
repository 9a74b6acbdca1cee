// This file implements request DTOs and their conversion to domain types.
// Parsing and validation of the JSON shape happens here; the semantic rules
// (payload exclusivity, sums, memberships) stay in the split engine.
package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"conto/internal/core"
)

const maxBodyBytes = 1 << 20 // 1 MiB

// CalculateRequest is the JSON body for calculation and split creation.
type CalculateRequest struct {
	SplitType      string            `json:"split_type"`
	Subtotal       float64           `json:"subtotal"`
	Tax            float64           `json:"tax"`
	Tip            float64           `json:"tip"`
	TipMode        string            `json:"tip_mode,omitempty"`
	ParticipantIDs []string          `json:"participant_ids"`
	Items          []ItemPayload     `json:"items,omitempty"`
	Percentages    []PercentPayload  `json:"percentages,omitempty"`
	CustomAmounts  []CustomPayload   `json:"custom_amounts,omitempty"`
}

type ItemPayload struct {
	Name           string   `json:"name"`
	Price          float64  `json:"price"`
	ParticipantIDs []string `json:"participant_ids"`
}

type PercentPayload struct {
	ParticipantID string  `json:"participant_id"`
	Percentage    float64 `json:"percentage"`
}

type CustomPayload struct {
	ParticipantID string  `json:"participant_id"`
	Amount        float64 `json:"amount"`
}

// CreateSplitRequest wraps a calculation with the settlement metadata.
type CreateSplitRequest struct {
	CreatorID   string           `json:"creator_id"`
	Description string           `json:"description"`
	Bill        CalculateRequest `json:"bill"`
}

// DepositRequest is the JSON body for posting a payment.
type DepositRequest struct {
	ParticipantID string `json:"participant_id"`
	AmountCents   int64  `json:"amount_cents"`
}

// ToCore converts the wire request into a domain calculation request,
// validating the enum fields on the way.
func (r CalculateRequest) ToCore() (core.CalculationRequest, error) {
	splitType, err := core.ParseSplitType(r.SplitType)
	if err != nil {
		return core.CalculationRequest{}, err
	}
	tipMode, err := core.ParseTipMode(r.TipMode)
	if err != nil {
		return core.CalculationRequest{}, err
	}

	req := core.CalculationRequest{
		SplitType:      splitType,
		Subtotal:       r.Subtotal,
		Tax:            r.Tax,
		Tip:            r.Tip,
		TipMode:        tipMode,
		ParticipantIDs: r.ParticipantIDs,
	}

	for _, item := range r.Items {
		req.Items = append(req.Items, core.Item{
			Name:           item.Name,
			Price:          item.Price,
			ParticipantIDs: item.ParticipantIDs,
		})
	}
	for _, entry := range r.Percentages {
		req.Percentages = append(req.Percentages, core.PercentageEntry{
			ParticipantID: entry.ParticipantID,
			Percentage:    entry.Percentage,
		})
	}
	for _, amount := range r.CustomAmounts {
		req.CustomAmounts = append(req.CustomAmounts, core.CustomAmount{
			ParticipantID: amount.ParticipantID,
			Amount:        amount.Amount,
		})
	}

	return req, nil
}

// decodeJSON reads a JSON body into dst, limiting the body size and
// rejecting trailing garbage.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return fmt.Errorf("request body exceeds %d bytes", maxBytesErr.Limit)
		}
		return fmt.Errorf("malformed JSON body: %w", err)
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return errors.New("request body must contain a single JSON object")
	}
	return nil
}
