package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"conto/internal/core"
	"conto/internal/ledger"
	"conto/internal/storage"
)

const defaultListLimit = 50

// ShareView is one participant's allocation in a calculation response.
type ShareView struct {
	ParticipantID string   `json:"participant_id"`
	Subtotal      float64  `json:"subtotal"`
	Tax           float64  `json:"tax"`
	Tip           float64  `json:"tip"`
	Total         float64  `json:"total"`
	Items         []string `json:"items,omitempty"`
}

// ResultView is the JSON shape of a calculation result.
type ResultView struct {
	SplitType          string      `json:"split_type"`
	Subtotal           float64     `json:"subtotal"`
	Tax                float64     `json:"tax"`
	Tip                float64     `json:"tip"`
	GrandTotal         float64     `json:"grand_total"`
	Shares             []ShareView `json:"shares"`
	RoundingAdjustment float64     `json:"rounding_adjustment"`
}

// ParticipantView is one debtor's settlement state.
type ParticipantView struct {
	ID         string `json:"id"`
	ShareCents int64  `json:"share_cents"`
	PaidCents  int64  `json:"paid_cents"`
	Settled    bool   `json:"settled"`
}

// SplitView is the JSON shape of a settlement record.
type SplitView struct {
	ID             string            `json:"id"`
	CreatorID      string            `json:"creator_id"`
	Description    string            `json:"description"`
	SplitType      string            `json:"split_type"`
	TotalCents     int64             `json:"total_cents"`
	CollectedCents int64             `json:"collected_cents"`
	Status         string            `json:"status"`
	Participants   []ParticipantView `json:"participants,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
}

func resultView(result *core.CalculationResult) ResultView {
	view := ResultView{
		SplitType:          string(result.SplitType),
		Subtotal:           result.Subtotal,
		Tax:                result.Tax,
		Tip:                result.Tip,
		GrandTotal:         result.GrandTotal,
		RoundingAdjustment: result.RoundingAdjustment,
	}
	for _, share := range result.Shares {
		view.Shares = append(view.Shares, ShareView{
			ParticipantID: share.ParticipantID,
			Subtotal:      share.Subtotal,
			Tax:           share.Tax,
			Tip:           share.Tip,
			Total:         share.Total,
			Items:         share.Items,
		})
	}
	return view
}

func splitView(s *ledger.Split) SplitView {
	view := SplitView{
		ID:             s.ID,
		CreatorID:      s.CreatorID,
		Description:    s.Description,
		SplitType:      string(s.SplitType),
		TotalCents:     s.TotalCents,
		CollectedCents: s.CollectedCents,
		Status:         string(s.Status),
		CreatedAt:      s.CreatedAt,
	}
	for _, p := range s.Participants {
		view.Participants = append(view.Participants, ParticipantView{
			ID:         p.ID,
			ShareCents: p.ShareCents,
			PaidCents:  p.PaidCents,
			Settled:    p.Settled,
		})
	}
	return view
}

// writeDomainError maps domain failures to HTTP status codes: validation
// failures are 422, missing splits 404, lifecycle violations 409.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case core.IsValidationError(err):
		UnprocessableEntityError(err.Error()).Write(w)
	case errors.Is(err, storage.ErrNotFound):
		NotFoundError("split not found").Write(w)
	case errors.Is(err, ledger.ErrUnknownParticipant),
		errors.Is(err, ledger.ErrDepositNotPositive),
		errors.Is(err, ledger.ErrDepositTooLarge):
		UnprocessableEntityError(err.Error()).Write(w)
	case errors.Is(err, ledger.ErrNotAcceptingFunds),
		errors.Is(err, ledger.ErrNotCompleted),
		errors.Is(err, ledger.ErrAlreadyReleased):
		ConflictError(err.Error()).Write(w)
	default:
		slog.ErrorContext(r.Context(), "Request failed", "error", err, "path", r.URL.Path)
		InternalServerError("internal error").Write(w)
	}
}

// handleCalculate previews a calculation without creating a settlement.
func (s *Server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	var body CalculateRequest
	if err := decodeJSON(w, r, &body); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	req, err := body.ToCore()
	if err != nil {
		UnprocessableEntityError(err.Error()).Write(w)
		return
	}

	result, err := s.service.Calculate(r.Context(), req)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	NewJSONResponse().Body(resultView(result)).Write(w)
}

func (s *Server) handleCreateSplit(w http.ResponseWriter, r *http.Request) {
	var body CreateSplitRequest
	if err := decodeJSON(w, r, &body); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	if body.CreatorID == "" {
		UnprocessableEntityError("creator_id is required").Write(w)
		return
	}

	req, err := body.Bill.ToCore()
	if err != nil {
		UnprocessableEntityError(err.Error()).Write(w)
		return
	}

	record, err := s.service.CreateSplit(r.Context(), body.CreatorID, body.Description, req)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	s.listCache.Delete(listCacheKey)
	NewJSONResponse().Status(http.StatusCreated).Body(splitView(record)).Write(w)
}

func (s *Server) handleGetSplit(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if cached, ok := s.splitCache.Get(id); ok {
		NewJSONResponse().Header("X-Cache", "HIT").Body(cached).Write(w)
		return
	}

	record, err := s.service.GetSplit(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	view := splitView(record)
	s.splitCache.Set(id, view)
	NewJSONResponse().Header("X-Cache", "MISS").Body(view).Write(w)
}

func (s *Server) handleListSplits(w http.ResponseWriter, r *http.Request) {
	limit := defaultListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			BadRequestError("limit must be a positive integer").Write(w)
			return
		}
		limit = n
	}

	// Only the default listing is cached; explicit limits bypass it.
	if limit == defaultListLimit {
		if cached, ok := s.listCache.Get(listCacheKey); ok {
			NewJSONResponse().Header("X-Cache", "HIT").Body(cached).Write(w)
			return
		}
	}

	records, err := s.service.ListSplits(r.Context(), limit)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	views := make([]SplitView, 0, len(records))
	for i := range records {
		views = append(views, splitView(&records[i]))
	}
	if limit == defaultListLimit {
		s.listCache.Set(listCacheKey, views)
	}
	NewJSONResponse().Body(views).Write(w)
}

func (s *Server) handleDeposit(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var body DepositRequest
	if err := decodeJSON(w, r, &body); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	record, err := s.service.Deposit(r.Context(), id, body.ParticipantID, body.AmountCents)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	s.invalidateSplit(id)
	NewJSONResponse().Body(splitView(record)).Write(w)
}

func (s *Server) handleRelease(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	record, err := s.service.Release(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	s.invalidateSplit(id)
	NewJSONResponse().Body(splitView(record)).Write(w)
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	record, err := s.service.Cancel(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	s.invalidateSplit(id)
	NewJSONResponse().Body(splitView(record)).Write(w)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
