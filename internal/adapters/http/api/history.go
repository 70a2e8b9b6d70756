package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/okian/snipe/internal/adapters/repository"
)

// HistoryProvider defines the interface for attempt history reads.
type HistoryProvider interface {
	History(ctx context.Context, limit int) ([]Attempt, error)
}

// HistoryHandler handles history requests.
type HistoryHandler struct {
	deps         HistoryProvider
	defaultLimit int
	maxLimit     int
}

// NewHistoryHandler creates a new history handler.
func NewHistoryHandler(deps HistoryProvider, defaultLimit, maxLimit int) *HistoryHandler {
	return &HistoryHandler{
		deps:         deps,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
	}
}

// HandleGetHistory handles GET /history?limit=N requests.
func (h *HistoryHandler) HandleGetHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	n := h.defaultLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		var err error
		n, err = strconv.Atoi(limitStr)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: limit must be a positive integer", ErrBadRequest))
			return
		}
	}
	if n > h.maxLimit {
		writeError(w, http.StatusBadRequest, "limit_exceeded", fmt.Errorf("%w: limit above %d", ErrBadRequest, h.maxLimit))
		return
	}

	attempts, err := h.deps.History(r.Context(), n)
	if err != nil {
		if errors.Is(err, repository.ErrInvalidLimit) {
			writeError(w, http.StatusBadRequest, "bad_request", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	if attempts == nil {
		attempts = []Attempt{}
	}
	writeJSON(w, http.StatusOK, attempts)
}
