package api

import (
	"context"
	"net/http"

	"github.com/okian/courtside/internal/domain/types"
)

// PlayerDependencies defines the interface for player queries.
type PlayerDependencies interface {
	TopPlayers(ctx context.Context, n int) ([]Entry, error)
	Player(ctx context.Context, id string) (types.Player, int, error)
}

// PlayersHandler serves the player board and profiles.
type PlayersHandler struct {
	deps     PlayerDependencies
	maxLimit int
}

// NewPlayersHandler creates a new players handler.
func NewPlayersHandler(deps PlayerDependencies, maxLimit int) *PlayersHandler {
	return &PlayersHandler{deps: deps, maxLimit: maxLimit}
}

type playerResponse struct {
	Rank   *int         `json:"rank"`
	Player types.Player `json:"player"`
}

// HandleList handles GET /players?limit=N.
func (h *PlayersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	n, err := parseLimit(r, h.maxLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	entries, err := h.deps.TopPlayers(r.Context(), n)
	if err != nil {
		writeLookupError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// HandleGet handles GET /players/{id}.
func (h *PlayersHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	p, rank, err := h.deps.Player(r.Context(), id)
	if err != nil {
		writeLookupError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, playerResponse{Rank: rankPtr(rank), Player: p})
}
