package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/okian/courtside/internal/adapters/mq/queue"
	"github.com/okian/courtside/internal/adapters/source"
	"github.com/okian/courtside/pkg/metrics"
)

// IdempotencyHeader carries the client's refresh key.
const IdempotencyHeader = "Idempotency-Key"

// RefreshDependencies defines the interface for submitting refresh jobs.
type RefreshDependencies interface {
	// Enqueue queues a job, filling in id and season. dup reports an id
	// that was already accepted.
	Enqueue(ctx context.Context, job Job) (accepted Job, dup bool, err error)
}

// RefreshHandler handles refresh requests.
type RefreshHandler struct {
	deps    RefreshDependencies
	limiter *rate.Limiter
}

// NewRefreshHandler creates a refresh handler allowing perMinute requests
// with a burst of one. Zero disables limiting.
func NewRefreshHandler(deps RefreshDependencies, perMinute float64) *RefreshHandler {
	h := &RefreshHandler{deps: deps}
	if perMinute > 0 {
		h.limiter = rate.NewLimiter(rate.Limit(perMinute/60), 1)
	}
	return h
}

type refreshRequest struct {
	Season     string `json:"season"`
	SeasonType string `json:"seasonType"`
}

type refreshResponse struct {
	Status     string `json:"status"`
	JobID      string `json:"jobId"`
	Season     string `json:"season"`
	SeasonType string `json:"seasonType"`
	Duplicate  bool   `json:"duplicate"`
}

// HandleRefresh handles POST /refresh. The body is optional.
func (h *RefreshHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %v", ErrBadRequest, err))
		return
	}

	job := Job{
		ID:         strings.TrimSpace(r.Header.Get(IdempotencyHeader)),
		Season:     strings.TrimSpace(req.Season),
		SeasonType: strings.TrimSpace(req.SeasonType),
		Reason:     "api",
		Requested:  time.Now(),
	}

	if err := checkSeason(job.Season, job.SeasonType); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %v", ErrBadRequest, err))
		return
	}

	if h.limiter != nil && !h.limiter.Allow() {
		metrics.RecordRateLimited()
		w.Header().Set("Retry-After", retryAfter(h.limiter))
		writeError(w, http.StatusTooManyRequests, "rate_limited", ErrRateLimited)
		return
	}

	accepted, dup, err := h.deps.Enqueue(r.Context(), job)
	switch {
	case errors.Is(err, queue.ErrFull):
		writeError(w, http.StatusTooManyRequests, "backpressure", ErrBackpressure)
		return
	case err != nil:
		writeError(w, http.StatusServiceUnavailable, "unavailable", err)
		return
	}

	resp := refreshResponse{
		Status:     "accepted",
		JobID:      accepted.ID,
		Season:     accepted.Season,
		SeasonType: accepted.SeasonType,
		Duplicate:  dup,
	}
	if dup {
		resp.Status = "duplicate"
		writeJSON(w, http.StatusOK, resp)
		return
	}
	writeJSON(w, http.StatusAccepted, resp)
}

// checkSeason validates the optional body fields; empty ones fall back to
// the service defaults.
func checkSeason(season, seasonType string) error {
	if season != "" {
		if err := source.CheckSeason(season); err != nil {
			return err
		}
	}
	if seasonType != "" {
		return source.CheckSeasonType(seasonType)
	}
	return nil
}

func retryAfter(l *rate.Limiter) string {
	secs := int(time.Duration(float64(time.Second) / float64(l.Limit())).Seconds())
	return fmt.Sprintf("%d", max(secs, 1))
}
