package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/okian/courtside/internal/domain/types"
)

// TeamDependencies defines the interface for team queries.
type TeamDependencies interface {
	TopTeams(ctx context.Context, n int) ([]Entry, error)
	Team(ctx context.Context, id string) (types.Team, int, error)
}

// TeamsHandler serves the Elo board, team profiles and history charts.
type TeamsHandler struct {
	deps     TeamDependencies
	maxLimit int
}

// NewTeamsHandler creates a new teams handler.
func NewTeamsHandler(deps TeamDependencies, maxLimit int) *TeamsHandler {
	return &TeamsHandler{deps: deps, maxLimit: maxLimit}
}

type teamResponse struct {
	Rank *int       `json:"rank"`
	Team types.Team `json:"team"`
}

// HandleList handles GET /teams?limit=N.
func (h *TeamsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	n, err := parseLimit(r, h.maxLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	entries, err := h.deps.TopTeams(r.Context(), n)
	if err != nil {
		writeLookupError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// HandleGet handles GET /teams/{id}.
func (h *TeamsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	t, rank, err := h.deps.Team(r.Context(), r.PathValue("id"))
	if err != nil {
		writeLookupError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, teamResponse{Rank: rankPtr(rank), Team: t})
}

// HandleChart handles GET /teams/{id}/elo/chart with an HTML line chart of
// the team's rating history.
func (h *TeamsHandler) HandleChart(w http.ResponseWriter, r *http.Request) {
	t, _, err := h.deps.Team(r.Context(), r.PathValue("id"))
	if err != nil {
		writeLookupError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := eloChart(t).Render(w); err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", fmt.Errorf("failed to render chart: %w", err))
	}
}

func eloChart(t types.Team) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: t.Name + " Elo",
			Width:     "900px",
			Height:    "500px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    t.Name,
			Subtitle: fmt.Sprintf("Elo %.1f after %d games", t.Elo.Current, len(t.Games)),
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(false),
		}),
	)

	dates := make([]string, len(t.Elo.History))
	points := make([]opts.LineData, len(t.Elo.History))
	for i, p := range t.Elo.History {
		dates[i] = p.Date
		points[i] = opts.LineData{Value: p.Elo}
	}
	line.SetXAxis(dates).
		AddSeries("Elo", points).
		SetSeriesOptions(
			charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(false)}),
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(false)}),
		)
	return line
}
