package plans

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/uzazi-health/chwplan/core/planner"
	"github.com/uzazi-health/chwplan/registry"
)

// NewRunHandler returns an HTTP handler that plans the cohort held by
// the configured source via POST /api/plans/run. The body may carry
// planner options; an empty body runs with defaults. Source failures
// are reported as 502 since the data lives upstream.
func NewRunHandler(mgr *planner.PlanManager, src registry.Source) http.Handler {
	type runRequest struct {
		Options planner.Options `json:"options"`
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req runRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
			return
		}
		ctx := r.Context()
		mothers, err := src.Mothers(ctx)
		if err != nil {
			http.Error(w, "load mothers: "+err.Error(), http.StatusBadGateway)
			return
		}
		chws, err := src.CHWs(ctx)
		if err != nil {
			http.Error(w, "load workers: "+err.Error(), http.StatusBadGateway)
			return
		}
		blocked, err := src.BlockedEdges(ctx)
		if err != nil {
			http.Error(w, "load blocked edges: "+err.Error(), http.StatusBadGateway)
			return
		}
		res, err := mgr.Plan(ctx, planner.PlanRequest{
			Mothers: mothers,
			CHWs:    chws,
			Blocked: blocked,
			Options: req.Options,
		})
		if err != nil {
			var cfgErr *planner.ConfigurationError
			var geoErr *planner.GeometryError
			if errors.As(err, &cfgErr) || errors.As(err, &geoErr) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(res); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
}
