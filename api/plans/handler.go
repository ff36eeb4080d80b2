// Package plans exposes planning over HTTP: plan creation and the plan
// log query endpoint.
package plans

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/uzazi-health/chwplan/core/planner"
)

// NewPlanHandler returns an HTTP handler computing a route plan via
// POST /api/plans. Invalid cohorts (bad capacity, duplicate ids, bad
// coordinates) are reported as 400; nothing partial is returned.
func NewPlanHandler(mgr *planner.PlanManager) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req planner.PlanRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
			return
		}
		res, err := mgr.Plan(r.Context(), req)
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

// NewCompareHandler returns an HTTP handler evaluating a staffing
// scenario via POST /api/plans/compare.
func NewCompareHandler(mgr *planner.PlanManager) http.Handler {
	type compareRequest struct {
		planner.PlanRequest
		Scenario planner.Scenario `json:"scenario"`
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req compareRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
			return
		}
		cmp, err := mgr.Compare(r.Context(), req.PlanRequest, req.Scenario)
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
		if err := json.NewEncoder(w).Encode(cmp); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
}
