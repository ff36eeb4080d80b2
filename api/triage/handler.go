// Package triage exposes the rule-based assessment over HTTP.
package triage

import (
	"encoding/json"
	"net/http"

	"github.com/uzazi-health/chwplan/core/model"
	"github.com/uzazi-health/chwplan/core/planner"
)

// NewHandler returns an HTTP handler assessing a cohort via POST /api/triage.
// The response carries each mother with her risk tier, flags, SLA and the
// final priority label after overrides.
func NewHandler(mgr *planner.PlanManager) http.Handler {
	type request struct {
		Mothers []model.Mother `json:"mothers"`
	}
	type response struct {
		Triage []model.TriagedMother `json:"triage"`
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
			return
		}
		assessed := mgr.Triage(req.Mothers)
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(response{Triage: assessed}); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
}
