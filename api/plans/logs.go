package plans

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/uzazi-health/chwplan/core/model"
	"github.com/uzazi-health/chwplan/core/planner/planlog"
)

// NewLogHandler returns an HTTP handler exposing plan history via GET /api/plans/logs.
// Requests must include an Authorization header with "Bearer <token>" when token is non-empty.
func NewLogHandler(store planlog.Store, token string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if token != "" {
			auth := r.Header.Get("Authorization")
			if auth != "Bearer "+token {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		q := planlog.Query{}
		if s := r.URL.Query().Get("start"); s != "" {
			if t, err := time.Parse(time.RFC3339, s); err == nil {
				q.Start = t
			}
		}
		if s := r.URL.Query().Get("end"); s != "" {
			if t, err := time.Parse(time.RFC3339, s); err == nil {
				q.End = t
			}
		}
		q.PlanID = r.URL.Query().Get("plan_id")
		q.CHWID = r.URL.Query().Get("chw_id")
		if s := r.URL.Query().Get("risk"); s != "" {
			if v, ok := riskFromString(s); ok {
				q.Risk = v
			}
		}
		records, err := store.Query(r.Context(), q)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(records); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
}

func riskFromString(s string) (model.RiskLevel, bool) {
	switch s {
	case "EMERGENCY":
		return model.RiskEmergency, true
	case "PRIORITY":
		return model.RiskPriority, true
	case "ROUTINE":
		return model.RiskRoutine, true
	default:
		return "", false
	}
}
