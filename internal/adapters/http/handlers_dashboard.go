package web

import (
	"net/http"
	"time"

	"zefit/internal/application/projections"
)

// dashboardRange reads ?from= and ?to=; the default is the current month up to today.
func dashboardRange(r *http.Request, now time.Time) (time.Time, time.Time, error) {
	today := now.In(location())
	from := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, location())
	to := today
	q := r.URL.Query()
	if v := q.Get("from"); v != "" {
		d, err := parseDay("from", v)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		from = d
	}
	if v := q.Get("to"); v != "" {
		d, err := parseDay("to", v)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		to = d
	}
	return from, to, nil
}

// handleDashboard handles GET /dashboard and GET /api/dashboard
func handleDashboard(w http.ResponseWriter, r *http.Request) {
	now := timeNow()
	from, to, err := dashboardRange(r, now)
	if err != nil {
		respondError(w, r, err, "/dashboard")
		return
	}

	dash, err := projections.QueryGetDashboard(r.Context(), projections.GetDashboardQuery{
		From: from,
		To:   to,
		Now:  now,
	}, projections.GetDashboardDeps{
		MemberStore:  stores.MemberStore,
		TypeStore:    stores.TypeStore,
		PeriodStore:  stores.PeriodStore,
		PaymentStore: stores.PaymentStore,
		VisitStore:   stores.VisitStore,
		Location:     location(),
	})
	if err != nil {
		respondError(w, r, err, "/dashboard")
		return
	}

	if isHTMLRequest(r) {
		renderTemplate(w, r, "dashboard.html", map[string]any{
			"Dashboard": dash,
			"From":      from,
			"To":        to,
		})
		return
	}
	writeJSON(w, http.StatusOK, dash)
}
