package web

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"zefit/internal/application/orchestrators"
)

// handleSendReminders handles POST /admin/reminders
func handleSendReminders(w http.ResponseWriter, r *http.Request) {
	window := options.ReminderWindowDays
	if v := r.URL.Query().Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			respondError(w, r, badInput("days", fmt.Errorf("%q is not a day count", v)), "/dashboard")
			return
		}
		window = n
	}

	result, err := orchestrators.ExecuteSendExpiryReminders(r.Context(), orchestrators.SendExpiryRemindersInput{
		WindowDays: window,
	}, orchestrators.SendExpiryRemindersDeps{
		PeriodStore: stores.PeriodStore,
		MemberStore: stores.MemberStore,
		Sender:      emailSender,
		Now:         timeNow,
		Location:    location(),
	})
	if err != nil {
		internalError(w, err)
		return
	}
	msg := fmt.Sprintf("%d reminders sent, %d members without email", result.Sent, result.NoEmail)
	respondDone(w, r, withQuery("/dashboard", "msg", msg), http.StatusOK, result)
}

// perfWindow is how far back the perf snapshot looks by default.
const perfWindow = 15 * time.Minute

// handlePerfSnapshot handles GET /api/admin/perf. ?minutes= widens the window.
func handlePerfSnapshot(w http.ResponseWriter, r *http.Request) {
	window := perfWindow
	if v := r.URL.Query().Get("minutes"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			http.Error(w, "minutes must be a positive integer", http.StatusBadRequest)
			return
		}
		window = time.Duration(n) * time.Minute
	}
	writeJSON(w, http.StatusOK, perfCollector.Snapshot(timeNow().Add(-window), 10))
}
