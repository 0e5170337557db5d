package web

import (
	"net/http"
	"strconv"
	"strings"

	"zefit/internal/application/orchestrators"
	"zefit/internal/application/projections"
	"zefit/internal/domain/session"
)

func schedulePage(week, sessionID string) string {
	target := "/schedule"
	if week != "" {
		target = withQuery(target, "week", week)
	}
	if sessionID != "" {
		target = withQuery(target, "session", sessionID)
	}
	return target
}

// handleSchedule handles GET /schedule and GET /api/schedule.
// ?week= is any date inside the wanted week; ?session= opens that session's roster.
func handleSchedule(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()
	now := timeNow()

	query := projections.GetWeekScheduleQuery{Now: now}
	if v := q.Get("week"); v != "" {
		ref, err := parseDay("week", v)
		if err != nil {
			respondError(w, r, err, "/schedule")
			return
		}
		query.Reference = ref
	}
	week, err := projections.QueryGetWeekSchedule(ctx, query, projections.GetWeekScheduleDeps{
		SessionStore: stores.SessionStore,
		TrainerStore: stores.TrainerStore,
		Location:     location(),
	})
	if err != nil {
		internalError(w, err)
		return
	}

	var roster *projections.SessionRoster
	if id := q.Get("session"); id != "" {
		sr, err := projections.QueryGetSessionRoster(ctx, projections.GetSessionRosterQuery{SessionID: id, Search: q.Get("member")},
			projections.GetSessionRosterDeps{
				SessionStore: stores.SessionStore,
				RosterStore:  stores.RosterStore,
				MemberStore:  stores.MemberStore,
			})
		if err != nil {
			respondError(w, r, err, schedulePage(q.Get("week"), ""))
			return
		}
		roster = &sr
	}

	if isHTMLRequest(r) {
		renderTemplate(w, r, "schedule.html", map[string]any{
			"Schedule": week,
			"Roster":   roster,
			"Member":   q.Get("member"),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"Schedule": week,
		"Roster":   roster,
	})
}

type sessionRequest struct {
	TrainerID       string `json:"trainer_id"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	Date            string `json:"date"`
	Time            string `json:"time"`
	DurationMinutes string `json:"duration_minutes"`
}

func (s *sessionRequest) fromForm(get func(string) string) {
	s.TrainerID = get("trainer_id")
	s.Title = get("title")
	s.Description = get("description")
	s.Date = get("date")
	s.Time = get("time")
	s.DurationMinutes = get("duration_minutes")
}

// handleSaveSession handles POST /schedule/sessions and POST /schedule/sessions/{id}
func handleSaveSession(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if err := readRequest(r, &req); err != nil {
		respondError(w, r, err, "/schedule")
		return
	}
	back := schedulePage(req.Date, "")

	input := orchestrators.SaveSessionInput{
		SessionID:   r.PathValue("id"),
		TrainerID:   req.TrainerID,
		Title:       req.Title,
		Description: req.Description,
		Clock:       req.Time,
	}
	var err error
	if strings.TrimSpace(req.Date) != "" {
		if input.Date, err = parseDay("date", req.Date); err != nil {
			respondError(w, r, err, back)
			return
		}
	}
	if v := strings.TrimSpace(req.DurationMinutes); v != "" {
		if input.DurationMinutes, err = strconv.Atoi(v); err != nil {
			respondError(w, r, badInput("duration_minutes", err), back)
			return
		}
	}

	s, err := orchestrators.ExecuteSaveSession(r.Context(), input, orchestrators.SaveSessionDeps{
		SessionStore: stores.SessionStore,
		GenerateID:   generateID,
		Location:     location(),
	})
	if err != nil {
		respondError(w, r, err, back)
		return
	}
	status := http.StatusCreated
	if input.SessionID != "" {
		status = http.StatusOK
	}
	respondDone(w, r, schedulePage(s.StartsAt.In(location()).Format("2006-01-02"), ""), status, s)
}

type recurRequest struct {
	Weeks string `json:"weeks"`
}

func (rr *recurRequest) fromForm(get func(string) string) {
	rr.Weeks = get("weeks")
}

// handleRecurSession handles POST /schedule/sessions/{id}/recur
func handleRecurSession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var req recurRequest
	if err := readRequest(r, &req); err != nil {
		respondError(w, r, err, "/schedule")
		return
	}
	weeks, err := strconv.Atoi(strings.TrimSpace(req.Weeks))
	if err != nil {
		respondError(w, r, session.ErrInvalidWeekCount, "/schedule")
		return
	}
	created, err := orchestrators.ExecuteCreateRecurringSessions(r.Context(), orchestrators.CreateRecurringSessionsInput{
		SessionID: id,
		Weeks:     weeks,
	}, orchestrators.CreateRecurringSessionsDeps{
		SessionStore: stores.SessionStore,
		GenerateID:   generateID,
		Location:     location(),
	})
	if err != nil {
		respondError(w, r, err, "/schedule")
		return
	}
	respondDone(w, r, withQuery("/schedule", "msg", strconv.Itoa(len(created))+" sessions created"), http.StatusCreated, created)
}

// sessionWeek returns the start date of session id, or "" when it is unknown.
func sessionWeek(r *http.Request, id string) string {
	s, err := stores.SessionStore.GetByID(r.Context(), id)
	if err != nil {
		return ""
	}
	return s.StartsAt.In(location()).Format("2006-01-02")
}

// sessionBack returns the schedule page of the session's week with its roster open.
func sessionBack(r *http.Request, id string) string {
	week := sessionWeek(r, id)
	if week == "" {
		return "/schedule"
	}
	return schedulePage(week, id)
}

// handleAddSessionMember handles POST /schedule/sessions/{id}/members
func handleAddSessionMember(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var req memberRefRequest
	if err := readRequest(r, &req); err != nil {
		respondError(w, r, err, sessionBack(r, id))
		return
	}
	e, err := orchestrators.ExecuteAddSessionMember(r.Context(), orchestrators.SessionMemberInput{
		SessionID: id,
		MemberID:  req.MemberID,
	}, orchestrators.AddSessionMemberDeps{
		SessionStore: stores.SessionStore,
		RosterStore:  stores.RosterStore,
		GenerateID:   generateID,
	})
	if err != nil {
		respondError(w, r, err, sessionBack(r, id))
		return
	}
	respondDone(w, r, sessionBack(r, id), http.StatusCreated, e)
}

// handleRemoveSessionMember handles POST /schedule/sessions/{id}/members/{memberID}/delete
func handleRemoveSessionMember(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	err := orchestrators.ExecuteRemoveSessionMember(r.Context(), orchestrators.SessionMemberInput{
		SessionID: id,
		MemberID:  r.PathValue("memberID"),
	}, orchestrators.RemoveSessionMemberDeps{RosterStore: stores.RosterStore})
	if err != nil {
		respondError(w, r, err, sessionBack(r, id))
		return
	}
	respondDone(w, r, sessionBack(r, id), http.StatusNoContent, nil)
}

// handleDeleteSession handles POST /schedule/sessions/{id}/delete
func handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	week := sessionWeek(r, id)
	err := orchestrators.ExecuteDeleteSession(r.Context(), orchestrators.DeleteSessionInput{SessionID: id},
		orchestrators.DeleteSessionDeps{Deleter: stores.Deleter})
	if err != nil {
		respondError(w, r, err, schedulePage(week, ""))
		return
	}
	respondDone(w, r, schedulePage(week, ""), http.StatusNoContent, nil)
}
