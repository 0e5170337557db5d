package web

import (
	"net/http"

	"zefit/internal/application/orchestrators"
	"zefit/internal/application/projections"
)

func trainerPage(id string) string {
	if id == "" {
		return "/trainers"
	}
	return "/trainers?trainer=" + id
}

// handleTrainers handles GET /trainers and GET /api/trainers.
// ?trainer= opens that trainer's roster; ?q= filters trainers,
// ?candidate= filters promote candidates, ?member= filters roster candidates.
func handleTrainers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	trainers, err := projections.QueryGetTrainers(ctx, projections.GetTrainersQuery{Search: q.Get("q")},
		projections.GetTrainersDeps{TrainerStore: stores.TrainerStore, RosterStore: stores.RosterStore})
	if err != nil {
		internalError(w, err)
		return
	}
	candidates, err := projections.QueryGetPromoteCandidates(ctx, projections.GetPromoteCandidatesQuery{Search: q.Get("candidate")},
		projections.GetPromoteCandidatesDeps{MemberStore: stores.MemberStore, TrainerStore: stores.TrainerStore})
	if err != nil {
		internalError(w, err)
		return
	}

	var roster *projections.TrainerRoster
	if id := q.Get("trainer"); id != "" {
		tr, err := projections.QueryGetTrainerRoster(ctx, projections.GetTrainerRosterQuery{TrainerID: id, Search: q.Get("member")},
			projections.GetTrainerRosterDeps{
				TrainerStore: stores.TrainerStore,
				RosterStore:  stores.RosterStore,
				MemberStore:  stores.MemberStore,
			})
		if err != nil {
			respondError(w, r, err, "/trainers")
			return
		}
		roster = &tr
	}

	if isHTMLRequest(r) {
		renderTemplate(w, r, "trainers.html", map[string]any{
			"Trainers":   trainers,
			"Candidates": candidates,
			"Roster":     roster,
			"Search":     q.Get("q"),
			"Candidate":  q.Get("candidate"),
			"Member":     q.Get("member"),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"Trainers":   trainers,
		"Candidates": candidates,
		"Roster":     roster,
	})
}

type promoteRequest struct {
	MemberID string `json:"member_id"`
	Note     string `json:"note"`
}

func (p *promoteRequest) fromForm(get func(string) string) {
	p.MemberID = get("member_id")
	p.Note = get("note")
}

// handlePromoteTrainer handles POST /trainers
func handlePromoteTrainer(w http.ResponseWriter, r *http.Request) {
	var req promoteRequest
	if err := readRequest(r, &req); err != nil {
		respondError(w, r, err, "/trainers")
		return
	}
	t, err := orchestrators.ExecutePromoteTrainer(r.Context(), orchestrators.PromoteTrainerInput{
		MemberID: req.MemberID,
		Note:     req.Note,
	}, orchestrators.PromoteTrainerDeps{
		TrainerStore: stores.TrainerStore,
		MemberStore:  stores.MemberStore,
		GenerateID:   generateID,
	})
	if err != nil {
		respondError(w, r, err, "/trainers")
		return
	}
	respondDone(w, r, trainerPage(t.ID), http.StatusCreated, t)
}

// handleEnsureDefaultSession handles POST /trainers/{id}/default-session
func handleEnsureDefaultSession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := stores.TrainerStore.GetByID(r.Context(), id); err != nil {
		respondError(w, r, err, "/trainers")
		return
	}
	s, err := orchestrators.ExecuteEnsureDefaultSession(r.Context(), orchestrators.EnsureDefaultSessionInput{TrainerID: id},
		orchestrators.EnsureDefaultSessionDeps{
			SessionStore: stores.SessionStore,
			GenerateID:   generateID,
			Now:          timeNow,
		})
	if err != nil {
		respondError(w, r, err, trainerPage(id))
		return
	}
	respondDone(w, r, trainerPage(id), http.StatusOK, s)
}

type memberRefRequest struct {
	MemberID string `json:"member_id"`
}

func (m *memberRefRequest) fromForm(get func(string) string) {
	m.MemberID = get("member_id")
}

// handleAddTrainerMember handles POST /trainers/{id}/members
func handleAddTrainerMember(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var req memberRefRequest
	if err := readRequest(r, &req); err != nil {
		respondError(w, r, err, trainerPage(id))
		return
	}
	if _, err := stores.TrainerStore.GetByID(r.Context(), id); err != nil {
		respondError(w, r, err, "/trainers")
		return
	}
	e, err := orchestrators.ExecuteAddTrainerMember(r.Context(), orchestrators.AddTrainerMemberInput{
		TrainerID: id,
		MemberID:  req.MemberID,
	}, orchestrators.AddTrainerMemberDeps{
		SessionStore: stores.SessionStore,
		RosterStore:  stores.RosterStore,
		GenerateID:   generateID,
		Now:          timeNow,
	})
	if err != nil {
		respondError(w, r, err, trainerPage(id))
		return
	}
	respondDone(w, r, trainerPage(id), http.StatusCreated, e)
}

// handleRemoveTrainerMember handles POST /trainers/{id}/members/{memberID}/delete
func handleRemoveTrainerMember(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	removed, err := orchestrators.ExecuteRemoveTrainerMember(r.Context(), orchestrators.RemoveTrainerMemberInput{
		TrainerID: id,
		MemberID:  r.PathValue("memberID"),
	}, orchestrators.RemoveTrainerMemberDeps{RosterStore: stores.RosterStore})
	if err != nil {
		respondError(w, r, err, trainerPage(id))
		return
	}
	respondDone(w, r, trainerPage(id), http.StatusOK, map[string]int64{"Removed": removed})
}
