package web

import (
	"net/http"
	"net/url"
	"strconv"

	"zefit/internal/application/listutil"
	"zefit/internal/application/orchestrators"
	"zefit/internal/application/projections"
	"zefit/internal/domain/member"
)

func clientPage(id string) string {
	if id == "" {
		return "/clients"
	}
	return "/clients?selected=" + id
}

func clientProfileDeps() projections.GetClientProfileDeps {
	return projections.GetClientProfileDeps{
		MemberStore:  stores.MemberStore,
		TypeStore:    stores.TypeStore,
		PeriodStore:  stores.PeriodStore,
		PaymentStore: stores.PaymentStore,
		VisitStore:   stores.VisitStore,
	}
}

// handleClients handles GET /clients and GET /api/clients.
// The selected member's profile is loaded alongside the directory.
func handleClients(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	query := projections.GetClientDirectoryQuery{
		Name:       q.Get("name"),
		Phone:      q.Get("phone"),
		CardCode:   q.Get("card"),
		Status:     q.Get("status"),
		Barcode:    q.Get("barcode"),
		SelectedID: q.Get("selected"),
	}
	dir, err := projections.QueryGetClientDirectory(ctx, query, projections.GetClientDirectoryDeps{
		MemberStore: stores.MemberStore,
	})
	if err != nil {
		internalError(w, err)
		return
	}

	var profile *projections.ClientProfile
	if dir.SelectedID != "" {
		p, err := projections.QueryGetClientProfile(ctx, projections.GetClientProfileQuery{
			MemberID: dir.SelectedID,
			Now:      timeNow(),
		}, clientProfileDeps())
		switch {
		case err == nil:
			profile = &p
		case errorStatus(err) != http.StatusNotFound:
			internalError(w, err)
			return
		}
	}

	members, page := listutil.Paginate(dir.Members, listutil.ParsePageParams(q))

	if isHTMLRequest(r) {
		renderTemplate(w, r, "clients.html", map[string]any{
			"Query":     query,
			"Directory": dir,
			"Members":   members,
			"Page":      page,
			"PageLinks": pageLinks(q, page),
			"Profile":   profile,
			"Statuses":  []string{member.StatusActive, member.StatusInactive},
			"Today":     timeNow().In(location()),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"Members":    members,
		"Page":       page,
		"SelectedID": dir.SelectedID,
		"Scanned":    dir.Scanned,
		"Profile":    profile,
	})
}

type pageLink struct {
	Number  int
	URL     string
	Current bool
}

// pageLinks builds directory links for each visible page, keeping the filters.
func pageLinks(q url.Values, page listutil.PageInfo) []pageLink {
	if !page.ShowPagination() {
		return nil
	}
	links := make([]pageLink, 0, page.TotalPages)
	for _, n := range page.PageNumbers() {
		v := url.Values{}
		for k, vals := range q {
			v[k] = vals
		}
		v.Set("page", strconv.Itoa(n))
		v.Del("barcode")
		links = append(links, pageLink{Number: n, URL: "/clients?" + v.Encode(), Current: n == page.Page})
	}
	return links
}

// handleClientProfile handles GET /api/clients/{id}
func handleClientProfile(w http.ResponseWriter, r *http.Request) {
	p, err := projections.QueryGetClientProfile(r.Context(), projections.GetClientProfileQuery{
		MemberID: r.PathValue("id"),
		Now:      timeNow(),
	}, clientProfileDeps())
	if err != nil {
		respondError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

type memberRequest struct {
	CardCode string `json:"card_code"`
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	Status   string `json:"status"`
	Note     string `json:"note"`
}

func (m *memberRequest) fromForm(get func(string) string) {
	m.CardCode = get("card_code")
	m.FullName = get("full_name")
	m.Phone = get("phone")
	m.Email = get("email")
	m.Status = get("status")
	m.Note = get("note")
}

// handleRegisterClient handles POST /clients
func handleRegisterClient(w http.ResponseWriter, r *http.Request) {
	var req memberRequest
	if err := readRequest(r, &req); err != nil {
		respondError(w, r, err, "/clients")
		return
	}
	m, err := orchestrators.ExecuteRegisterMember(r.Context(), orchestrators.RegisterMemberInput{
		CardCode: req.CardCode,
		FullName: req.FullName,
		Phone:    req.Phone,
		Email:    req.Email,
		Status:   req.Status,
		Note:     req.Note,
	}, orchestrators.RegisterMemberDeps{
		MemberStore: stores.MemberStore,
		GenerateID:  generateID,
		Now:         timeNow,
	})
	if err != nil {
		respondError(w, r, err, "/clients")
		return
	}
	respondDone(w, r, clientPage(m.ID), http.StatusCreated, m)
}

// handleUpdateClient handles POST /clients/{id}
func handleUpdateClient(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var req memberRequest
	if err := readRequest(r, &req); err != nil {
		respondError(w, r, err, clientPage(id))
		return
	}
	m, err := orchestrators.ExecuteUpdateMember(r.Context(), orchestrators.UpdateMemberInput{
		MemberID: id,
		FullName: req.FullName,
		Phone:    req.Phone,
		Email:    req.Email,
		Note:     req.Note,
	}, orchestrators.UpdateMemberDeps{MemberStore: stores.MemberStore})
	if err != nil {
		respondError(w, r, err, clientPage(id))
		return
	}
	respondDone(w, r, clientPage(id), http.StatusOK, m)
}

// handleDeleteClient handles POST /clients/{id}/delete
func handleDeleteClient(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	err := orchestrators.ExecuteDeleteMember(r.Context(), orchestrators.DeleteMemberInput{MemberID: id},
		orchestrators.DeleteMemberDeps{Deleter: stores.Deleter})
	if err != nil {
		respondError(w, r, err, clientPage(id))
		return
	}
	respondDone(w, r, withQuery("/clients", "msg", "Member deleted"), http.StatusNoContent, nil)
}

// handleCheckIn handles POST /clients/{id}/checkin
func handleCheckIn(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	v, err := orchestrators.ExecuteCheckInMember(r.Context(), orchestrators.CheckInMemberInput{MemberID: id},
		orchestrators.CheckInMemberDeps{
			MemberStore: stores.MemberStore,
			VisitStore:  stores.VisitStore,
			GenerateID:  generateID,
			Now:         timeNow,
		})
	if err != nil {
		respondError(w, r, err, clientPage(id))
		return
	}
	respondDone(w, r, clientPage(id), http.StatusCreated, v)
}

// handleCheckOut handles POST /clients/{id}/checkout
func handleCheckOut(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	v, err := orchestrators.ExecuteCheckOutMember(r.Context(), orchestrators.CheckOutMemberInput{MemberID: id},
		orchestrators.CheckOutMemberDeps{
			VisitStore: stores.VisitStore,
			Now:        timeNow,
		})
	if err != nil {
		respondError(w, r, err, clientPage(id))
		return
	}
	respondDone(w, r, clientPage(id), http.StatusOK, v)
}
