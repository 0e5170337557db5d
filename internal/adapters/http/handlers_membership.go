package web

import (
	"net/http"
	"strconv"
	"strings"

	"zefit/internal/application/orchestrators"
	"zefit/internal/domain/money"
	"zefit/internal/domain/payment"
)

// handleMembershipTypes handles GET /membership-types
func handleMembershipTypes(w http.ResponseWriter, r *http.Request) {
	types, err := stores.TypeStore.List(r.Context())
	if err != nil {
		internalError(w, err)
		return
	}
	if isHTMLRequest(r) {
		renderTemplate(w, r, "membership_types.html", map[string]any{"Types": types})
		return
	}
	writeJSON(w, http.StatusOK, types)
}

type membershipTypeRequest struct {
	Name         string `json:"name"`
	DurationDays string `json:"duration_days"`
	DefaultPrice string `json:"default_price"`
}

func (m *membershipTypeRequest) fromForm(get func(string) string) {
	m.Name = get("name")
	m.DurationDays = get("duration_days")
	m.DefaultPrice = get("default_price")
}

// handleCreateMembershipType handles POST /membership-types
func handleCreateMembershipType(w http.ResponseWriter, r *http.Request) {
	const back = "/membership-types"
	var req membershipTypeRequest
	if err := readRequest(r, &req); err != nil {
		respondError(w, r, err, back)
		return
	}
	days := 0
	if v := strings.TrimSpace(req.DurationDays); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			respondError(w, r, badInput("duration_days", err), back)
			return
		}
		days = n
	}
	price, err := money.Parse(req.DefaultPrice)
	if err != nil {
		respondError(w, r, err, back)
		return
	}

	t, err := orchestrators.ExecuteCreateMembershipType(r.Context(), orchestrators.CreateMembershipTypeInput{
		Name:         req.Name,
		DurationDays: days,
		DefaultPrice: price,
	}, orchestrators.CreateMembershipTypeDeps{
		TypeStore:  stores.TypeStore,
		GenerateID: generateID,
	})
	if err != nil {
		respondError(w, r, err, back)
		return
	}
	respondDone(w, r, back, http.StatusCreated, t)
}

type packageRequest struct {
	TypeID    string `json:"type_id"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Price     string `json:"price"`
}

func (p *packageRequest) fromForm(get func(string) string) {
	p.TypeID = get("type_id")
	p.StartDate = get("start_date")
	p.EndDate = get("end_date")
	p.Price = get("price")
}

// handleAddPackage handles POST /clients/{id}/packages
func handleAddPackage(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	back := clientPage(id)
	var req packageRequest
	if err := readRequest(r, &req); err != nil {
		respondError(w, r, err, back)
		return
	}

	input := orchestrators.AddPackageInput{MemberID: id, TypeID: strings.TrimSpace(req.TypeID)}
	var err error
	if strings.TrimSpace(req.StartDate) != "" {
		if input.StartDate, err = parseDay("start_date", req.StartDate); err != nil {
			respondError(w, r, err, back)
			return
		}
	}
	if input.EndDate, err = parseOptionalDay("end_date", req.EndDate); err != nil {
		respondError(w, r, err, back)
		return
	}
	if input.Price, err = parseOptionalAmount(req.Price); err != nil {
		respondError(w, r, err, back)
		return
	}

	p, err := orchestrators.ExecuteAddPackage(r.Context(), input, orchestrators.AddPackageDeps{
		TypeStore:     stores.TypeStore,
		PeriodStore:   stores.PeriodStore,
		GenerateID:    generateID,
		RejectOverlap: options.RejectOverlap,
	})
	if err != nil {
		respondError(w, r, err, back)
		return
	}
	respondDone(w, r, back, http.StatusCreated, p)
}

type paymentRequest struct {
	PeriodID string `json:"period_id"`
	Amount   string `json:"amount"`
	Date     string `json:"date"`
	Method   string `json:"method"`
}

func (p *paymentRequest) fromForm(get func(string) string) {
	p.PeriodID = get("period_id")
	p.Amount = get("amount")
	p.Date = get("date")
	p.Method = get("method")
}

// handleAddPayment handles POST /clients/{id}/payments
func handleAddPayment(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	back := clientPage(id)
	var req paymentRequest
	if err := readRequest(r, &req); err != nil {
		respondError(w, r, err, back)
		return
	}

	input := orchestrators.AddPaymentInput{
		MemberID: id,
		PeriodID: strings.TrimSpace(req.PeriodID),
		Method:   req.Method,
	}
	if input.Method == "" {
		input.Method = payment.MethodCash
	}
	var err error
	if input.Amount, err = parseOptionalAmount(req.Amount); err != nil {
		respondError(w, r, err, back)
		return
	}
	if day, err := parseOptionalDay("date", req.Date); err != nil {
		respondError(w, r, err, back)
		return
	} else if day != nil {
		input.Date = *day
	}

	p, err := orchestrators.ExecuteAddPayment(r.Context(), input, orchestrators.AddPaymentDeps{
		PeriodStore:  stores.PeriodStore,
		PaymentStore: stores.PaymentStore,
		GenerateID:   generateID,
		Now:          timeNow,
		Location:     location(),
	})
	if err != nil {
		respondError(w, r, err, back)
		return
	}
	respondDone(w, r, back, http.StatusCreated, p)
}
