package projections

import (
	"context"
	"time"

	"zefit/internal/adapters/storage/membership"
	"zefit/internal/adapters/storage/payment"
	"zefit/internal/adapters/storage/visit"
	domainMember "zefit/internal/domain/member"
	domainMembership "zefit/internal/domain/membership"
	"zefit/internal/domain/money"
	domainPayment "zefit/internal/domain/payment"
	domainVisit "zefit/internal/domain/visit"
)

// RecentVisitLimit caps the visits shown on a client profile.
const RecentVisitLimit = 10

// GetClientProfileQuery carries query parameters.
type GetClientProfileQuery struct {
	MemberID string
	Now      time.Time
}

// ActivePackage describes the member's current package.
type ActivePackage struct {
	Period       domainMembership.Period
	DaysToExpiry int
	Expired      bool
}

// ClientProfile is everything the profile pane shows for one member.
type ClientProfile struct {
	Member       domainMember.Member
	Periods      []domainMembership.Period // start date descending
	Payments     []domainPayment.Payment   // payment date descending
	TotalPaid    money.Amount
	Active       *ActivePackage // nil when the member has no active package
	Types        []domainMembership.Type
	OpenVisit    *domainVisit.Visit
	RecentVisits []domainVisit.Visit
}

// GetClientProfileDeps holds dependencies for GetClientProfile.
type GetClientProfileDeps struct {
	MemberStore  MemberStore
	TypeStore    MembershipTypeStore
	PeriodStore  PeriodStore
	PaymentStore PaymentStore
	VisitStore   VisitStore
}

// QueryGetClientProfile assembles the profile of one member.
// PRE: MemberID is non-empty
// POST: Active is the first active period with an end date; DaysToExpiry is
// ceil((end - now) / 1 day) and Expired is DaysToExpiry <= 0
func QueryGetClientProfile(ctx context.Context, query GetClientProfileQuery, deps GetClientProfileDeps) (ClientProfile, error) {
	m, err := deps.MemberStore.GetByID(ctx, query.MemberID)
	if err != nil {
		return ClientProfile{}, err
	}
	now := query.Now
	if now.IsZero() {
		now = time.Now()
	}

	periods, err := deps.PeriodStore.List(ctx, membership.PeriodFilter{MemberID: m.ID})
	if err != nil {
		return ClientProfile{}, err
	}
	payments, err := deps.PaymentStore.List(ctx, payment.ListFilter{MemberID: m.ID})
	if err != nil {
		return ClientProfile{}, err
	}
	types, err := deps.TypeStore.List(ctx)
	if err != nil {
		return ClientProfile{}, err
	}
	visits, err := deps.VisitStore.List(ctx, visit.ListFilter{MemberID: m.ID})
	if err != nil {
		return ClientProfile{}, err
	}

	p := ClientProfile{
		Member:    m,
		Periods:   periods,
		Payments:  payments,
		TotalPaid: domainPayment.Total(payments),
		Types:     types,
	}
	if active, ok := domainMembership.ActivePeriod(periods); ok {
		days := active.DaysUntilExpiry(now)
		p.Active = &ActivePackage{Period: active, DaysToExpiry: days, Expired: days <= 0}
	}
	for i := range visits {
		if visits[i].IsOpen() && p.OpenVisit == nil {
			v := visits[i]
			p.OpenVisit = &v
		}
	}
	if len(visits) > RecentVisitLimit {
		visits = visits[:RecentVisitLimit]
	}
	p.RecentVisits = visits
	return p, nil
}
