package projections

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"zefit/internal/adapters/storage/member"
	"zefit/internal/adapters/storage/membership"
	"zefit/internal/adapters/storage/payment"
	"zefit/internal/adapters/storage/visit"
	domainMembership "zefit/internal/domain/membership"
	"zefit/internal/domain/metrics"
	"zefit/internal/domain/money"
	domainVisit "zefit/internal/domain/visit"
)

// Dashboard metric names, used in logs and in Dashboard.Degraded.
const (
	MetricNewMembers       = "new_member_count"
	MetricAveragePrice     = "average_membership_price"
	MetricBestSeller       = "best_selling_type"
	MetricTotalPayments    = "total_payments"
	MetricDailyPayments    = "daily_payments"
	MetricDailyVisits      = "daily_visits"
	MetricTopVisitors      = "top_visitors"
	MetricExpiringSoon     = "expiring_soon"
	MetricCurrentlyPresent = "currently_present"
)

// GetDashboardQuery carries the inclusive calendar range and the reference instant.
type GetDashboardQuery struct {
	From time.Time
	To   time.Time
	Now  time.Time
}

// Dashboard is the aggregated back-office overview.
type Dashboard struct {
	Range            metrics.Range
	NewMembers       int
	AveragePrice     money.Amount
	BestSeller       metrics.BestSeller
	TotalPayments    money.Amount
	DailyPayments    []metrics.DayTotal
	DailyVisits      []metrics.DayCount
	TopVisitors      []metrics.MemberCount
	ExpiringSoon     []metrics.ExpiringPackage
	CurrentlyPresent int
	Degraded         []string // metrics zeroed because their data failed to load
}

// GetDashboardDeps holds dependencies for GetDashboard.
type GetDashboardDeps struct {
	MemberStore  MemberStore
	TypeStore    MembershipTypeStore
	PeriodStore  PeriodStore
	PaymentStore PaymentStore
	VisitStore   VisitStore
	Location     *time.Location
}

// QueryGetDashboard loads every metric concurrently and aggregates it.
// PRE: From <= To
// POST: Returns a dashboard; each metric whose load failed is zeroed, logged
// and listed in Degraded
// INVARIANT: sum(DailyPayments) == TotalPayments whenever neither is degraded
func QueryGetDashboard(ctx context.Context, query GetDashboardQuery, deps GetDashboardDeps) (Dashboard, error) {
	loc := deps.Location
	if loc == nil {
		loc = time.Local
	}
	r, err := metrics.NewRange(query.From, query.To, loc)
	if err != nil {
		return Dashboard{}, err
	}
	now := query.Now
	if now.IsZero() {
		now = time.Now()
	}

	d := Dashboard{Range: r, BestSeller: metrics.BestSeller{Name: metrics.NoDataLabel}}
	var mu sync.Mutex
	degrade := func(err error, names ...string) {
		mu.Lock()
		defer mu.Unlock()
		for _, name := range names {
			slog.Warn("dashboard_metric_failed", "metric", name, "error", err)
			d.Degraded = append(d.Degraded, name)
		}
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		members, err := deps.MemberStore.List(gctx, member.ListFilter{CreatedFrom: r.Start(), CreatedTo: r.End()})
		if err != nil {
			degrade(err, MetricNewMembers)
			return nil
		}
		n := metrics.CountNewMembers(members, r)
		mu.Lock()
		d.NewMembers = n
		mu.Unlock()
		return nil
	})

	g.Go(func() error {
		periods, err := deps.PeriodStore.List(gctx, membership.PeriodFilter{StartFrom: r.From, StartTo: r.To})
		if err != nil {
			degrade(err, MetricAveragePrice, MetricBestSeller)
			return nil
		}
		avg := metrics.AveragePrice(periods, r)
		types, err := deps.TypeStore.List(gctx)
		if err != nil {
			degrade(err, MetricBestSeller)
			mu.Lock()
			d.AveragePrice = avg
			mu.Unlock()
			return nil
		}
		byID := make(map[string]domainMembership.Type, len(types))
		for _, t := range types {
			byID[t.ID] = t
		}
		best := metrics.BestSelling(periods, r, byID)
		mu.Lock()
		d.AveragePrice = avg
		d.BestSeller = best
		mu.Unlock()
		return nil
	})

	g.Go(func() error {
		payments, err := deps.PaymentStore.List(gctx, payment.ListFilter{From: r.Start(), To: r.End()})
		if err != nil {
			degrade(err, MetricTotalPayments, MetricDailyPayments)
			return nil
		}
		total := metrics.TotalPayments(payments, r)
		daily := metrics.DailyPayments(payments, r)
		mu.Lock()
		d.TotalPayments = total
		d.DailyPayments = daily
		mu.Unlock()
		return nil
	})

	g.Go(func() error {
		visits, err := deps.VisitStore.List(gctx, visit.ListFilter{ArrivedFrom: r.Start(), ArrivedTo: r.End()})
		if err != nil {
			degrade(err, MetricDailyVisits, MetricTopVisitors)
			return nil
		}
		daily := metrics.DailyVisits(visits, r)
		names, err := deps.MemberStore.NamesByID(gctx, visitorIDs(visits))
		if err != nil {
			degrade(err, MetricTopVisitors)
			mu.Lock()
			d.DailyVisits = daily
			mu.Unlock()
			return nil
		}
		top := metrics.TopVisitors(visits, r, names, metrics.TopVisitorsLimit)
		mu.Lock()
		d.DailyVisits = daily
		d.TopVisitors = top
		mu.Unlock()
		return nil
	})

	g.Go(func() error {
		periods, err := deps.PeriodStore.List(gctx, membership.PeriodFilter{
			Status:  domainMembership.StatusActive,
			EndFrom: r.To,
			EndTo:   r.To.AddDate(0, 0, metrics.ExpiringWindow),
		})
		if err != nil {
			degrade(err, MetricExpiringSoon)
			return nil
		}
		ids := make([]string, 0, len(periods))
		for _, p := range periods {
			ids = append(ids, p.MemberID)
		}
		names, err := deps.MemberStore.NamesByID(gctx, ids)
		if err != nil {
			degrade(err, MetricExpiringSoon)
			return nil
		}
		expiring := metrics.ExpiringSoon(periods, r, names)
		mu.Lock()
		d.ExpiringSoon = expiring
		mu.Unlock()
		return nil
	})

	g.Go(func() error {
		visits, err := deps.VisitStore.List(gctx, visit.ListFilter{
			ArrivedFrom: now.Add(-domainVisit.PresenceWindow),
			ArrivedTo:   now,
			OpenOnly:    true,
		})
		if err != nil {
			degrade(err, MetricCurrentlyPresent)
			return nil
		}
		n := metrics.CurrentlyPresent(visits, now)
		mu.Lock()
		d.CurrentlyPresent = n
		mu.Unlock()
		return nil
	})

	// Loaders report failures through degrade and never return an error.
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return Dashboard{}, err
	}
	sort.Strings(d.Degraded)
	return d, nil
}

func visitorIDs(visits []domainVisit.Visit) []string {
	seen := make(map[string]struct{}, len(visits))
	ids := make([]string, 0, len(visits))
	for _, v := range visits {
		if _, ok := seen[v.MemberID]; ok {
			continue
		}
		seen[v.MemberID] = struct{}{}
		ids = append(ids, v.MemberID)
	}
	return ids
}
