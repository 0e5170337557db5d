package projections

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"zefit/internal/adapters/storage/member"
	"zefit/internal/adapters/storage/membership"
	"zefit/internal/adapters/storage/payment"
	"zefit/internal/adapters/storage/session"
	"zefit/internal/adapters/storage/visit"
	domainMember "zefit/internal/domain/member"
	domainMembership "zefit/internal/domain/membership"
	domainPayment "zefit/internal/domain/payment"
	domainSession "zefit/internal/domain/session"
	domainTrainer "zefit/internal/domain/trainer"
	domainVisit "zefit/internal/domain/visit"
)

var (
	testLoc   = time.FixedZone("CET", 3600)
	errDBDown = errors.New("db down")
)

func at(day string, clock string) time.Time {
	t, err := time.ParseInLocation("2006-01-02 15:04", day+" "+clock, testLoc)
	if err != nil {
		panic(err)
	}
	return t
}

func date(day string) time.Time {
	return at(day, "00:00")
}

func datePtr(day string) *time.Time {
	d := date(day)
	return &d
}

// fakeMemberStore filters by status only; metrics do the range filtering.
type fakeMemberStore struct {
	members  []domainMember.Member
	err      error
	namesErr error
}

// GetByID returns a seeded record by ID.
// PRE: id is non-empty
// POST: Returns the seeded record or a not-found error
func (f *fakeMemberStore) GetByID(_ context.Context, id string) (domainMember.Member, error) {
	for _, m := range f.members {
		if m.ID == id {
			return m, nil
		}
	}
	return domainMember.Member{}, fmt.Errorf("member not found: %s", id)
}

// List returns the seeded records matching the filter.
// PRE: filter is valid
// POST: Returns matching records, or the injected error
func (f *fakeMemberStore) List(_ context.Context, filter member.ListFilter) ([]domainMember.Member, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []domainMember.Member
	for _, m := range f.members {
		if filter.Status != "" && m.Status != filter.Status {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

// NamesByID maps the requested IDs to seeded names.
// PRE: ids may be empty
// POST: Returns names for known IDs only
func (f *fakeMemberStore) NamesByID(_ context.Context, ids []string) (map[string]string, error) {
	if f.namesErr != nil {
		return nil, f.namesErr
	}
	names := make(map[string]string)
	for _, id := range ids {
		for _, m := range f.members {
			if m.ID == id {
				names[id] = m.FullName
			}
		}
	}
	return names, nil
}

type fakeTypeStore struct {
	types []domainMembership.Type
	err   error
}

// List returns the seeded records matching the filter.
// PRE: filter is valid
// POST: Returns matching records, or the injected error
func (f *fakeTypeStore) List(_ context.Context) ([]domainMembership.Type, error) {
	return f.types, f.err
}

type fakePeriodStore struct {
	periods []domainMembership.Period
	err     error
}

// List returns the seeded records matching the filter.
// PRE: filter is valid
// POST: Returns matching records, or the injected error
func (f *fakePeriodStore) List(_ context.Context, filter membership.PeriodFilter) ([]domainMembership.Period, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []domainMembership.Period
	for _, p := range f.periods {
		if filter.MemberID != "" && p.MemberID != filter.MemberID {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

type fakePaymentStore struct {
	payments []domainPayment.Payment
	err      error
}

// List returns the seeded records matching the filter.
// PRE: filter is valid
// POST: Returns matching records, or the injected error
func (f *fakePaymentStore) List(_ context.Context, filter payment.ListFilter) ([]domainPayment.Payment, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []domainPayment.Payment
	for _, p := range f.payments {
		if filter.MemberID != "" && p.MemberID != filter.MemberID {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

type fakeVisitStore struct {
	visits []domainVisit.Visit
	err    error
}

// List returns the seeded records matching the filter.
// PRE: filter is valid
// POST: Returns matching records, or the injected error
func (f *fakeVisitStore) List(_ context.Context, filter visit.ListFilter) ([]domainVisit.Visit, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []domainVisit.Visit
	for _, v := range f.visits {
		if filter.MemberID != "" && v.MemberID != filter.MemberID {
			continue
		}
		if filter.OpenOnly && !v.IsOpen() {
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

type fakeTrainerStore struct {
	trainers []domainTrainer.Trainer
}

// GetByID returns a seeded record by ID.
// PRE: id is non-empty
// POST: Returns the seeded record or a not-found error
func (f *fakeTrainerStore) GetByID(_ context.Context, id string) (domainTrainer.Trainer, error) {
	for _, t := range f.trainers {
		if t.ID == id {
			return t, nil
		}
	}
	return domainTrainer.Trainer{}, domainTrainer.ErrNotFound
}

// List returns the seeded records matching the filter.
// PRE: filter is valid
// POST: Returns matching records, or the injected error
func (f *fakeTrainerStore) List(_ context.Context) ([]domainTrainer.Trainer, error) {
	return f.trainers, nil
}

type fakeSessionStore struct {
	sessions []domainSession.Session
}

// GetByID returns a seeded record by ID.
// PRE: id is non-empty
// POST: Returns the seeded record or a not-found error
func (f *fakeSessionStore) GetByID(_ context.Context, id string) (domainSession.Session, error) {
	for _, s := range f.sessions {
		if s.ID == id {
			return s, nil
		}
	}
	return domainSession.Session{}, domainSession.ErrNotFound
}

// List returns the seeded records matching the filter.
// PRE: filter is valid
// POST: Returns matching records, or the injected error
func (f *fakeSessionStore) List(_ context.Context, filter session.ListFilter) ([]domainSession.Session, error) {
	var out []domainSession.Session
	for _, s := range f.sessions {
		if filter.TrainerID != "" && s.TrainerID != filter.TrainerID {
			continue
		}
		if !filter.From.IsZero() && s.StartsAt.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && !s.StartsAt.Before(filter.To) {
			continue
		}
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartsAt.Before(out[j].StartsAt) })
	return out, nil
}

// fakeRosterStore resolves trainers through the sessions it is given.
type fakeRosterStore struct {
	entries  []domainSession.RosterEntry
	sessions []domainSession.Session
}

// ListBySession returns the seeded entries of one session.
// PRE: sessionID is non-empty
// POST: Returns matching entries
func (f *fakeRosterStore) ListBySession(_ context.Context, sessionID string) ([]domainSession.RosterEntry, error) {
	var out []domainSession.RosterEntry
	for _, e := range f.entries {
		if e.SessionID == sessionID {
			out = append(out, e)
		}
	}
	return out, nil
}

// ListByTrainer returns the seeded entries across a trainer's sessions.
// PRE: trainerID is non-empty
// POST: Returns matching entries
func (f *fakeRosterStore) ListByTrainer(_ context.Context, trainerID string) ([]domainSession.RosterEntry, error) {
	owner := make(map[string]string)
	for _, s := range f.sessions {
		owner[s.ID] = s.TrainerID
	}
	var out []domainSession.RosterEntry
	for _, e := range f.entries {
		if owner[e.SessionID] == trainerID {
			out = append(out, e)
		}
	}
	return out, nil
}
