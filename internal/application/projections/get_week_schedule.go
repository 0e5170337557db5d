package projections

import (
	"context"
	"time"

	"zefit/internal/adapters/storage/member"
	"zefit/internal/adapters/storage/session"
	domainMember "zefit/internal/domain/member"
	domainSession "zefit/internal/domain/session"
	domainTrainer "zefit/internal/domain/trainer"
)

// SessionFormDefaults pre-fills the new-session form.
type SessionFormDefaults struct {
	Date            time.Time
	Clock           string
	DurationMinutes int
}

// WeekSchedule is the weekly scheduler view.
type WeekSchedule struct {
	Week     domainSession.Week
	Days     []domainSession.DayBucket // always seven, Monday first
	Trainers []domainTrainer.Trainer
	Defaults SessionFormDefaults
}

// GetWeekScheduleQuery carries query parameters.
type GetWeekScheduleQuery struct {
	Reference time.Time // any instant inside the wanted week
	Now       time.Time
}

// GetWeekScheduleDeps holds dependencies for GetWeekSchedule.
type GetWeekScheduleDeps struct {
	SessionStore SessionStore
	TrainerStore TrainerStore
	Location     *time.Location
}

// QueryGetWeekSchedule buckets the sessions of the week containing Reference.
// PRE: none
// POST: Days has exactly seven entries; empty days are present with no sessions;
// Defaults.Date is today when today lies in the week, otherwise Monday
func QueryGetWeekSchedule(ctx context.Context, query GetWeekScheduleQuery, deps GetWeekScheduleDeps) (WeekSchedule, error) {
	loc := deps.Location
	if loc == nil {
		loc = time.Local
	}
	now := query.Now
	if now.IsZero() {
		now = time.Now()
	}
	ref := query.Reference
	if ref.IsZero() {
		ref = now
	}
	week := domainSession.WeekOf(ref.In(loc))

	sessions, err := deps.SessionStore.List(ctx, session.ListFilter{From: week.Start, To: week.End()})
	if err != nil {
		return WeekSchedule{}, err
	}
	trainers, err := deps.TrainerStore.List(ctx)
	if err != nil {
		return WeekSchedule{}, err
	}
	return WeekSchedule{
		Week:     week,
		Days:     week.Bucket(sessions),
		Trainers: trainers,
		Defaults: SessionFormDefaults{
			Date:            week.DefaultFormDate(now),
			Clock:           domainSession.DefaultStartClock,
			DurationMinutes: domainSession.DefaultDurationMinutes,
		},
	}, nil
}

// SessionRoster is the roster pane of one session.
type SessionRoster struct {
	Session    domainSession.Session
	Entries    []domainSession.RosterEntry
	Candidates []domainMember.Member // active members not enrolled yet
}

// GetSessionRosterQuery carries query parameters.
type GetSessionRosterQuery struct {
	SessionID string
	Search    string // filters Candidates by name
}

// GetSessionRosterDeps holds dependencies for GetSessionRoster.
type GetSessionRosterDeps struct {
	SessionStore SessionStore
	RosterStore  RosterStore
	MemberStore  MemberStore
}

// QueryGetSessionRoster returns a session's roster and its enrollable members.
// PRE: SessionID is non-empty
// POST: Candidates exclude enrolled members and are ordered by name
func QueryGetSessionRoster(ctx context.Context, query GetSessionRosterQuery, deps GetSessionRosterDeps) (SessionRoster, error) {
	s, err := deps.SessionStore.GetByID(ctx, query.SessionID)
	if err != nil {
		return SessionRoster{}, err
	}
	entries, err := deps.RosterStore.ListBySession(ctx, s.ID)
	if err != nil {
		return SessionRoster{}, err
	}
	enrolled := make(map[string]bool, len(entries))
	for _, e := range entries {
		enrolled[e.MemberID] = true
	}
	members, err := deps.MemberStore.List(ctx, member.ListFilter{Status: domainMember.StatusActive})
	if err != nil {
		return SessionRoster{}, err
	}
	out := SessionRoster{Session: s, Entries: entries}
	for _, m := range members {
		if enrolled[m.ID] || !domainMember.MatchesQuery(m.FullName, query.Search) {
			continue
		}
		out.Candidates = append(out.Candidates, m)
	}
	sortMembersByName(out.Candidates)
	return out, nil
}
