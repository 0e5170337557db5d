package projections

import (
	"context"
	"sort"

	"zefit/internal/adapters/storage/member"
	domainMember "zefit/internal/domain/member"
	domainSession "zefit/internal/domain/session"
	domainTrainer "zefit/internal/domain/trainer"
)

// TrainerSummary is one row of the trainer list.
type TrainerSummary struct {
	Trainer     domainTrainer.Trainer
	MemberCount int // distinct members across the trainer's sessions
}

// GetTrainersQuery carries query parameters.
type GetTrainersQuery struct {
	Search string // case-insensitive substring of the trainer's name
}

// GetTrainersDeps holds dependencies for GetTrainers.
type GetTrainersDeps struct {
	TrainerStore TrainerStore
	RosterStore  RosterStore
}

// QueryGetTrainers lists trainers with their roster sizes.
// PRE: none
// POST: Trainers are ordered by name; MemberCount counts each member once
func QueryGetTrainers(ctx context.Context, query GetTrainersQuery, deps GetTrainersDeps) ([]TrainerSummary, error) {
	trainers, err := deps.TrainerStore.List(ctx)
	if err != nil {
		return nil, err
	}
	var out []TrainerSummary
	for _, t := range trainers {
		if !domainMember.MatchesQuery(t.MemberName, query.Search) {
			continue
		}
		entries, err := deps.RosterStore.ListByTrainer(ctx, t.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, TrainerSummary{Trainer: t, MemberCount: domainSession.DistinctMembers(entries)})
	}
	return out, nil
}

// GetPromoteCandidatesQuery carries query parameters.
type GetPromoteCandidatesQuery struct {
	Search string
}

// GetPromoteCandidatesDeps holds dependencies for GetPromoteCandidates.
type GetPromoteCandidatesDeps struct {
	MemberStore  MemberStore
	TrainerStore TrainerStore
}

// QueryGetPromoteCandidates lists active members who are not trainers yet.
// PRE: none
// POST: Candidates match Search by name and are ordered by name
func QueryGetPromoteCandidates(ctx context.Context, query GetPromoteCandidatesQuery, deps GetPromoteCandidatesDeps) ([]domainMember.Member, error) {
	trainers, err := deps.TrainerStore.List(ctx)
	if err != nil {
		return nil, err
	}
	isTrainer := make(map[string]bool, len(trainers))
	for _, t := range trainers {
		isTrainer[t.MemberID] = true
	}
	members, err := deps.MemberStore.List(ctx, member.ListFilter{Status: domainMember.StatusActive})
	if err != nil {
		return nil, err
	}
	var out []domainMember.Member
	for _, m := range members {
		if isTrainer[m.ID] || !domainMember.MatchesQuery(m.FullName, query.Search) {
			continue
		}
		out = append(out, m)
	}
	sortMembersByName(out)
	return out, nil
}

// RosterMember is one distinct member on a trainer's roster.
type RosterMember struct {
	MemberID string
	Name     string
	Sessions int // sessions of this trainer the member is enrolled in
}

// TrainerRoster is the detail view of one trainer.
type TrainerRoster struct {
	Trainer    domainTrainer.Trainer
	Members    []RosterMember
	Candidates []domainMember.Member // active members not yet on the roster
}

// GetTrainerRosterQuery carries query parameters.
type GetTrainerRosterQuery struct {
	TrainerID string
	Search    string // filters Candidates by name
}

// GetTrainerRosterDeps holds dependencies for GetTrainerRoster.
type GetTrainerRosterDeps struct {
	TrainerStore TrainerStore
	RosterStore  RosterStore
	MemberStore  MemberStore
}

// QueryGetTrainerRoster returns a trainer's distinct members and the members
// that can still be added.
// PRE: TrainerID is non-empty
// POST: Members are ordered by name; the trainer never appears as a candidate
func QueryGetTrainerRoster(ctx context.Context, query GetTrainerRosterQuery, deps GetTrainerRosterDeps) (TrainerRoster, error) {
	t, err := deps.TrainerStore.GetByID(ctx, query.TrainerID)
	if err != nil {
		return TrainerRoster{}, err
	}
	entries, err := deps.RosterStore.ListByTrainer(ctx, t.ID)
	if err != nil {
		return TrainerRoster{}, err
	}

	byMember := make(map[string]*RosterMember)
	var order []string
	for _, e := range entries {
		rm, ok := byMember[e.MemberID]
		if !ok {
			rm = &RosterMember{MemberID: e.MemberID, Name: e.MemberName}
			byMember[e.MemberID] = rm
			order = append(order, e.MemberID)
		}
		rm.Sessions++
	}
	roster := TrainerRoster{Trainer: t}
	for _, id := range order {
		roster.Members = append(roster.Members, *byMember[id])
	}
	sort.SliceStable(roster.Members, func(i, j int) bool { return roster.Members[i].Name < roster.Members[j].Name })

	members, err := deps.MemberStore.List(ctx, member.ListFilter{Status: domainMember.StatusActive})
	if err != nil {
		return TrainerRoster{}, err
	}
	for _, m := range members {
		if m.ID == t.MemberID || byMember[m.ID] != nil || !domainMember.MatchesQuery(m.FullName, query.Search) {
			continue
		}
		roster.Candidates = append(roster.Candidates, m)
	}
	sortMembersByName(roster.Candidates)
	return roster, nil
}

func sortMembersByName(ms []domainMember.Member) {
	sort.SliceStable(ms, func(i, j int) bool {
		if ms[i].FullName != ms[j].FullName {
			return ms[i].FullName < ms[j].FullName
		}
		return ms[i].ID < ms[j].ID
	})
}
