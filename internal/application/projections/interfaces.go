package projections

import (
	"context"

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

// MemberStore interface for member queries.
type MemberStore interface {
	GetByID(ctx context.Context, id string) (domainMember.Member, error)
	List(ctx context.Context, filter member.ListFilter) ([]domainMember.Member, error)
	NamesByID(ctx context.Context, ids []string) (map[string]string, error)
}

// MembershipTypeStore interface for membership type queries.
type MembershipTypeStore interface {
	List(ctx context.Context) ([]domainMembership.Type, error)
}

// PeriodStore interface for membership period queries.
type PeriodStore interface {
	List(ctx context.Context, filter membership.PeriodFilter) ([]domainMembership.Period, error)
}

// PaymentStore interface for payment queries.
type PaymentStore interface {
	List(ctx context.Context, filter payment.ListFilter) ([]domainPayment.Payment, error)
}

// VisitStore interface for visit queries.
type VisitStore interface {
	List(ctx context.Context, filter visit.ListFilter) ([]domainVisit.Visit, error)
}

// TrainerStore interface for trainer queries.
type TrainerStore interface {
	GetByID(ctx context.Context, id string) (domainTrainer.Trainer, error)
	List(ctx context.Context) ([]domainTrainer.Trainer, error)
}

// SessionStore interface for session queries.
type SessionStore interface {
	GetByID(ctx context.Context, id string) (domainSession.Session, error)
	List(ctx context.Context, filter session.ListFilter) ([]domainSession.Session, error)
}

// RosterStore interface for roster queries.
type RosterStore interface {
	ListBySession(ctx context.Context, sessionID string) ([]domainSession.RosterEntry, error)
	ListByTrainer(ctx context.Context, trainerID string) ([]domainSession.RosterEntry, error)
}
