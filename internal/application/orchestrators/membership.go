package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"zefit/internal/adapters/storage/membership"
	domainMembership "zefit/internal/domain/membership"
	"zefit/internal/domain/money"
	"zefit/internal/domain/payment"
)

// MembershipTypeStore defines the type persistence needed by package orchestrators.
type MembershipTypeStore interface {
	GetByID(ctx context.Context, id string) (domainMembership.Type, error)
	Save(ctx context.Context, t domainMembership.Type) error
}

// PeriodStore defines the period persistence needed by package orchestrators.
type PeriodStore interface {
	GetByID(ctx context.Context, id string) (domainMembership.Period, error)
	Save(ctx context.Context, p domainMembership.Period) error
	List(ctx context.Context, filter membership.PeriodFilter) ([]domainMembership.Period, error)
}

// PaymentStore defines the payment persistence needed by AddPayment.
type PaymentStore interface {
	Save(ctx context.Context, p payment.Payment) error
}

// --- Create Membership Type ---

// CreateMembershipTypeInput carries input for the orchestrator.
type CreateMembershipTypeInput struct {
	Name         string
	DurationDays int
	DefaultPrice money.Amount
}

// CreateMembershipTypeDeps holds dependencies for CreateMembershipType.
type CreateMembershipTypeDeps struct {
	TypeStore  MembershipTypeStore
	GenerateID func() string
}

// ExecuteCreateMembershipType adds a membership type to the reference data.
// PRE: Name is non-empty; duration and price are not negative
// POST: Type persisted with a generated ID
func ExecuteCreateMembershipType(ctx context.Context, input CreateMembershipTypeInput, deps CreateMembershipTypeDeps) (domainMembership.Type, error) {
	t := domainMembership.Type{
		ID:           deps.GenerateID(),
		Name:         strings.TrimSpace(input.Name),
		DurationDays: input.DurationDays,
		DefaultPrice: input.DefaultPrice,
	}
	if err := t.Validate(); err != nil {
		return domainMembership.Type{}, err
	}
	if err := deps.TypeStore.Save(ctx, t); err != nil {
		return domainMembership.Type{}, fmt.Errorf("create membership type: %w", err)
	}
	slog.Info("package_event", "event", "type_created", "type_id", t.ID, "name", t.Name)
	return t, nil
}

// --- Add Package ---

// AddPackageInput carries input for the orchestrator.
type AddPackageInput struct {
	MemberID  string
	TypeID    string
	StartDate time.Time
	EndDate   *time.Time
	Price     *money.Amount // nil means the type's default price
}

// AddPackageDeps holds dependencies for AddPackage.
type AddPackageDeps struct {
	TypeStore     MembershipTypeStore
	PeriodStore   PeriodStore
	GenerateID    func() string
	RejectOverlap bool
}

// ExecuteAddPackage sells a membership package to a member.
// PRE: MemberID, TypeID, StartDate and EndDate are set
// POST: Active period persisted; price defaults to the type's default price
// INVARIANT: With RejectOverlap, no two periods of a member share a day
func ExecuteAddPackage(ctx context.Context, input AddPackageInput, deps AddPackageDeps) (domainMembership.Period, error) {
	switch {
	case strings.TrimSpace(input.MemberID) == "":
		return domainMembership.Period{}, domainMembership.ErrEmptyMemberID
	case strings.TrimSpace(input.TypeID) == "":
		return domainMembership.Period{}, domainMembership.ErrEmptyTypeID
	case input.StartDate.IsZero():
		return domainMembership.Period{}, domainMembership.ErrEmptyStartDate
	case input.EndDate == nil || input.EndDate.IsZero():
		return domainMembership.Period{}, domainMembership.ErrEmptyEndDate
	case input.EndDate.Before(input.StartDate):
		return domainMembership.Period{}, domainMembership.ErrEndBeforeStart
	case input.Price != nil && *input.Price <= 0:
		return domainMembership.Period{}, domainMembership.ErrZeroPrice
	}

	t, err := deps.TypeStore.GetByID(ctx, input.TypeID)
	if err != nil {
		return domainMembership.Period{}, err
	}
	price := t.DefaultPrice
	if input.Price != nil {
		price = *input.Price
	}
	if price <= 0 {
		return domainMembership.Period{}, domainMembership.ErrZeroPrice
	}

	end := *input.EndDate
	p := domainMembership.Period{
		ID:        deps.GenerateID(),
		MemberID:  input.MemberID,
		TypeID:    t.ID,
		TypeName:  t.Name,
		Price:     price,
		StartDate: input.StartDate,
		EndDate:   &end,
		Status:    domainMembership.StatusActive,
	}
	if err := p.Validate(); err != nil {
		return domainMembership.Period{}, err
	}

	if deps.RejectOverlap {
		existing, err := deps.PeriodStore.List(ctx, membership.PeriodFilter{MemberID: p.MemberID})
		if err != nil {
			return domainMembership.Period{}, fmt.Errorf("add package: %w", err)
		}
		if clash, ok := domainMembership.FindOverlap(existing, p); ok {
			slog.Info("package_event", "event", "package_rejected", "member_id", p.MemberID, "overlaps", clash.ID)
			return domainMembership.Period{}, domainMembership.ErrOverlappingPeriod
		}
	}

	if err := deps.PeriodStore.Save(ctx, p); err != nil {
		return domainMembership.Period{}, fmt.Errorf("add package for member %s: %w", p.MemberID, err)
	}
	slog.Info("package_event", "event", "package_added", "period_id", p.ID, "member_id", p.MemberID, "type_id", p.TypeID, "price", p.Price.String())
	return p, nil
}

// --- Add Payment ---

// ErrPackageNotOwned is returned when the selected package belongs to another member.
var ErrPackageNotOwned = errors.New("selected package does not belong to this member")

// AddPaymentInput carries input for the orchestrator.
type AddPaymentInput struct {
	MemberID string
	PeriodID string
	Amount   *money.Amount // nil means the package price
	Date     time.Time     // zero means today
	Method   string
}

// AddPaymentDeps holds dependencies for AddPayment.
type AddPaymentDeps struct {
	PeriodStore  PeriodStore
	PaymentStore PaymentStore
	GenerateID   func() string
	Now          func() time.Time
	Location     *time.Location
}

// ExecuteAddPayment records a payment against one of the member's packages.
// PRE: MemberID and PeriodID are set; Amount, when given, is positive
// POST: Payment persisted at 12:00 local time on the chosen date
// INVARIANT: Payments are never modified after they are recorded
func ExecuteAddPayment(ctx context.Context, input AddPaymentInput, deps AddPaymentDeps) (payment.Payment, error) {
	if strings.TrimSpace(input.MemberID) == "" {
		return payment.Payment{}, payment.ErrEmptyMemberID
	}
	if strings.TrimSpace(input.PeriodID) == "" {
		return payment.Payment{}, payment.ErrNoPackageSelected
	}
	if input.Amount != nil && !input.Amount.IsPositive() {
		return payment.Payment{}, payment.ErrNonPositiveAmount
	}

	period, err := deps.PeriodStore.GetByID(ctx, input.PeriodID)
	if err != nil {
		return payment.Payment{}, err
	}
	if period.MemberID != input.MemberID {
		return payment.Payment{}, ErrPackageNotOwned
	}
	amount := period.Price
	if input.Amount != nil {
		amount = *input.Amount
	}

	loc := deps.Location
	if loc == nil {
		loc = time.Local
	}
	now := deps.Now()
	day := input.Date
	if day.IsZero() {
		day = now
	}

	p := payment.Payment{
		ID:        deps.GenerateID(),
		MemberID:  input.MemberID,
		PeriodID:  period.ID,
		Amount:    amount,
		PaidAt:    payment.PaidAtFromDate(day.In(loc)),
		Method:    payment.NormalizeMethod(input.Method),
		CreatedAt: now,
	}
	if err := p.Validate(); err != nil {
		return payment.Payment{}, err
	}
	if err := deps.PaymentStore.Save(ctx, p); err != nil {
		return payment.Payment{}, fmt.Errorf("add payment for member %s: %w", p.MemberID, err)
	}
	slog.Info("payment_event", "event", "payment_added", "payment_id", p.ID, "member_id", p.MemberID, "amount", p.Amount.String(), "method", p.Method)
	return p, nil
}
