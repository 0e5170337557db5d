package payment

import (
	"errors"
	"strings"
	"time"

	"zefit/internal/domain/money"
)

// Payment method constants
const (
	MethodCash = "cash"
	MethodCard = "card"
)

// PaidAtHour is the local hour assigned to a payment entered by date only.
const PaidAtHour = 12

// Domain errors
var (
	ErrEmptyMemberID     = errors.New("member ID cannot be empty")
	ErrNoPackageSelected = errors.New("a package must be selected")
	ErrNonPositiveAmount = errors.New("amount must be greater than zero")
	ErrEmptyPaidAt       = errors.New("payment date is required")
	ErrInvalidMethod     = errors.New("method must be 'cash' or 'card'")
)

// Payment is a recorded payment. Immutable once stored.
type Payment struct {
	ID        string
	MemberID  string
	PeriodID  string // optional link to the package paid for
	Amount    money.Amount
	PaidAt    time.Time
	Method    string
	CreatedAt time.Time
}

// Validate checks if the Payment has valid data.
// PRE: Payment struct is populated
// POST: Returns nil if valid, error otherwise
func (p *Payment) Validate() error {
	if strings.TrimSpace(p.MemberID) == "" {
		return ErrEmptyMemberID
	}
	if !p.Amount.IsPositive() {
		return ErrNonPositiveAmount
	}
	if p.PaidAt.IsZero() {
		return ErrEmptyPaidAt
	}
	if p.Method != MethodCash && p.Method != MethodCard {
		return ErrInvalidMethod
	}
	return nil
}

// PaidAtFromDate places a payment date at midday in the date's location.
func PaidAtFromDate(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), PaidAtHour, 0, 0, 0, d.Location())
}

// Total sums the amounts of all payments.
func Total(payments []Payment) money.Amount {
	var total money.Amount
	for _, p := range payments {
		total += p.Amount
	}
	return total
}

// NormalizeMethod returns a valid method, defaulting to cash.
func NormalizeMethod(raw string) string {
	if strings.EqualFold(strings.TrimSpace(raw), MethodCard) {
		return MethodCard
	}
	return MethodCash
}
