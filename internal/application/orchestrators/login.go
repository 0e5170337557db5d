package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"zefit/internal/domain/account"
)

// LoginInput carries input for the login orchestrator.
type LoginInput struct {
	Email    string
	Password string
}

// LoginResult carries the result of a successful login.
type LoginResult struct {
	AccountID string
	Email     string
	Role      string
}

// LoginDeps holds dependencies for Login.
type LoginDeps struct {
	AccountStore AccountStore
	Now          func() time.Time
}

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountLocked      = errors.New("account is locked after too many failed attempts, try again later")
)

// ExecuteLogin validates credentials and returns account info for session creation.
// PRE: Valid email and password provided
// POST: Returns account info on success, records failed login on failure
// INVARIANT: A locked account cannot log in until the lock expires
func ExecuteLogin(ctx context.Context, input LoginInput, deps LoginDeps) (LoginResult, error) {
	if input.Email == "" || input.Password == "" {
		return LoginResult{}, ErrInvalidCredentials
	}

	acct, err := deps.AccountStore.GetByEmail(ctx, input.Email)
	if err != nil {
		slog.Info("auth_event", "event", "login_failed", "email", input.Email, "reason", "not_found")
		return LoginResult{}, ErrInvalidCredentials
	}

	now := deps.Now()
	if acct.IsLocked(now) {
		slog.Info("auth_event", "event", "login_blocked", "email", input.Email, "reason", "locked")
		return LoginResult{}, ErrAccountLocked
	}

	if err := acct.CheckPassword(input.Password); err != nil {
		acct.RecordFailedLogin(now)
		if err := deps.AccountStore.Save(ctx, acct); err != nil {
			slog.Warn("auth_event", "event", "failed_login_not_recorded", "email", input.Email, "error", err)
		}
		slog.Info("auth_event", "event", "login_failed", "email", input.Email, "reason", "wrong_password", "failed_logins", acct.FailedLogins)
		return LoginResult{}, ErrInvalidCredentials
	}

	if acct.FailedLogins > 0 || !acct.LockedUntil.IsZero() {
		acct.ResetFailedLogins()
		if err := deps.AccountStore.Save(ctx, acct); err != nil {
			return LoginResult{}, fmt.Errorf("reset failed logins: %w", err)
		}
	}

	slog.Info("auth_event", "event", "login_success", "email", acct.Email, "role", acct.Role)
	return LoginResult{AccountID: acct.ID, Email: acct.Email, Role: acct.Role}, nil
}

// AccountCounter reports how many staff accounts exist.
type AccountCounter interface {
	AccountStore
	Count(ctx context.Context) (int, error)
}

// SeedAdminInput carries input for the orchestrator.
type SeedAdminInput struct {
	Email    string
	Password string
}

// SeedAdminDeps holds dependencies for SeedAdmin.
type SeedAdminDeps struct {
	AccountStore AccountCounter
	GenerateID   func() string
	Now          func() time.Time
}

// ExecuteSeedAdmin creates the first admin account when no account exists.
// PRE: Email and Password are set
// POST: Returns true when an admin was created; existing accounts are never touched
func ExecuteSeedAdmin(ctx context.Context, input SeedAdminInput, deps SeedAdminDeps) (bool, error) {
	n, err := deps.AccountStore.Count(ctx)
	if err != nil {
		return false, fmt.Errorf("count accounts: %w", err)
	}
	if n > 0 {
		return false, nil
	}

	acct := account.Account{
		ID:        deps.GenerateID(),
		Email:     strings.ToLower(strings.TrimSpace(input.Email)),
		Role:      account.RoleAdmin,
		CreatedAt: deps.Now(),
	}
	if err := acct.Validate(); err != nil {
		return false, err
	}
	if err := acct.SetPassword(input.Password); err != nil {
		return false, err
	}
	if err := deps.AccountStore.Save(ctx, acct); err != nil {
		return false, fmt.Errorf("seed admin: %w", err)
	}
	slog.Info("auth_event", "event", "admin_seeded", "account_id", acct.ID, "email", acct.Email)
	return true, nil
}
