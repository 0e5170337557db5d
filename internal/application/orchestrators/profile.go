package orchestrators

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"zefit/internal/domain/account"
	"zefit/internal/domain/profile"
)

// ProfileStore defines the profile persistence needed by profile orchestrators.
type ProfileStore interface {
	GetByID(ctx context.Context, id string) (profile.Profile, error)
	Save(ctx context.Context, p profile.Profile) error
}

// AccountStore defines the account persistence needed by account orchestrators.
type AccountStore interface {
	GetByID(ctx context.Context, id string) (account.Account, error)
	GetByEmail(ctx context.Context, email string) (account.Account, error)
	Save(ctx context.Context, a account.Account) error
}

// GetOrCreateProfileInput carries input for the orchestrator.
type GetOrCreateProfileInput struct {
	UserID string
}

// GetOrCreateProfileDeps holds dependencies for GetOrCreateProfile.
type GetOrCreateProfileDeps struct {
	ProfileStore ProfileStore
}

// ExecuteGetOrCreateProfile returns the staff user's profile, creating an
// empty one on first read.
// PRE: UserID is non-empty
// POST: A profile with ID = UserID exists
func ExecuteGetOrCreateProfile(ctx context.Context, input GetOrCreateProfileInput, deps GetOrCreateProfileDeps) (profile.Profile, error) {
	if input.UserID == "" {
		return profile.Profile{}, profile.ErrEmptyID
	}
	p, err := deps.ProfileStore.GetByID(ctx, input.UserID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return profile.Profile{}, fmt.Errorf("load profile %s: %w", input.UserID, err)
	}
	p = profile.Profile{ID: input.UserID}
	if err := deps.ProfileStore.Save(ctx, p); err != nil {
		return profile.Profile{}, fmt.Errorf("create profile %s: %w", input.UserID, err)
	}
	slog.Info("profile_event", "event", "profile_created", "user_id", p.ID)
	return p, nil
}

// UpdateProfileInput carries input for the orchestrator.
type UpdateProfileInput struct {
	UserID      string
	FullName    string
	Phone       string
	Avatar      *Upload // nil keeps the current avatar
	NewPassword string  // empty keeps the current password
}

// UpdateProfileDeps holds dependencies for UpdateProfile.
type UpdateProfileDeps struct {
	ProfileStore ProfileStore
	AccountStore AccountStore
	ObjectStore  ObjectStore
}

// ExecuteUpdateProfile saves profile details and optionally a new password.
// PRE: UserID is non-empty; NewPassword, when set, has at least 6 characters
// POST: Profile saved; the account password is replaced when NewPassword is set
func ExecuteUpdateProfile(ctx context.Context, input UpdateProfileInput, deps UpdateProfileDeps) (profile.Profile, error) {
	if input.UserID == "" {
		return profile.Profile{}, profile.ErrEmptyID
	}
	if input.NewPassword != "" && len([]rune(input.NewPassword)) < account.MinPasswordLength {
		return profile.Profile{}, account.ErrPasswordTooShort
	}

	p, err := ExecuteGetOrCreateProfile(ctx, GetOrCreateProfileInput{UserID: input.UserID}, GetOrCreateProfileDeps{ProfileStore: deps.ProfileStore})
	if err != nil {
		return profile.Profile{}, err
	}
	p.FullName = strings.TrimSpace(input.FullName)
	p.Phone = strings.TrimSpace(input.Phone)
	if err := p.Validate(); err != nil {
		return profile.Profile{}, err
	}

	if input.Avatar != nil {
		url, err := deps.ObjectStore.Put(ctx, profile.AvatarObjectPath(p.ID, input.Avatar.FileName), input.Avatar.ContentType, input.Avatar.Body)
		if err != nil {
			return profile.Profile{}, fmt.Errorf("upload avatar: %w", err)
		}
		p.AvatarURL = url
	}
	if err := deps.ProfileStore.Save(ctx, p); err != nil {
		return profile.Profile{}, fmt.Errorf("save profile %s: %w", p.ID, err)
	}

	if input.NewPassword != "" {
		acct, err := deps.AccountStore.GetByID(ctx, p.ID)
		if err != nil {
			return profile.Profile{}, err
		}
		if err := acct.SetPassword(input.NewPassword); err != nil {
			return profile.Profile{}, err
		}
		if err := deps.AccountStore.Save(ctx, acct); err != nil {
			return profile.Profile{}, fmt.Errorf("save password for %s: %w", p.ID, err)
		}
		slog.Info("auth_event", "event", "password_changed", "account_id", p.ID)
	}
	slog.Info("profile_event", "event", "profile_updated", "user_id", p.ID, "avatar", input.Avatar != nil)
	return p, nil
}
