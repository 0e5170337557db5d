package orchestrators

import (
	"context"
	"errors"
	"strings"
	"testing"

	"zefit/internal/domain/account"
	"zefit/internal/domain/profile"
)

// TestExecuteGetOrCreateProfile verifies lazy creation on first read.
func TestExecuteGetOrCreateProfile(t *testing.T) {
	store := &mockProfileStore{profiles: make(map[string]profile.Profile)}
	p, err := ExecuteGetOrCreateProfile(context.Background(), GetOrCreateProfileInput{UserID: "u1"}, GetOrCreateProfileDeps{ProfileStore: store})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ID != "u1" {
		t.Errorf("ID = %q, want u1", p.ID)
	}
	if _, ok := store.profiles["u1"]; !ok {
		t.Error("profile should be created")
	}

	store.profiles["u1"] = profile.Profile{ID: "u1", FullName: "Maja"}
	p, err = ExecuteGetOrCreateProfile(context.Background(), GetOrCreateProfileInput{UserID: "u1"}, GetOrCreateProfileDeps{ProfileStore: store})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.FullName != "Maja" {
		t.Errorf("existing profile was replaced: %+v", p)
	}
}

// TestExecuteUpdateProfile verifies details, avatar and password change.
func TestExecuteUpdateProfile(t *testing.T) {
	profiles := &mockProfileStore{profiles: make(map[string]profile.Profile)}
	accounts := newMockAccountStore(account.Account{ID: "u1", Email: "maja@zefit.hr", Role: account.RoleStaff})
	objects := &mockObjectStore{}
	deps := UpdateProfileDeps{ProfileStore: profiles, AccountStore: accounts, ObjectStore: objects}

	p, err := ExecuteUpdateProfile(context.Background(), UpdateProfileInput{
		UserID:      "u1",
		FullName:    " Maja Horvat ",
		Phone:       "091 555",
		Avatar:      &Upload{FileName: "me.jpg", ContentType: "image/jpeg", Body: strings.NewReader("jpg")},
		NewPassword: "secret123",
	}, deps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.FullName != "Maja Horvat" || p.AvatarURL != "https://cdn.test/avatars/u1/me.jpg" {
		t.Errorf("profile = %+v", p)
	}
	acct := accounts.accounts["u1"]
	if err := acct.CheckPassword("secret123"); err != nil {
		t.Errorf("new password not set: %v", err)
	}

	_, err = ExecuteUpdateProfile(context.Background(), UpdateProfileInput{UserID: "u1", NewPassword: "abc"}, deps)
	if !errors.Is(err, account.ErrPasswordTooShort) {
		t.Errorf("error = %v, want ErrPasswordTooShort", err)
	}
	if profiles.profiles["u1"].FullName != "Maja Horvat" {
		t.Error("rejected update must not change the profile")
	}
}
