package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func env(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestLoadFiles_DefaultsWhenFilesMissing(t *testing.T) {
	dir := t.TempDir()
	c, err := LoadFiles(filepath.Join(dir, "none.yaml"), filepath.Join(dir, "none.secret.yaml"), env(nil))
	if err != nil {
		t.Fatalf("LoadFiles: %v", err)
	}
	if c.Addr != DefaultAddr || c.Database.Driver != "sqlite" || c.Reminders.WindowDays != 7 {
		t.Errorf("defaults = %+v", c)
	}
	if c.Packages.RejectOverlap {
		t.Error("overlap rejection should default to off")
	}
	if c.CloudinaryEnabled() {
		t.Error("cloudinary should be disabled without credentials")
	}
}

func TestLoadFiles_SecretOverlayAndEnv(t *testing.T) {
	dir := t.TempDir()
	main := writeFile(t, dir, "zefit.yaml", `
addr: ":9000"
time_zone: Europe/Zagreb
database:
  driver: postgres
  dsn: postgres://zefit@localhost/zefit
uploads:
  cloudinary:
    cloud_name: zefit
    api_key: key
packages:
  reject_overlap: true
`)
	secret := writeFile(t, dir, "zefit.secret.yaml", `
uploads:
  cloudinary:
    api_secret: s3cret
admin:
  password: changeme
`)

	c, err := LoadFiles(main, secret, env(map[string]string{
		"ZEFIT_ADDR":                 ":7000",
		"ZEFIT_SLOW_QUERY_MS":        "80",
		"ZEFIT_REMINDER_WINDOW_DAYS": "3",
	}))
	if err != nil {
		t.Fatalf("LoadFiles: %v", err)
	}

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"env beats file", c.Addr, ":7000"},
		{"file beats default", c.Database.Driver, "postgres"},
		{"secret overlays", c.Uploads.Cloudinary.APISecret, "s3cret"},
		{"secret keeps file keys", c.Uploads.Cloudinary.APIKey, "key"},
		{"admin password", c.Admin.Password, "changeme"},
		{"int override", c.Perf.SlowQueryMs, 80},
		{"reminder window", c.Reminders.WindowDays, 3},
		{"overlap switch", c.Packages.RejectOverlap, true},
		{"untouched default", c.Perf.SlowRequestMs, DefaultSlowRequest},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s: got %v, want %v", tt.name, tt.got, tt.want)
		}
	}
	if !c.CloudinaryEnabled() {
		t.Error("cloudinary should be enabled")
	}
}

func TestLoadFiles_Errors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		yaml    string
		env     map[string]string
		wantErr string
	}{
		{"malformed yaml", "addr: [", nil, "parse"},
		{"bad driver", "database:\n  driver: mysql\n", nil, "database.driver"},
		{"bad zone", "time_zone: Mars/Base\n", nil, "time_zone"},
		{"bad int env", "", map[string]string{"ZEFIT_SLOW_QUERY_MS": "fast"}, "ZEFIT_SLOW_QUERY_MS"},
		{"bad bool env", "", map[string]string{"ZEFIT_REJECT_PACKAGE_OVERLAP": "maybe"}, "ZEFIT_REJECT_PACKAGE_OVERLAP"},
		{"production needs admin password", "env: production\n", nil, "admin.password"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := writeFile(t, dir, strings.ReplaceAll(tt.name, " ", "_")+".yaml", tt.yaml)
			_, err := LoadFiles(p, "", env(tt.env))
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("err = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestLocation(t *testing.T) {
	c := Default()
	if c.Location().String() != DefaultTimeZone {
		t.Errorf("Location = %s", c.Location())
	}
	c.TimeZone = "nowhere"
	if c.Location() == nil {
		t.Error("Location should fall back, not return nil")
	}
}
