package main

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"zefit/internal/adapters/cache"
	"zefit/internal/adapters/email"
	web "zefit/internal/adapters/http"
	"zefit/internal/adapters/http/middleware"
	"zefit/internal/adapters/http/perf"
	"zefit/internal/adapters/objectstore"
	"zefit/internal/adapters/storage"
	accountStore "zefit/internal/adapters/storage/account"
	"zefit/internal/adapters/storage/cascade"
	memberStore "zefit/internal/adapters/storage/member"
	membershipStore "zefit/internal/adapters/storage/membership"
	paymentStore "zefit/internal/adapters/storage/payment"
	postStore "zefit/internal/adapters/storage/post"
	profileStore "zefit/internal/adapters/storage/profile"
	sessionStore "zefit/internal/adapters/storage/session"
	trainerStore "zefit/internal/adapters/storage/trainer"
	visitStore "zefit/internal/adapters/storage/visit"
	"zefit/internal/application/orchestrators"
	"zefit/internal/config"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	loc := cfg.Location()

	dialect, err := storage.ParseDialect(cfg.Database.Driver)
	if err != nil {
		log.Fatalf("invalid database driver: %v", err)
	}
	db, err := sql.Open(dialect.DriverName(), cfg.Database.DSN)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	// WAL allows concurrent readers; Postgres pools the same way.
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)

	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("database unreachable: %v", err)
	}
	if err := storage.InitDB(db, dialect); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}
	log.Printf("Database initialized (%s, schema=%d)", dialect, storage.LatestSchemaVersion())

	storage.SetSlowQueryThreshold(cfg.Perf.SlowQueryMs)
	middleware.SetSlowRequestThreshold(cfg.Perf.SlowRequestMs)
	collector := perf.NewCollector(perf.DefaultRingSize)
	timedDB := storage.NewTimedDB(db, dialect, collector)

	typeCache, closeCache := openCache(ctx, cfg)
	defer closeCache()

	stores := &web.Stores{
		AccountStore: accountStore.NewSQLiteStore(timedDB),
		MemberStore:  memberStore.NewSQLiteStore(timedDB),
		TypeStore:    membershipStore.NewCachedTypeStore(membershipStore.NewTypeSQLiteStore(timedDB), typeCache, cfg.CacheTTL()),
		PeriodStore:  membershipStore.NewPeriodSQLiteStore(timedDB, loc),
		PaymentStore: paymentStore.NewSQLiteStore(timedDB),
		VisitStore:   visitStore.NewSQLiteStore(timedDB),
		TrainerStore: trainerStore.NewSQLiteStore(timedDB),
		SessionStore: sessionStore.NewSQLiteStore(timedDB, loc),
		RosterStore:  sessionStore.NewRosterSQLiteStore(timedDB),
		PostStore:    postStore.NewSQLiteStore(timedDB),
		ProfileStore: profileStore.NewSQLiteStore(timedDB),
		Deleter:      cascade.NewDeleter(timedDB),
	}

	opts := web.Options{
		Secure:             cfg.IsProduction(),
		Location:           loc,
		RejectOverlap:      cfg.Packages.RejectOverlap,
		ReminderWindowDays: cfg.Reminders.WindowDays,
	}
	if cfg.CloudinaryEnabled() {
		cl := cfg.Uploads.Cloudinary
		stores.ObjectStore = objectstore.NewCloudinaryStore(objectstore.CloudinaryConfig{
			CloudName: cl.CloudName,
			APIKey:    cl.APIKey,
			APISecret: cl.APISecret,
			Folder:    cl.Folder,
		})
		opts.ImageOrigins = []string{"https://res.cloudinary.com"}
		log.Println("Uploads stored in Cloudinary")
	} else {
		stores.ObjectStore = objectstore.NewDiskStore(cfg.Uploads.Dir, "/media")
		opts.MediaDir = cfg.Uploads.Dir
		log.Printf("Uploads stored on disk in %s", cfg.Uploads.Dir)
	}

	adminPassword := cfg.Admin.Password
	if adminPassword == "" {
		adminPassword = "zefit-dev"
	}
	seeded, err := orchestrators.ExecuteSeedAdmin(ctx,
		orchestrators.SeedAdminInput{Email: cfg.Admin.Email, Password: adminPassword},
		orchestrators.SeedAdminDeps{AccountStore: stores.AccountStore, GenerateID: uuid.NewString, Now: time.Now})
	if err != nil {
		log.Fatalf("failed to seed admin: %v", err)
	}
	if seeded {
		log.Printf("Seeded admin account %s", cfg.Admin.Email)
	}

	if cfg.Email.ResendAPIKey != "" {
		web.SetEmailSender(email.NewResendSender(cfg.Email.ResendAPIKey, cfg.Email.From, cfg.Email.ReplyTo))
		log.Println("Email sender configured (Resend)")
	} else {
		web.SetEmailSender(email.NewNoopSender())
		if cfg.IsProduction() {
			log.Println("WARNING: resend_api_key is not set, expiry reminders will not be delivered")
		} else {
			log.Println("Email sender configured (noop)")
		}
	}

	opts.CSRFKey, err = csrfKey(cfg)
	if err != nil {
		log.Fatalf("invalid CSRF key: %v", err)
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           web.NewMux(stores, collector, opts),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
		<-stop
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown_error", "error", err)
		}
	}()

	env := cfg.Env
	if env == "" {
		env = "development"
	}
	log.Printf("ZeFit %s starting on %s (env=%s, tz=%s)", version, cfg.Addr, env, loc)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Server failed: %v", err)
	}
}

// openCache returns the membership-type cache and a func releasing it.
// An unreachable Redis falls back to the in-process cache.
func openCache(ctx context.Context, cfg *config.Config) (cache.Cache, func()) {
	if cfg.Cache.RedisURL == "" {
		return cache.NewMemoryCache(), func() {}
	}
	rc, err := cache.NewRedisCache(ctx, cfg.Cache.RedisURL, "zefit:")
	if err != nil {
		slog.Warn("redis_unavailable", "error", err)
		return cache.NewMemoryCache(), func() {}
	}
	log.Println("Membership types cached in Redis")
	return rc, func() { rc.Close() }
}

// csrfKey decodes the configured key. Outside production a random key is
// generated when none is set, which invalidates open forms on restart.
func csrfKey(cfg *config.Config) ([]byte, error) {
	if cfg.Security.CSRFKey != "" {
		key, err := hex.DecodeString(cfg.Security.CSRFKey)
		if err != nil {
			return nil, err
		}
		if len(key) != 32 {
			return nil, errors.New("csrf_key must be 64 hex characters")
		}
		return key, nil
	}
	if cfg.IsProduction() {
		return nil, errors.New("csrf_key is required in production")
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, err
	}
	return key, nil
}
