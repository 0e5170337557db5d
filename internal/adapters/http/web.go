package web

import (
	"io/fs"
	"net/http"
	"time"

	"zefit/internal/adapters/email"
	"zefit/internal/adapters/http/middleware"
	"zefit/internal/adapters/http/perf"
	"zefit/internal/adapters/objectstore"
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
	domainAccount "zefit/internal/domain/account"
)

// Stores holds all storage dependencies.
type Stores struct {
	AccountStore accountStore.Store
	MemberStore  memberStore.Store
	TypeStore    membershipStore.TypeStore
	PeriodStore  membershipStore.PeriodStore
	PaymentStore paymentStore.Store
	VisitStore   visitStore.Store
	TrainerStore trainerStore.Store
	SessionStore sessionStore.Store
	RosterStore  sessionStore.RosterStore
	PostStore    postStore.Store
	ProfileStore profileStore.Store
	Deleter      *cascade.Deleter
	ObjectStore  objectstore.Store
}

// Options carries the console settings the handlers read.
type Options struct {
	CSRFKey            []byte // 32 bytes
	Secure             bool   // production: Secure cookies, CSRF over TLS only
	TrustedOrigins     []string
	Location           *time.Location
	RejectOverlap      bool
	ReminderWindowDays int
	MediaDir           string // served under /media/ when uploads go to disk
	ImageOrigins       []string
}

// Global stores instance (set by NewMux)
var stores *Stores

// Global session store instance
var sessions *middleware.SessionStore

// Global perf collector (set by NewMux)
var perfCollector *perf.Collector

// Global email sender instance (set by SetEmailSender)
var emailSender email.Sender = email.NewNoopSender()

var options Options

// RateLimitPerSecond controls the per-IP rate limit. Tests can increase this.
var RateLimitPerSecond = 20

// SetEmailSender sets the sender used for expiry reminders.
func SetEmailSender(sender email.Sender) {
	emailSender = sender
}

// location returns the gym's time zone.
func location() *time.Location {
	if options.Location == nil {
		return time.Local
	}
	return options.Location
}

// NewMux wires HTTP handlers for the console.
// PRE: s is fully populated; opts.CSRFKey is 32 bytes
// POST: Returns the handler with the middleware chain applied
func NewMux(s *Stores, collector *perf.Collector, opts Options) http.Handler {
	stores = s
	perfCollector = collector
	options = opts
	sessions = middleware.NewSessionStore()
	middleware.SecureCookies = opts.Secure
	middleware.ImageSources = opts.ImageOrigins

	mux := http.NewServeMux()
	mux.Handle("GET /static/", http.FileServerFS(staticFS))
	if opts.MediaDir != "" {
		mux.Handle("GET /media/", http.StripPrefix("/media/", http.FileServer(noDirListing{http.Dir(opts.MediaDir)})))
	}
	registerRoutes(mux)

	limiter := middleware.NewRateLimiter(RateLimitPerSecond, time.Second)

	// Timing -> RateLimit -> Auth -> CSRF -> SecurityHeaders -> Mux
	return middleware.Chain(mux,
		middleware.SecurityHeaders,
		middleware.CSRF(opts.CSRFKey, opts.Secure, opts.TrustedOrigins...),
		middleware.Auth(sessions),
		middleware.RateLimit(limiter),
		middleware.Timing(collector),
	)
}

func registerRoutes(mux *http.ServeMux) {
	staff := middleware.RequireAuth
	admin := func(h http.HandlerFunc) http.Handler {
		return middleware.RequireRole(domainAccount.RoleAdmin)(h)
	}

	mux.HandleFunc("GET /login", handleLoginPage)
	mux.HandleFunc("POST /login", handleLogin)
	mux.HandleFunc("POST /logout", handleLogout)
	mux.Handle("GET /{$}", staff(http.RedirectHandler("/dashboard", http.StatusSeeOther)))

	mux.Handle("GET /dashboard", staff(http.HandlerFunc(handleDashboard)))
	mux.Handle("GET /api/dashboard", staff(http.HandlerFunc(handleDashboard)))

	mux.Handle("GET /clients", staff(http.HandlerFunc(handleClients)))
	mux.Handle("GET /api/clients", staff(http.HandlerFunc(handleClients)))
	mux.Handle("POST /clients", staff(http.HandlerFunc(handleRegisterClient)))
	mux.Handle("GET /api/clients/{id}", staff(http.HandlerFunc(handleClientProfile)))
	mux.Handle("POST /clients/{id}", staff(http.HandlerFunc(handleUpdateClient)))
	mux.Handle("POST /clients/{id}/delete", staff(http.HandlerFunc(handleDeleteClient)))
	mux.Handle("POST /clients/{id}/packages", staff(http.HandlerFunc(handleAddPackage)))
	mux.Handle("POST /clients/{id}/payments", staff(http.HandlerFunc(handleAddPayment)))
	mux.Handle("POST /clients/{id}/checkin", staff(http.HandlerFunc(handleCheckIn)))
	mux.Handle("POST /clients/{id}/checkout", staff(http.HandlerFunc(handleCheckOut)))

	mux.Handle("GET /membership-types", staff(http.HandlerFunc(handleMembershipTypes)))
	mux.Handle("POST /membership-types", admin(handleCreateMembershipType))

	mux.Handle("GET /trainers", staff(http.HandlerFunc(handleTrainers)))
	mux.Handle("GET /api/trainers", staff(http.HandlerFunc(handleTrainers)))
	mux.Handle("POST /trainers", staff(http.HandlerFunc(handlePromoteTrainer)))
	mux.Handle("POST /trainers/{id}/default-session", staff(http.HandlerFunc(handleEnsureDefaultSession)))
	mux.Handle("POST /trainers/{id}/members", staff(http.HandlerFunc(handleAddTrainerMember)))
	mux.Handle("POST /trainers/{id}/members/{memberID}/delete", staff(http.HandlerFunc(handleRemoveTrainerMember)))

	mux.Handle("GET /schedule", staff(http.HandlerFunc(handleSchedule)))
	mux.Handle("GET /api/schedule", staff(http.HandlerFunc(handleSchedule)))
	mux.Handle("POST /schedule/sessions", staff(http.HandlerFunc(handleSaveSession)))
	mux.Handle("POST /schedule/sessions/{id}", staff(http.HandlerFunc(handleSaveSession)))
	mux.Handle("POST /schedule/sessions/{id}/recur", staff(http.HandlerFunc(handleRecurSession)))
	mux.Handle("POST /schedule/sessions/{id}/members", staff(http.HandlerFunc(handleAddSessionMember)))
	mux.Handle("POST /schedule/sessions/{id}/members/{memberID}/delete", staff(http.HandlerFunc(handleRemoveSessionMember)))
	mux.Handle("POST /schedule/sessions/{id}/delete", staff(http.HandlerFunc(handleDeleteSession)))

	mux.Handle("GET /posts", staff(http.HandlerFunc(handlePosts)))
	mux.Handle("GET /api/posts", staff(http.HandlerFunc(handlePosts)))
	mux.Handle("POST /posts", staff(http.HandlerFunc(handleSavePost)))
	mux.Handle("POST /posts/{id}", staff(http.HandlerFunc(handleSavePost)))
	mux.Handle("POST /posts/{id}/delete", staff(http.HandlerFunc(handleDeletePost)))

	mux.Handle("GET /profile", staff(http.HandlerFunc(handleProfile)))
	mux.Handle("POST /profile", staff(http.HandlerFunc(handleUpdateProfile)))

	mux.Handle("POST /admin/reminders", admin(handleSendReminders))
	mux.Handle("GET /api/admin/perf", admin(handlePerfSnapshot))
}

// noDirListing hides directory indexes of the media root.
type noDirListing struct {
	fs http.FileSystem
}

// Open returns the named file, or not-exist for directories.
func (n noDirListing) Open(name string) (http.File, error) {
	f, err := n.fs.Open(name)
	if err != nil {
		return nil, err
	}
	if info, err := f.Stat(); err == nil && info.IsDir() {
		f.Close()
		return nil, fs.ErrNotExist
	}
	return f, nil
}
