package api

import (
	"errors"
	"strings"
	"time"

	"github.com/cormacgwin/goodwin-challenge/internal/db"
	"github.com/cormacgwin/goodwin-challenge/internal/services"
)

const (
	defaultAuthTokenTTL  = 7 * 24 * time.Hour
	rememberAuthTokenTTL = 30 * 24 * time.Hour

	loginAttemptLimit  = 8
	loginAttemptWindow = 15 * time.Minute
)

// Dependencies are the services the HTTP surface talks to. They share one
// snapshot cache so that every read sees the latest mutation.
type Dependencies struct {
	Auth      *services.AuthService
	Challenge *services.ChallengeService
	Toggles   *services.ToggleService
	Reports   *services.ReportService
	Snapshots *services.SnapshotCache
}

// NewStoreDependencies wires the services over a sqlite-backed store.
func NewStoreDependencies(store *db.Store, location *time.Location, now func() time.Time) Dependencies {
	cache := services.NewSnapshotCache(store)
	return Dependencies{
		Auth:      services.NewAuthService(store.Repositories().Users),
		Challenge: services.NewChallengeService(cache, location, now),
		Toggles:   services.NewToggleService(cache, location),
		Reports:   services.NewReportService(store, location, now),
		Snapshots: cache,
	}
}

type Config struct {
	SecretKey    string
	Location     *time.Location
	CookieSecure bool
	TimelineTick time.Duration
	Now          func() time.Time
}

type Handler struct {
	secretKey     []byte
	location      *time.Location
	cookieSecure  bool
	timelineTick  time.Duration
	now           func() time.Time
	cookies       *cookieSealer
	loginThrottle *loginThrottle

	authService *services.AuthService
	challenge   *services.ChallengeService
	toggles     *services.ToggleService
	reports     *services.ReportService
	snapshots   *services.SnapshotCache
}

func NewHandler(cfg Config, deps Dependencies) (*Handler, error) {
	secret := strings.TrimSpace(cfg.SecretKey)
	if secret == "" {
		return nil, errors.New("secret key is required")
	}
	if deps.Auth == nil || deps.Challenge == nil || deps.Toggles == nil || deps.Reports == nil || deps.Snapshots == nil {
		return nil, errors.New("handler dependencies are incomplete")
	}

	location := cfg.Location
	if location == nil {
		location = time.UTC
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	sealer, err := newCookieSealer([]byte(secret), authCookiePurpose)
	if err != nil {
		return nil, err
	}

	return &Handler{
		secretKey:     []byte(secret),
		location:      location,
		cookieSecure:  cfg.CookieSecure,
		timelineTick:  cfg.TimelineTick,
		now:           now,
		cookies:       sealer,
		loginThrottle: newLoginThrottle(loginAttemptLimit, loginAttemptWindow),
		authService:   deps.Auth,
		challenge:     deps.Challenge,
		toggles:       deps.Toggles,
		reports:       deps.Reports,
		snapshots:     deps.Snapshots,
	}, nil
}
