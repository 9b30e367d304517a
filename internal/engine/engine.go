package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"taskdesk/internal/clock"
	"taskdesk/internal/config"
	"taskdesk/internal/domain"
	"taskdesk/internal/events"
	"taskdesk/internal/repo"
	"taskdesk/internal/seed"
	"taskdesk/internal/store"
)

// ErrNoSession is returned when an operation needs a caller identity and none was given.
var ErrNoSession = errors.New("no session user; pass --as or run td use <user-id>")

type Engine struct {
	Store  *store.Store
	Repo   repo.Repo
	Seeder seed.Seeder
	Events *events.Writer
	Config *config.Config
	Log    *zap.Logger
	Now    func() time.Time
}

// New wires the store, repositories, seeder and activity log around one backend.
func New(b store.Backend, cfg *config.Config, log *zap.Logger) *Engine {
	if cfg == nil {
		cfg = config.Default()
	}
	if log == nil {
		log = zap.NewNop()
	}
	e := &Engine{Config: cfg, Log: log, Now: time.Now}
	now := func() time.Time { return e.now() }
	e.Store = store.New(b, log.Named("store"))
	e.Events = &events.Writer{Store: e.Store, Now: now}
	e.Repo = repo.New(e.Store, repo.Options{
		Events:             e.Events,
		Now:                now,
		DeadlineWindowDays: cfg.Deadlines.WindowDays,
	})
	e.Seeder = seed.Seeder{Store: e.Store, Now: now, Log: log.Named("seed")}
	return e
}

func (e *Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func (e *Engine) NowISO() string {
	return clock.ISO(e.now())
}

func (e *Engine) Close() error {
	return e.Store.Close()
}

// Session resolves userID to the session the repositories authorize against.
// Inactive users cannot act.
func (e *Engine) Session(ctx context.Context, userID string) (domain.Session, error) {
	if userID == "" {
		return domain.Session{}, ErrNoSession
	}
	u, err := e.Repo.Users.Get(ctx, userID)
	if err != nil {
		return domain.Session{}, err
	}
	if !u.IsActive {
		return domain.Session{}, fmt.Errorf("user %s is inactive", userID)
	}
	return domain.Session{UserID: u.ID, Role: u.Role}, nil
}

// RequireAdmin resolves the session and rejects non-admins.
func (e *Engine) RequireAdmin(ctx context.Context, userID string) (domain.Session, error) {
	s, err := e.Session(ctx, userID)
	if err != nil {
		return s, err
	}
	if !s.IsAdmin() {
		return s, &repo.Error{Kind: repo.ErrForbidden, Message: "admin role required"}
	}
	return s, nil
}

// SweepDeadlines runs one deadline check at the current time and logs the result.
func (e *Engine) SweepDeadlines(ctx context.Context) (int, error) {
	now := e.NowISO()
	sent, err := e.Repo.Notifications.RunDeadlineCheck(ctx, now)
	if err != nil {
		return 0, err
	}
	e.Log.Info("deadline sweep finished", zap.String("now", now), zap.Int("sent", sent))
	return sent, nil
}
