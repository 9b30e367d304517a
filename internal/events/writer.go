package events

import (
	"context"
	"time"

	"taskdesk/internal/clock"
	"taskdesk/internal/domain"
	"taskdesk/internal/store"
)

// MaxEvents bounds the activity log; older entries are dropped on append.
const MaxEvents = 500

// Writer appends to the activity log kept under store.KeyActivity.
// A nil *Writer is valid and records nothing.
type Writer struct {
	Store *store.Store
	Now   func() time.Time
}

type EventPayload map[string]any

func (w *Writer) Append(ctx context.Context, evtType, entityKind, entityID, actorID string, payload EventPayload) {
	if w == nil || w.Store == nil {
		return
	}
	now := time.Now
	if w.Now != nil {
		now = w.Now
	}
	log := store.LoadArray(ctx, w.Store, store.KeyActivity, []domain.Event{})
	var next int64 = 1
	if n := len(log); n > 0 {
		next = log[n-1].ID + 1
	}
	log = append(log, domain.Event{
		ID:         next,
		TS:         clock.ISO(now()),
		Type:       evtType,
		EntityKind: entityKind,
		EntityID:   entityID,
		ActorID:    actorID,
		Payload:    payload,
	})
	if len(log) > MaxEvents {
		log = log[len(log)-MaxEvents:]
	}
	w.Store.Save(ctx, store.KeyActivity, log)
}

// Tail returns up to n most recent events, oldest first.
func (w *Writer) Tail(ctx context.Context, n int) []domain.Event {
	if w == nil || w.Store == nil {
		return nil
	}
	log := store.LoadArray(ctx, w.Store, store.KeyActivity, []domain.Event{})
	if n > 0 && len(log) > n {
		log = log[len(log)-n:]
	}
	return log
}

type actorKey struct{}

// WithActor records who is acting, for operations that take no explicit session.
func WithActor(ctx context.Context, actorID string) context.Context {
	return context.WithValue(ctx, actorKey{}, actorID)
}

func ActorFrom(ctx context.Context) string {
	id, _ := ctx.Value(actorKey{}).(string)
	return id
}
