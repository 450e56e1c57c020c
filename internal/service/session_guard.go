package service

import (
	"context"
	"sync"
	"time"

	"aficionado-be/internal/pkg/apperror"
	"aficionado-be/internal/repository/contract"
	"aficionado-be/pkg/events"
	"aficionado-be/pkg/store"
)

// EventPublisher is satisfied by *nats.Publisher.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type sessionLock struct {
	mu   sync.Mutex // serialises read-modify-write of the stored record
	busy sync.Mutex // held for the whole duration of a gateway call
}

// SessionGuard serialises updates to a session record and tracks in-flight
// gateway calls. Locks are per process; a Redis store shared by several
// instances gets last-writer-wins between instances.
type SessionGuard struct {
	repo  contract.SessionRepository
	locks sync.Map
	now   func() time.Time
}

func NewSessionGuard(repo contract.SessionRepository) *SessionGuard {
	return &SessionGuard{repo: repo, now: time.Now}
}

func (g *SessionGuard) lockFor(sessionID string) *sessionLock {
	lk, _ := g.locks.LoadOrStore(sessionID, &sessionLock{})
	return lk.(*sessionLock)
}

func (g *SessionGuard) forget(sessionID string) {
	g.locks.Delete(sessionID)
}

// TryAcquire marks the session busy. The returned release func must be called.
func (g *SessionGuard) TryAcquire(sessionID string) (func(), error) {
	lk := g.lockFor(sessionID)
	if !lk.busy.TryLock() {
		return nil, apperror.NewSessionBusy(sessionID)
	}
	return lk.busy.Unlock, nil
}

// Update reloads the stored record, applies fn and saves it, then copies the
// result into session. The record is saved even when fn returns an error, so
// inline errors recorded by fn survive.
func (g *SessionGuard) Update(ctx context.Context, session *store.Session, fn func(s *store.Session) error) error {
	lk := g.lockFor(session.ID)
	lk.mu.Lock()
	defer lk.mu.Unlock()

	fresh, ok, err := g.repo.Get(ctx, session.ID)
	if err != nil {
		return apperror.NewInternal(err)
	}
	if !ok {
		// Expired between requests; the caller's copy is the best state we have.
		fresh = session.Clone()
	}
	if fresh.Username != session.Username {
		return apperror.NewUnauthorized("session belongs to another user")
	}

	fnErr := fn(fresh)

	fresh.UpdatedAt = g.now()
	if err := g.repo.Save(ctx, fresh); err != nil {
		return apperror.NewInternal(err)
	}
	*session = *fresh
	return fnErr
}

func publish(ctx context.Context, pub EventPublisher, event events.Event, log func(string, map[string]interface{})) {
	if pub == nil {
		return
	}
	if err := pub.Publish(ctx, event); err != nil {
		log("Failed to publish workspace event", map[string]interface{}{
			"type":  event.EventType(),
			"error": err.Error(),
		})
	}
}
