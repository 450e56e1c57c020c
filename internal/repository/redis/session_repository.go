package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"aficionado-be/internal/repository/contract"
	"aficionado-be/pkg/store"

	goredis "github.com/redis/go-redis/v9"
)

const keyPrefix = "aficionado:session:"

// SessionRepository keeps sessions as JSON values so several API instances can
// serve the same browser session.
type SessionRepository struct {
	rdb *goredis.Client
	ttl time.Duration
}

var _ contract.SessionRepository = &SessionRepository{}

func NewSessionRepository(rdb *goredis.Client, ttl time.Duration) *SessionRepository {
	return &SessionRepository{rdb: rdb, ttl: ttl}
}

func (r *SessionRepository) Save(ctx context.Context, session *store.Session) error {
	payload, err := encode(session)
	if err != nil {
		return err
	}
	if err := r.rdb.Set(ctx, key(session.ID), payload, r.ttl).Err(); err != nil {
		return fmt.Errorf("save session %s: %w", session.ID, err)
	}
	return nil
}

func (r *SessionRepository) Get(ctx context.Context, sessionID string) (*store.Session, bool, error) {
	payload, err := r.rdb.Get(ctx, key(sessionID)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load session %s: %w", sessionID, err)
	}

	session, err := decode(payload)
	if err != nil {
		return nil, false, fmt.Errorf("decode session %s: %w", sessionID, err)
	}
	return session, true, nil
}

func (r *SessionRepository) Delete(ctx context.Context, sessionID string) error {
	return r.rdb.Del(ctx, key(sessionID)).Err()
}

func encode(session *store.Session) ([]byte, error) {
	payload, err := json.Marshal(session)
	if err != nil {
		return nil, fmt.Errorf("encode session: %w", err)
	}
	return payload, nil
}

// decode never returns a session with a nil file set.
func decode(payload []byte) (*store.Session, error) {
	var session store.Session
	if err := json.Unmarshal(payload, &session); err != nil {
		return nil, err
	}
	session.Files()
	return &session, nil
}

func key(sessionID string) string {
	return keyPrefix + sessionID
}
