package helpers

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mksolution/account-service/internal/domain/entity"
)

// SessionStore keeps a small per-user session record in Redis so that
// bearer tokens can be revoked before they expire (logout, password
// reset). A nil client disables the store; callers treat every session
// as live in that case.
type SessionStore struct {
	rdb *redis.Client
}

func NewSessionStore(rdb *redis.Client) *SessionStore {
	return &SessionStore{rdb: rdb}
}

func sessionKey(email string) string { return "user:session:" + email }

// Put records an active session for the user, expiring with the token.
func (s *SessionStore) Put(ctx context.Context, u *entity.User, ttl time.Duration) error {
	if s == nil || s.rdb == nil {
		return nil
	}
	key := sessionKey(u.Email)
	pipe := s.rdb.Pipeline()
	pipe.HSet(ctx, key, map[string]any{
		"user_id":    u.ID,
		"email":      u.Email,
		"role":       string(u.Role),
		"created_at": time.Now().UTC().Format(time.RFC3339Nano),
	})
	pipe.Expire(ctx, key, ttl)
	_, err := pipe.Exec(ctx)
	return err
}

// Alive reports whether a session record exists for the subject. With
// no Redis configured every session counts as alive.
func (s *SessionStore) Alive(ctx context.Context, email string) bool {
	if s == nil || s.rdb == nil {
		return true
	}
	n, err := s.rdb.Exists(ctx, sessionKey(email)).Result()
	if err != nil {
		// Fail open: Redis being down must not lock every user out.
		return true
	}
	return n > 0
}

// Drop revokes the user's session, invalidating outstanding tokens.
func (s *SessionStore) Drop(ctx context.Context, email string) error {
	if s == nil || s.rdb == nil {
		return nil
	}
	return s.rdb.Del(ctx, sessionKey(email)).Err()
}

// NewRedisClient initializes a redis client.
func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}
