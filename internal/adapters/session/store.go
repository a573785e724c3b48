package session

import (
	"context"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"myaccount/internal/adapters/observability"
	"myaccount/internal/domain"
)

// User is the authenticated principal held for the lifetime of a session.
type User struct {
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
	Token    string `json:"token"`
	PMSID    string `json:"pmsId"`
}

// Event is delivered to subscribers on logout.
type Event struct {
	Type   string // "logout"
	Reason string
}

// Store is the explicit session context passed to the gateway: it replaces
// ambient global session state with one object whose token is mutated only by
// login, refresh and logout. The session record is mirrored into a key-value
// store under a per-session key and cleared in full on logout.
type Store struct {
	kv  domain.Cache // optional; nil keeps the session memory-only
	key string

	mu   sync.RWMutex
	user *User
	subs []func(Event)
}

func NewStore(kv domain.Cache, u User) *Store {
	s := &Store{
		kv:  kv,
		key: "session:" + uuid.NewString(),
	}
	s.mu.Lock()
	s.user = &u
	s.persist()
	s.mu.Unlock()
	observability.ObserveSession("login")
	return s
}

func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return ""
	}
	return s.user.Token
}

// SetToken installs a refreshed token. Called by the gateway's
// re-authentication path only.
func (s *Store) SetToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return
	}
	s.user.Token = token
	s.persist()
}

// UserID returns the explicit user id, falling back to the token's
// "userId"/"sub" claim when the session was created from a bare token.
func (s *Store) UserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return ""
	}
	if s.user.UserID != "" {
		return s.user.UserID
	}
	claims, err := s.claimsLocked()
	if err != nil {
		return ""
	}
	if id, ok := claims["userId"].(string); ok && id != "" {
		return id
	}
	if sub, _ := claims.GetSubject(); sub != "" {
		return sub
	}
	return ""
}

// User returns the session principal, if logged in.
func (s *Store) User() (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return User{}, false
	}
	return *s.user, true
}

// ExpiresAt reads the token's exp claim. ok is false when there is no token
// or no expiry.
func (s *Store) ExpiresAt() (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	claims, err := s.claimsLocked()
	if err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// OnLogout registers a subscriber; all subscribers run synchronously during
// Logout.
func (s *Store) OnLogout(fn func(Event)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

// Logout clears the principal and the persisted session record, then
// notifies subscribers. Idempotent.
func (s *Store) Logout(reason string) {
	s.mu.Lock()
	if s.user == nil {
		s.mu.Unlock()
		return
	}
	s.user = nil
	if s.kv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := s.kv.Del(ctx, s.key); err != nil {
			log.Warn().Err(err).Msg("failed to clear persisted session")
		}
		cancel()
	}
	subs := append(([]func(Event))(nil), s.subs...)
	s.mu.Unlock()

	observability.ObserveSession("logout")
	log.Info().Str("reason", reason).Msg("session terminated")
	ev := Event{Type: "logout", Reason: reason}
	for _, fn := range subs {
		fn(ev)
	}
}

// claimsLocked parses the token without verifying its signature: the client
// is not the token's audience, it only mirrors claims the server issued.
// Callers hold s.mu.
func (s *Store) claimsLocked() (jwt.MapClaims, error) {
	if s.user == nil || s.user.Token == "" {
		return nil, jwt.ErrTokenMalformed
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(s.user.Token, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// persist mirrors the session into the KV store. Best-effort: a KV outage
// must not block the user. Callers hold s.mu.
func (s *Store) persist() {
	if s.kv == nil || s.user == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.kv.Set(ctx, s.key, *s.user, 0); err != nil {
		log.Warn().Err(err).Msg("failed to persist session")
	}
}
