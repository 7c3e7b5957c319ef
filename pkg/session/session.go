// Package session tracks the signed-in user of a client and keeps the bearer
// token in local storage.
package session

import (
	"context"
	"errors"
	"sync"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/client"
	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/pkg/storage"
)

const TokenKey = "token"

type API interface {
	SetToken(token string)
	Login(ctx context.Context, email, password string) (*transport.AuthResponse, error)
	Register(ctx context.Context, req transport.RegisterRequest) (*transport.AuthResponse, error)
	Logout(ctx context.Context) error
	Profile(ctx context.Context) (*models.User, error)
}

type Session struct {
	api   API
	store storage.Store

	mu      sync.RWMutex
	user    *models.User
	loading bool
}

func New(api API, store storage.Store) *Session {
	return &Session{api: api, store: store, loading: true}
}

// Init restores a stored token. A rejected token is discarded; any other
// failure leaves the session signed out without an error.
func (s *Session) Init(ctx context.Context) {
	l := logging.FromContext(ctx).With("svc", "session.init")
	defer s.setLoading(false)

	raw, err := s.store.Get(TokenKey)
	if err != nil || len(raw) == 0 {
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			l.Warn("session_restore_failed", "reason", "cannot read token", "error", err)
		}
		return
	}

	s.api.SetToken(string(raw))
	user, err := s.api.Profile(ctx)
	if err != nil {
		s.api.SetToken("")
		if client.IsUnauthorized(err) {
			if err := s.store.Delete(TokenKey); err != nil {
				l.Warn("session_restore_failed", "reason", "cannot drop token", "error", err)
			}
			return
		}
		l.Warn("session_restore_failed", "reason", "cannot load profile", "error", err)
		return
	}

	s.mu.Lock()
	s.user = user
	s.mu.Unlock()
}

func (s *Session) Login(ctx context.Context, email, password string) (*models.User, error) {
	res, err := s.api.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return s.signIn(ctx, res)
}

func (s *Session) Register(ctx context.Context, req transport.RegisterRequest) (*models.User, error) {
	res, err := s.api.Register(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.signIn(ctx, res)
}

func (s *Session) signIn(ctx context.Context, res *transport.AuthResponse) (*models.User, error) {
	if err := s.store.Set(TokenKey, []byte(res.Token)); err != nil {
		logging.FromContext(ctx).Warn("session_persist_failed", "error", err)
	}
	s.api.SetToken(res.Token)

	s.mu.Lock()
	s.user = res.User
	s.mu.Unlock()
	return res.User, nil
}

// Logout always signs out locally. Telling the server is best effort.
func (s *Session) Logout(ctx context.Context) {
	l := logging.FromContext(ctx).With("svc", "session.logout")

	if err := s.api.Logout(ctx); err != nil {
		l.Debug("logout_notify_failed", "error", err)
	}
	if err := s.store.Delete(TokenKey); err != nil {
		l.Warn("logout_failed", "reason", "cannot drop token", "error", err)
	}
	s.api.SetToken("")

	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()
}

// SetUser replaces the cached user, e.g. after a profile update.
func (s *Session) SetUser(u *models.User) {
	s.mu.Lock()
	s.user = u
	s.mu.Unlock()
}

func (s *Session) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

func (s *Session) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *Session) IsAdmin() bool {
	u := s.User()
	return u != nil && u.Role == models.RoleAdmin
}

func (s *Session) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}

var _ API = (*client.Client)(nil)
