package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/saadjs/gonext/internal/model"
	"github.com/saadjs/gonext/internal/storage"
)

type signupInput struct {
	Name     string `validate:"required"`
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

type loginInput struct {
	Email    string `validate:"required"`
	Password string `validate:"required"`
}

// SessionStore is the local account directory plus the current session.
// Passwords are compared verbatim; this is a demo auth layer, not a security
// boundary.
type SessionStore struct {
	store storage.Store
	log   *zap.Logger
	now   func() time.Time

	mu      sync.Mutex
	loading bool
	session *model.Session
}

func NewSessionStore(store storage.Store, log *zap.Logger) *SessionStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &SessionStore{
		store:   store,
		log:     log.Named("session"),
		now:     time.Now,
		loading: true,
	}
}

// Restore loads the persisted session. Loading reports true until it returns.
func (s *SessionStore) Restore(ctx context.Context) error {
	var sess model.Session
	found, err := storage.LoadJSON(ctx, s.store, storage.KeySession, &sess)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	switch {
	case errors.Is(err, storage.ErrCorruptState):
		s.log.Warn("stored session is corrupt, signing out", zap.Error(err))
		s.session = nil
	case err != nil:
		return err
	case found:
		s.session = &sess
	default:
		s.session = nil
	}
	return nil
}

func (s *SessionStore) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Current returns the signed-in session or nil.
func (s *SessionStore) Current() *model.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return nil
	}
	cp := *s.session
	return &cp
}

// Signup creates an account and signs it in. An existing email returns
// ErrDuplicateEmail and changes nothing.
func (s *SessionStore) Signup(ctx context.Context, name, email, password string) (model.Session, error) {
	in := signupInput{Name: strings.TrimSpace(name), Email: strings.TrimSpace(email), Password: password}
	if err := validate.Struct(in); err != nil {
		return model.Session{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	users, err := s.users(ctx)
	if err != nil {
		return model.Session{}, err
	}
	for _, u := range users {
		if u.Email == in.Email {
			return model.Session{}, ErrDuplicateEmail
		}
	}
	id, err := uuid.NewV7()
	if err != nil {
		return model.Session{}, fmt.Errorf("generate user id: %w", err)
	}
	user := model.User{
		ID:       id.String(),
		Name:     in.Name,
		Email:    in.Email,
		Password: in.Password,
		JoinedAt: s.now().UTC(),
	}
	if err := storage.SaveJSON(ctx, s.store, storage.KeyUsers, append(users, user)); err != nil {
		return model.Session{}, err
	}
	sess := model.Session{ID: user.ID, Name: user.Name, Email: user.Email}
	if err := s.setSession(ctx, sess); err != nil {
		return model.Session{}, err
	}
	s.log.Info("account created", zap.String("user_id", user.ID))
	return sess, nil
}

// Login signs in when email and password both match a stored user exactly.
func (s *SessionStore) Login(ctx context.Context, email, password string) (model.Session, error) {
	in := loginInput{Email: strings.TrimSpace(email), Password: password}
	if err := validate.Struct(in); err != nil {
		return model.Session{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	users, err := s.users(ctx)
	if err != nil {
		return model.Session{}, err
	}
	for _, u := range users {
		if u.Email == in.Email && u.Password == in.Password {
			sess := model.Session{ID: u.ID, Name: u.Name, Email: u.Email}
			if err := s.setSession(ctx, sess); err != nil {
				return model.Session{}, err
			}
			return sess, nil
		}
	}
	return model.Session{}, ErrInvalidCredentials
}

// Logout clears the session. Safe to call when signed out.
func (s *SessionStore) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.Delete(ctx, storage.KeySession); err != nil {
		return fmt.Errorf("delete %s: %w", storage.KeySession, err)
	}
	s.session = nil
	return nil
}

// users reads the account directory. A corrupt directory is treated as
// empty and overwritten by the next signup.
func (s *SessionStore) users(ctx context.Context) ([]model.User, error) {
	var users []model.User
	_, err := storage.LoadJSON(ctx, s.store, storage.KeyUsers, &users)
	if errors.Is(err, storage.ErrCorruptState) {
		s.log.Warn("stored users are corrupt, treating as empty", zap.Error(err))
		return []model.User{}, nil
	}
	if err != nil {
		return nil, err
	}
	return users, nil
}

func (s *SessionStore) setSession(ctx context.Context, sess model.Session) error {
	if err := storage.SaveJSON(ctx, s.store, storage.KeySession, sess); err != nil {
		return err
	}
	s.session = &sess
	s.loading = false
	return nil
}
