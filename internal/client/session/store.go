// Package session owns the client-side auth state: the bearer token and the
// signed-in user, persisted under fixed file names so a restart resumes the
// session. State changes fan out to subscribers instead of living in a
// process-wide singleton.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/kirillkom/smartdocs/internal/core/domain"
)

const (
	tokenFile = "token"
	userFile  = "user"
)

// AuthAPI is the slice of the document-service client the store needs.
type AuthAPI interface {
	Login(ctx context.Context, username, password string) (*domain.AuthToken, error)
	Register(ctx context.Context, reg domain.Registration) (*domain.User, error)
}

type Session struct {
	Token string
	User  *domain.User
}

func (s Session) IsAuthenticated() bool {
	return s.Token != ""
}

type Store struct {
	dir string

	mu      sync.RWMutex
	current Session
	subs    map[int]func(Session)
	nextSub int
}

// Open restores any persisted session from dir, creating it when missing.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}

	store := &Store{
		dir:  dir,
		subs: make(map[int]func(Session)),
	}
	if err := store.restore(); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *Store) restore() error {
	raw, err := os.ReadFile(filepath.Join(s.dir, tokenFile))
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read persisted token: %w", err)
	}
	s.current.Token = string(raw)

	userRaw, err := os.ReadFile(filepath.Join(s.dir, userFile))
	if err == nil {
		var user domain.User
		if json.Unmarshal(userRaw, &user) == nil {
			s.current.User = &user
		}
	}
	return nil
}

// Login authenticates and persists the returned token and user.
func (s *Store) Login(ctx context.Context, api AuthAPI, username, password string) error {
	token, err := api.Login(ctx, username, password)
	if err != nil {
		return err
	}
	user := token.User
	return s.setSession(Session{Token: token.AccessToken, User: &user})
}

// Register creates the account and chains into a login with the same
// credentials.
func (s *Store) Register(ctx context.Context, api AuthAPI, reg domain.Registration) error {
	if _, err := api.Register(ctx, reg); err != nil {
		return err
	}
	return s.Login(ctx, api, reg.Username, reg.Password)
}

// Logout clears the in-memory session and the persisted files regardless of
// prior state.
func (s *Store) Logout() error {
	return s.setSession(Session{})
}

func (s *Store) setSession(next Session) error {
	s.mu.Lock()
	s.current = next
	subs := make([]func(Session), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	if err := s.persist(next); err != nil {
		return err
	}
	for _, fn := range subs {
		fn(next)
	}
	return nil
}

func (s *Store) persist(next Session) error {
	tokenPath := filepath.Join(s.dir, tokenFile)
	userPath := filepath.Join(s.dir, userFile)

	if next.Token == "" {
		if err := os.Remove(tokenPath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("clear persisted token: %w", err)
		}
		if err := os.Remove(userPath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("clear persisted user: %w", err)
		}
		return nil
	}

	if err := os.WriteFile(tokenPath, []byte(next.Token), 0o600); err != nil {
		return fmt.Errorf("persist token: %w", err)
	}
	raw, err := json.Marshal(next.User)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	if err := os.WriteFile(userPath, raw, 0o600); err != nil {
		return fmt.Errorf("persist user: %w", err)
	}
	return nil
}

// Token implements the API client's token source.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Token
}

func (s *Store) Current() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

func (s *Store) IsAuthenticated() bool {
	return s.Token() != ""
}

// Subscribe registers fn for session changes and returns an unsubscribe
// function.
func (s *Store) Subscribe(fn func(Session)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}
