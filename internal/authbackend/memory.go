package authbackend

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wellnash/wellnash/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

// Messages returned by the memory backend, worded like a hosted auth service.
const (
	MsgInvalidCredentials = "Invalid login credentials"
	MsgUserExists         = "User already registered"
)

const memorySessionTTL = 24 * time.Hour

type memorySession struct {
	user    domain.User
	expires time.Time
}

// Memory is an in-process auth backend for development and tests. Passwords
// are stored as bcrypt hashes; sessions are random tokens.
type Memory struct {
	mu       sync.RWMutex
	users    map[string]memoryUser
	sessions map[string]memorySession
	cost     int
	now      func() time.Time
}

type memoryUser struct {
	id   string
	hash []byte
}

// NewMemory creates an empty memory backend.
func NewMemory() *Memory {
	return &Memory{
		users:    make(map[string]memoryUser),
		sessions: make(map[string]memorySession),
		cost:     bcrypt.DefaultCost,
		now:      time.Now,
	}
}

// NewMemoryWithCost is NewMemory with a custom bcrypt cost; tests use bcrypt.MinCost.
func NewMemoryWithCost(cost int) *Memory {
	m := NewMemory()
	m.cost = cost
	return m
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SignUp registers email and starts a session.
func (m *Memory) SignUp(ctx context.Context, email, password string) (domain.Result, error) {
	key := normalizeEmail(email)
	hash, err := bcrypt.GenerateFromPassword([]byte(password), m.cost)
	if err != nil {
		return domain.Result{}, fmt.Errorf("failed to hash password: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.users[key]; exists {
		return domain.Rejected(MsgUserExists), nil
	}
	u := memoryUser{id: uuid.NewString(), hash: hash}
	m.users[key] = u
	return domain.Result{Session: m.startSessionLocked(u.id, key)}, nil
}

// SignIn checks the password and starts a session.
func (m *Memory) SignIn(ctx context.Context, email, password string) (domain.Result, error) {
	key := normalizeEmail(email)

	m.mu.RLock()
	u, ok := m.users[key]
	m.mu.RUnlock()
	if !ok {
		return domain.Rejected(MsgInvalidCredentials), nil
	}
	if err := bcrypt.CompareHashAndPassword(u.hash, []byte(password)); err != nil {
		return domain.Rejected(MsgInvalidCredentials), nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return domain.Result{Session: m.startSessionLocked(u.id, key)}, nil
}

// VerifySession reports the user owning an unexpired token.
func (m *Memory) VerifySession(ctx context.Context, token string) (*domain.User, error) {
	m.mu.RLock()
	s, ok := m.sessions[token]
	m.mu.RUnlock()
	if !ok || m.now().After(s.expires) {
		return nil, domain.ErrInvalidSession
	}
	u := s.user
	return &u, nil
}

// SignOut drops a session. Unknown tokens are ignored.
func (m *Memory) SignOut(ctx context.Context, token string) error {
	m.mu.Lock()
	delete(m.sessions, token)
	m.mu.Unlock()
	return nil
}

func (m *Memory) startSessionLocked(id, email string) *domain.Session {
	token := uuid.NewString()
	expires := m.now().Add(memorySessionTTL)
	m.sessions[token] = memorySession{user: domain.User{ID: id, Email: email}, expires: expires}
	return &domain.Session{AccessToken: token, Email: email, ExpiresAt: expires}
}
