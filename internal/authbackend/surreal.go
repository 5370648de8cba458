package authbackend

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/surrealdb/surrealdb.go"
	"github.com/wellnash/wellnash/internal/domain"
)

// SurrealConn is the subset of a SurrealDB connection the backend needs.
type SurrealConn interface {
	SignIn(ctx context.Context, authData map[string]any) (string, error)
	SignUp(ctx context.Context, authData map[string]any) (string, error)
	Authenticate(ctx context.Context, token string) error
	AuthUser(ctx context.Context) (*domain.User, error)
	Close(ctx context.Context) error
}

// SurrealDialer opens a connection already scoped to the namespace and database.
type SurrealDialer func(ctx context.Context) (SurrealConn, error)

// Surreal authenticates users through SurrealDB record access. Record
// sign-in changes the auth state of the connection it runs on, so every call
// uses its own short-lived connection.
type Surreal struct {
	dial   SurrealDialer
	ns     string
	db     string
	access string
}

// NewSurreal creates a backend using the access method access defined in ns/db.
func NewSurreal(dial SurrealDialer, ns, db, access string) *Surreal {
	return &Surreal{dial: dial, ns: ns, db: db, access: access}
}

// DialSurreal returns a dialer for the SurrealDB endpoint at url.
func DialSurreal(url, ns, db string) SurrealDialer {
	return func(ctx context.Context) (SurrealConn, error) {
		conn, err := surrealdb.FromEndpointURLString(ctx, url)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to surrealdb: %w", err)
		}
		if err := conn.Use(ctx, ns, db); err != nil {
			conn.Close(ctx)
			return nil, fmt.Errorf("failed to use namespace/db: %w", err)
		}
		return &surrealConn{db: conn}, nil
	}
}

func (s *Surreal) authData(email, password string) map[string]any {
	return map[string]any{
		"ns":       s.ns,
		"db":       s.db,
		"ac":       s.access,
		"email":    email,
		"password": password,
	}
}

// SignIn runs the access method's SIGNIN clause.
func (s *Surreal) SignIn(ctx context.Context, email, password string) (domain.Result, error) {
	return s.withConn(ctx, func(conn SurrealConn) (domain.Result, error) {
		token, err := conn.SignIn(ctx, s.authData(email, password))
		if err != nil {
			slog.DebugContext(ctx, "SurrealDB rejected sign-in", "email", email, "error", err)
			return domain.Rejected(MsgInvalidCredentials), nil
		}
		return domain.Result{Session: &domain.Session{AccessToken: token, Email: email}}, nil
	})
}

// SignUp runs the access method's SIGNUP clause. The database's own message
// is passed through, e.g. a unique index violation on email.
func (s *Surreal) SignUp(ctx context.Context, email, password string) (domain.Result, error) {
	return s.withConn(ctx, func(conn SurrealConn) (domain.Result, error) {
		token, err := conn.SignUp(ctx, s.authData(email, password))
		if err != nil {
			slog.DebugContext(ctx, "SurrealDB rejected sign-up", "email", email, "error", err)
			return domain.Rejected(err.Error()), nil
		}
		return domain.Result{Session: &domain.Session{AccessToken: token, Email: email}}, nil
	})
}

// VerifySession authenticates a fresh connection with token and reads $auth.
func (s *Surreal) VerifySession(ctx context.Context, token string) (*domain.User, error) {
	conn, err := s.dial(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close(ctx)

	if err := conn.Authenticate(ctx, token); err != nil {
		return nil, domain.ErrInvalidSession
	}
	return conn.AuthUser(ctx)
}

func (s *Surreal) withConn(ctx context.Context, fn func(SurrealConn) (domain.Result, error)) (domain.Result, error) {
	conn, err := s.dial(ctx)
	if err != nil {
		return domain.Result{}, err
	}
	defer conn.Close(ctx)
	return fn(conn)
}

// surrealConn adapts *surrealdb.DB to SurrealConn.
type surrealConn struct {
	db *surrealdb.DB
}

type surrealRecord struct {
	ID    any    `json:"id"`
	Email string `json:"email"`
}

func (c *surrealConn) SignIn(ctx context.Context, authData map[string]any) (string, error) {
	return c.db.SignIn(ctx, authData)
}

func (c *surrealConn) SignUp(ctx context.Context, authData map[string]any) (string, error) {
	return c.db.SignUp(ctx, authData)
}

func (c *surrealConn) Authenticate(ctx context.Context, token string) error {
	return c.db.Authenticate(ctx, token)
}

func (c *surrealConn) AuthUser(ctx context.Context) (*domain.User, error) {
	results, err := surrealdb.Query[[]surrealRecord](ctx, c.db, "SELECT id, email FROM $auth", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get authenticated user: %w", err)
	}
	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, domain.ErrInvalidSession
	}
	rec := (*results)[0].Result[0]
	return &domain.User{ID: fmt.Sprint(rec.ID), Email: rec.Email}, nil
}

func (c *surrealConn) Close(ctx context.Context) error {
	return c.db.Close(ctx)
}
