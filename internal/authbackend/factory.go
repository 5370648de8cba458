package authbackend

import (
	"fmt"

	"github.com/wellnash/wellnash/internal/config"
	"github.com/wellnash/wellnash/internal/domain"
)

// New creates and returns an auth backend based on the configuration.
func New(cfg config.Provider) (domain.Authenticator, error) {
	switch cfg.GetAuthProvider() {
	case config.ProviderMemory:
		return NewMemory(), nil
	case config.ProviderSupabase:
		if cfg.GetSupabaseAnonKey() == "" {
			return nil, fmt.Errorf("auth provider is 'supabase' but SUPABASE_ANON_KEY is not set")
		}
		return NewSupabase(cfg.GetSupabaseURL(), cfg.GetSupabaseAnonKey(), nil), nil
	case config.ProviderSurreal:
		dial := DialSurreal(cfg.GetSurrealURL(), cfg.GetSurrealNs(), cfg.GetSurrealDb())
		return NewSurreal(dial, cfg.GetSurrealNs(), cfg.GetSurrealDb(), cfg.GetSurrealAccess()), nil
	default:
		return nil, fmt.Errorf("unknown auth provider: %s", cfg.GetAuthProvider())
	}
}
