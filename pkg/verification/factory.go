package verification

import (
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// RepositoryConfig contains configuration for creating a token repository.
type RepositoryConfig struct {
	// Pool is required for PostgreSQL repositories.
	Pool *pgxpool.Pool
}

// NewTokenRepository creates a token repository for the persistence type.
func NewTokenRepository(persistenceType string, config RepositoryConfig) (TokenRepository, error) {
	switch persistenceType {
	case "postgres", "postgresql":
		if config.Pool == nil {
			return nil, fmt.Errorf("pool required for postgres repository")
		}
		return NewRepository(config.Pool), nil
	case "memory":
		return NewInMemoryTokenRepository(), nil
	default:
		return nil, fmt.Errorf("unsupported persistence type: %s (supported: postgres, memory)", persistenceType)
	}
}
