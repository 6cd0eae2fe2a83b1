// Package di provides dependency injection factories for creating application components.
package di

import (
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"basic_authn/internal/app/config"
	authadapters "basic_authn/internal/feature/auth/adapters"
	"basic_authn/internal/feature/auth/usecase"
	"basic_authn/internal/platform/cache"
	"basic_authn/internal/platform/password"
)

// NewUserRepository creates the credential store.
// If Redis is available, lookups go through a Redis cache.
// Otherwise, it uses the database directly.
func NewUserRepository(db *gorm.DB, rdb *redis.Client, ttl time.Duration) usecase.UserRepository {
	store := authadapters.NewUserGorm(db)
	if rdb != nil {
		return cache.NewCachingUserRepository(rdb, ttl, store, "users")
	}
	return store
}

// NewPasswordHasher creates a hasher that encodes with the configured algorithm
// and verifies both bcrypt and argon2id hashes.
func NewPasswordHasher(cfg config.HasherConfig) (*password.Delegating, error) {
	bc := password.NewBcrypt(cfg.BcryptCost)
	a2, err := password.NewArgon2(password.DefaultArgon2Config)
	if err != nil {
		return nil, err
	}

	switch cfg.Algorithm {
	case config.HasherBcrypt, "":
		return password.NewDelegating(bc, bc, a2), nil
	case config.HasherArgon2id:
		return password.NewDelegating(a2, bc, a2), nil
	default:
		return nil, fmt.Errorf("unsupported password hasher %q", cfg.Algorithm)
	}
}
