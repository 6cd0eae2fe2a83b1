package di

import (
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"basic_authn/internal/app/config"
	"basic_authn/internal/platform/cache"
)

func TestNewUserRepository(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	t.Run("without redis uses the store directly", func(t *testing.T) {
		repo := NewUserRepository(db, nil, 0)
		_, isCache := repo.(*cache.CachingUserRepository)
		assert.False(t, isCache)
	})

	t.Run("with redis wraps the store in a cache", func(t *testing.T) {
		mr := miniredis.RunT(t)
		rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { _ = rdb.Close() })

		repo := NewUserRepository(db, rdb, 0)
		_, isCache := repo.(*cache.CachingUserRepository)
		assert.True(t, isCache)
	})
}

func TestNewPasswordHasher(t *testing.T) {
	tests := []struct {
		algorithm  string
		wantPrefix string
	}{
		{config.HasherBcrypt, "$2a$"},
		{config.HasherArgon2id, "$argon2id$"},
	}

	for _, tt := range tests {
		t.Run(tt.algorithm, func(t *testing.T) {
			h, err := NewPasswordHasher(config.HasherConfig{Algorithm: tt.algorithm, BcryptCost: 4})
			require.NoError(t, err)

			hash, err := h.Hash("Valid_password_1*")
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(hash, tt.wantPrefix), hash)

			ok, err := h.Verify(hash, "Valid_password_1*")
			require.NoError(t, err)
			assert.True(t, ok)
		})
	}

	t.Run("unknown algorithm", func(t *testing.T) {
		_, err := NewPasswordHasher(config.HasherConfig{Algorithm: "md5"})
		assert.Error(t, err)
	})
}
