// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"basic_authn/internal/feature/auth/domain/entity"
	"basic_authn/internal/feature/auth/usecase"
)

const (
	defaultTTL       = 5 * time.Minute
	defaultNamespace = "users"
)

// cachedUser is the cache representation of a user.
// entity.User hides the hash from JSON, so it is copied here explicitly.
type cachedUser struct {
	ID           uint      `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"passwordHash"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func toCached(u *entity.User) cachedUser {
	return cachedUser{
		ID:           u.ID,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func (c cachedUser) toEntity() *entity.User {
	return &entity.User{
		ID:           c.ID,
		Email:        c.Email,
		PasswordHash: c.PasswordHash,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

// CachingUserRepository decorates a UserRepository with a Redis cache of successful lookups.
// Unknown emails are never cached. Redis failures fall back to the inner repository.
type CachingUserRepository struct {
	inner     usecase.UserRepository
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

var _ usecase.UserRepository = (*CachingUserRepository)(nil)

// NewCachingUserRepository decorates a UserRepository with Redis caching.
// If ttl is 0, it defaults to 5 minutes. If namespace is empty, it uses "users".
func NewCachingUserRepository(rdb *redis.Client, ttl time.Duration, inner usecase.UserRepository, namespace string) *CachingUserRepository {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	if namespace == "" {
		namespace = defaultNamespace
	}
	return &CachingUserRepository{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

// Create inserts the user and drops any cached entry for its email.
func (c *CachingUserRepository) Create(ctx context.Context, user *entity.User) error {
	if err := c.inner.Create(ctx, user); err != nil {
		return err
	}
	if c.rdb == nil || user == nil {
		return nil
	}
	// Best effort: キャッシュ削除の失敗で登録を失敗させない
	if err := c.rdb.Del(ctx, c.cacheKey(user.Email)).Err(); err != nil {
		slog.WarnContext(ctx, "user cache invalidation failed", "error", err)
	}
	return nil
}

// FindByEmail checks the cache first, then falls back to the inner repository.
func (c *CachingUserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	// Redis 未設定ならキャッシュをバイパス
	if c.rdb == nil {
		return c.inner.FindByEmail(ctx, email)
	}

	key := c.cacheKey(email)

	// 1) キャッシュを確認
	b, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil && len(b) > 0:
		var cu cachedUser
		if jerr := json.Unmarshal(b, &cu); jerr == nil && cu.Email == email {
			return cu.toEntity(), nil
		}
		// 壊れたエントリは削除
		_ = c.rdb.Del(ctx, key).Err()
	case err != nil && !errors.Is(err, redis.Nil):
		slog.WarnContext(ctx, "user cache read failed", "error", err)
	}

	// 2) DB にフォールバック
	user, err := c.inner.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	// 3) キャッシュに保存 (best effort)
	if b, err := json.Marshal(toCached(user)); err == nil {
		if err := c.rdb.Set(ctx, key, b, c.ttl).Err(); err != nil {
			slog.WarnContext(ctx, "user cache write failed", "error", err)
		}
	}

	return user, nil
}

// cacheKey は email をそのままキーに含める (redis のキーはバイナリセーフ)
func (c *CachingUserRepository) cacheKey(email string) string {
	return c.namespace + ":" + email
}
