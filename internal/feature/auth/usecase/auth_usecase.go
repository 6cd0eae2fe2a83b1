// Package usecase はauthフィーチャーのビジネスロジックを実装します。
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"basic_authn/internal/feature/auth/domain"
	"basic_authn/internal/feature/auth/domain/entity"
)

// UserRepository はユーザーエンティティの永続化層を抽象化します。
// Goの慣例に従い、インターフェースはプロバイダー（adapters）ではなくコンシューマー（usecase）が定義します。
type UserRepository interface {
	// Create は新しいユーザーをストレージに永続化します。
	// 同じメールアドレスのユーザーが既に存在する場合、ErrEmailAlreadyExistsを返します。
	Create(ctx context.Context, user *entity.User) error

	// FindByEmail は指定されたメールアドレスに一致するユーザーを取得します。
	// ユーザーが存在しない場合、ErrUserNotFoundを返します。
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
}

// PasswordHasher は一方向ハッシュ関数とその検証操作を定義します。
type PasswordHasher interface {
	// Hash は平文パスワードのハッシュを返します。
	Hash(password string) (string, error)

	// Verify はpasswordがhashに一致するかを返します。
	// 不一致は (false, nil)、ハッシュ形式の不正などは error で返します。
	Verify(hash, password string) (bool, error)
}

// authUsecase は登録ポリシーと認証ゲートのビジネスロジックを実装します。
type authUsecase struct {
	users     UserRepository
	hasher    PasswordHasher
	dummyHash string
}

// NewAuthUsecase はauthUsecaseの新しいインスタンスを生成します。
// ユーザーが存在しない場合の検証に使うダミーハッシュをここで一度だけ生成します。
func NewAuthUsecase(users UserRepository, hasher PasswordHasher) (*authUsecase, error) {
	dummy, err := hasher.Hash("dummy-password-for-timing-equalization")
	if err != nil {
		return nil, fmt.Errorf("failed to prepare dummy hash: %w", err)
	}
	return &authUsecase{
		users:     users,
		hasher:    hasher,
		dummyHash: dummy,
	}, nil
}

// Register はハッシュ化されたパスワードで新規ユーザーを登録します。
// email と password はリクエスト境界で検証済みであることが前提です。
func (u *authUsecase) Register(ctx context.Context, email, password string) error {
	_, err := u.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return &domain.DuplicateUserError{Email: email}
	case !errors.Is(err, ErrUserNotFound):
		return fmt.Errorf("failed to look up user: %w", err)
	}

	hashed, err := u.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user := &entity.User{Email: email, PasswordHash: hashed}
	if err := u.users.Create(ctx, user); err != nil {
		// 同時登録で一意制約に負けた場合も重複として扱う
		if errors.Is(err, ErrEmailAlreadyExists) {
			return &domain.DuplicateUserError{Email: email}
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	slog.InfoContext(ctx, "user registered", "user_id", user.ID)
	return nil
}

// Authenticate はメールアドレスとパスワードを検証し、一致したユーザーを返します。
// ユーザー未検出とパスワード不一致はどちらも domain.ErrAuthenticationFailed になります。
// タイミング攻撃を防止するため、ユーザーが存在しない場合でもダミーハッシュで検証を実行します。
// ストアへの書き込みは一切行いません。
func (u *authUsecase) Authenticate(ctx context.Context, email, password string) (*entity.User, error) {
	user, err := u.users.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	hash := u.dummyHash
	if user != nil {
		hash = user.PasswordHash
	}

	ok, verifyErr := u.hasher.Verify(hash, password)
	if verifyErr != nil {
		return nil, fmt.Errorf("failed to verify password: %w", verifyErr)
	}
	if user == nil || !ok {
		return nil, domain.ErrAuthenticationFailed
	}
	return user, nil
}
