// Package handler はauthフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"basic_authn/internal/feature/auth/domain"
	"basic_authn/internal/feature/auth/transport/http/dto"
	"basic_authn/internal/platform/metrics"
	"basic_authn/internal/platform/validation"
)

// PrivateMessage は認証済みユーザーにだけ返される固定メッセージです。
const PrivateMessage = "Private message only for athenticated users."

// AuthUsecase は登録操作のユースケースを定義します。
// Goの慣例に従い、インターフェースはプロバイダー（usecase）ではなくコンシューマー（handler）が定義します。
type AuthUsecase interface {
	// Register は指定されたメールアドレスとパスワードで新規ユーザーを登録します。
	Register(ctx context.Context, email, password string) error
}

// AuthHandler は認証関連のHTTPリクエストを処理します。
// エラーは c.Error で積み、レスポンスへの変換はエラーマッパーミドルウェアに任せます。
type AuthHandler struct {
	auth AuthUsecase
}

// NewAuthHandler はAuthHandlerの新しいインスタンスを生成します。
func NewAuthHandler(auth AuthUsecase) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Signup はユーザー登録APIエンドポイントを処理します。
// - リクエストJSONをSignupReqにバインドし、全フィールドの違反をまとめて400で返却
// - メール重複時は400を返却
// - 成功時は201とプレーンテキストの確認メッセージを返却
func (h *AuthHandler) Signup(c *gin.Context) {
	var req dto.SignupReq
	if err := c.ShouldBindJSON(&req); err != nil {
		messages, ok := validation.Messages(err, dto.SignupMessages)
		if !ok {
			messages = []string{domain.MsgMalformedBody}
		}
		slog.Debug("signup validation failed", "error", err, "remote_addr", c.ClientIP())
		metrics.RecordRegistration(metrics.OutcomeInvalid)
		_ = c.Error(domain.NewValidationError(messages...))
		return
	}

	if err := h.auth.Register(c.Request.Context(), req.Username, req.Password); err != nil {
		var dup *domain.DuplicateUserError
		if errors.As(err, &dup) {
			metrics.RecordRegistration(metrics.OutcomeDuplicate)
		}
		_ = c.Error(err)
		return
	}

	metrics.RecordRegistration(metrics.OutcomeCreated)
	slog.Info("user signup successful", "email", req.Username, "remote_addr", c.ClientIP())
	c.String(http.StatusCreated, "User %s successfully registered!", req.Username)
}

// Private は認証ゲートを通過したリクエストに固定メッセージを返します。
func (h *AuthHandler) Private(c *gin.Context) {
	c.String(http.StatusOK, PrivateMessage)
}
