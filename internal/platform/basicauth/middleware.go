// Package basicauth provides the HTTP Basic authentication gate.
package basicauth

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"basic_authn/internal/feature/auth/domain"
	"basic_authn/internal/feature/auth/domain/entity"
	"basic_authn/internal/platform/metrics"
)

// ContextUserEmail は認証済みユーザーの email を gin.Context に格納するキー
const ContextUserEmail = "userEmail"

const scheme = "basic"

// Authenticator は資格情報を検証する
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (*entity.User, error)
}

// ParseHeader extracts the credentials from an Authorization header value.
// It returns domain.ErrMissingCredentials when no Basic credentials are present
// and domain.ErrAuthenticationFailed when the Basic token cannot be decoded.
func ParseHeader(header string) (email, password string, err error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", "", domain.ErrMissingCredentials
	}

	name, token, _ := strings.Cut(header, " ")
	if !strings.EqualFold(name, scheme) {
		return "", "", domain.ErrMissingCredentials
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return "", "", domain.ErrAuthenticationFailed
	}
	raw, decErr := base64.StdEncoding.DecodeString(token)
	if decErr != nil {
		return "", "", domain.ErrAuthenticationFailed
	}
	email, password, ok := strings.Cut(string(raw), ":")
	if !ok {
		return "", "", domain.ErrAuthenticationFailed
	}
	return email, password, nil
}

// Required returns a Gin middleware that accepts only requests carrying valid Basic credentials.
// 失敗は c.Error に積んで中断し、レスポンスはエラーマッパーが描画する
func Required(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. Authorization ヘッダーを解析
		email, password, err := ParseHeader(c.GetHeader("Authorization"))
		if err != nil {
			recordOutcome(err)
			_ = c.Error(err)
			c.Abort()
			return
		}

		// 2. 資格情報を検証
		user, err := auth.Authenticate(c.Request.Context(), email, password)
		if err != nil {
			recordOutcome(err)
			_ = c.Error(err)
			c.Abort()
			return
		}

		// 3. 認証済みユーザーをコンテキストに格納
		metrics.RecordAuthentication(metrics.OutcomeSuccess)
		c.Set(ContextUserEmail, user.Email)
		c.Next()
	}
}

func recordOutcome(err error) {
	switch {
	case errors.Is(err, domain.ErrMissingCredentials):
		metrics.RecordAuthentication(metrics.OutcomeMissing)
	case errors.Is(err, domain.ErrAuthenticationFailed):
		metrics.RecordAuthentication(metrics.OutcomeFailed)
	}
}
