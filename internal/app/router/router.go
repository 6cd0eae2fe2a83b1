package router

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	authhandler "basic_authn/internal/feature/auth/transport/handler"
	"basic_authn/internal/platform/http/middleware"
	"basic_authn/internal/platform/metrics"
)

// Route paths.
const (
	PrivatePath = "/api/v1/basic-authn"
	SignupPath  = PrivatePath + "/singup"
	HealthPath  = "/healthz"
	MetricsPath = "/metrics"
)

// AccessRule は path パターンと認証要否の組
// Pattern は完全一致、または "/**" で終わる場合は前方一致
type AccessRule struct {
	Pattern      string
	RequiresAuth bool
}

// AccessRules は上から順に評価され、最初に一致したルールが適用される
var AccessRules = []AccessRule{
	{Pattern: SignupPath, RequiresAuth: false},
	{Pattern: HealthPath, RequiresAuth: false},
	{Pattern: MetricsPath, RequiresAuth: false},
	{Pattern: "/**", RequiresAuth: true},
}

// Matches reports whether path matches the rule's pattern.
func (r AccessRule) Matches(path string) bool {
	if prefix, ok := strings.CutSuffix(r.Pattern, "/**"); ok {
		return path == prefix || strings.HasPrefix(path, prefix+"/")
	}
	return path == r.Pattern
}

// RequiresAuth returns the decision of the first rule matching path.
// A path no rule matches requires authentication.
func RequiresAuth(rules []AccessRule, path string) bool {
	for _, rule := range rules {
		if rule.Matches(path) {
			return rule.RequiresAuth
		}
	}
	return true
}

// Authorize runs gate for every request whose path requires authentication.
// 未登録のパスにも適用されるため、認証前に 404 かどうかは分からない
func Authorize(rules []AccessRule, gate gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !RequiresAuth(rules, c.Request.URL.Path) {
			c.Next()
			return
		}
		gate(c)
	}
}

// NewCORS builds the CORS middleware for the allowed origins.
// 認証ヘッダーを使うためワイルドカードと資格情報の併用は許可しない
func NewCORS(origins []string) (gin.HandlerFunc, error) {
	cfg := cors.Config{
		AllowOrigins:  origins,
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodHead, http.MethodOptions},
		AllowHeaders:  []string{"Authorization", "Content-Type", middleware.HeaderRequestID},
		ExposeHeaders: []string{middleware.HeaderRequestID},
		MaxAge:        12 * time.Hour,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cors.New(cfg), nil
}

// Options overrides router defaults.
type Options struct {
	Rules []AccessRule
	Now   func() time.Time
	// CORS は任意。nil なら CORS ヘッダーを付けない
	CORS gin.HandlerFunc
}

// NewRouter wires the middleware chain and routes.
// gate は認証ゲート (basicauth.Required)、health は /healthz ハンドラー
func NewRouter(authHandler *authhandler.AuthHandler, gate, health gin.HandlerFunc, opts Options) *gin.Engine {
	if opts.Rules == nil {
		opts.Rules = AccessRules
	}

	r := gin.New()
	r.HandleMethodNotAllowed = true

	// 順序: リクエストID → ログ → パニック回復 → メトリクス → (CORS) → エラー描画 → 認可
	r.Use(
		middleware.RequestID(),
		middleware.RequestLogger(),
		middleware.Recovery(opts.Now),
		middleware.Metrics(),
	)
	// プリフライトは認証ゲートより前で応答する
	if opts.CORS != nil {
		r.Use(opts.CORS)
	}
	r.Use(
		middleware.ErrorMapper(opts.Now),
		Authorize(opts.Rules, gate),
	)

	r.NoRoute(func(c *gin.Context) { _ = c.Error(middleware.ErrRouteNotFound) })
	r.NoMethod(func(c *gin.Context) { _ = c.Error(middleware.ErrMethodNotAllowed) })

	// 認証不要
	// 導通確認用
	r.GET(HealthPath, health)
	r.HEAD(HealthPath, health)
	r.OPTIONS(HealthPath, health)
	r.GET(MetricsPath, gin.WrapH(metrics.Handler()))
	// 新規ユーザー登録
	r.POST(SignupPath, authHandler.Signup)

	// 認証必須 (Authorize がゲートを通す)
	r.GET(PrivatePath, authHandler.Private)

	return r
}
