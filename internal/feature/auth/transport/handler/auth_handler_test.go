package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"basic_authn/internal/feature/auth/domain"
	"basic_authn/internal/feature/auth/transport/http/dto"
	"basic_authn/internal/platform/http/middleware"
	"basic_authn/internal/platform/validation"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	if err := validation.RegisterGin(dto.SignupRules); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

// mockAuthUsecase is a mock implementation of the AuthUsecase interface.
type mockAuthUsecase struct {
	RegisterFunc func(ctx context.Context, email, password string) error
	calls        int
}

// Register is the mock implementation of the Register method.
func (m *mockAuthUsecase) Register(ctx context.Context, email, password string) error {
	m.calls++
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, email, password)
	}
	return nil // Default: success
}

func setupRouter(uc AuthUsecase) *gin.Engine {
	h := NewAuthHandler(uc)
	r := gin.New()
	r.Use(middleware.ErrorMapper(nil))
	r.POST("/api/v1/basic-authn/singup", h.Signup)
	r.GET("/api/v1/basic-authn", h.Private)
	return r
}

func postSignup(r *gin.Engine, body []byte) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/basic-authn/singup", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestAuthHandler_Signup(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    gin.H
		registerErr    error
		expectedStatus int
		expectedText   string
		expectedMsgs   []string
		expectCall     bool
	}{
		{
			name:           "success: user registration",
			requestBody:    gin.H{"username": "valid_user_email@email.com", "password": "Valid_password_1*"},
			expectedStatus: http.StatusCreated,
			expectedText:   "User valid_user_email@email.com successfully registered!",
			expectCall:     true,
		},
		{
			name:           "failure: invalid email address",
			requestBody:    gin.H{"username": "invalid_email", "password": "Valid_password_1*"},
			expectedStatus: http.StatusBadRequest,
			expectedMsgs:   []string{domain.MsgInvalidEmail},
		},
		{
			name:           "failure: whitespace username is blank and not an email",
			requestBody:    gin.H{"username": "   ", "password": "Valid_password_1*"},
			expectedStatus: http.StatusBadRequest,
			expectedMsgs:   []string{domain.MsgBlankUsername, domain.MsgInvalidEmail},
		},
		{
			name:           "failure: weak password",
			requestBody:    gin.H{"username": "valid_user_email@email.com", "password": "invalid_password"},
			expectedStatus: http.StatusBadRequest,
			expectedMsgs:   []string{domain.MsgWeakPassword},
		},
		{
			name:           "failure: both fields invalid",
			requestBody:    gin.H{"username": "invalid_email", "password": "short"},
			expectedStatus: http.StatusBadRequest,
			expectedMsgs:   []string{domain.MsgInvalidEmail, domain.MsgWeakPassword},
		},
		{
			name:           "failure: missing fields",
			requestBody:    gin.H{},
			expectedStatus: http.StatusBadRequest,
			expectedMsgs:   []string{domain.MsgBlankUsername, domain.MsgWeakPassword},
		},
		{
			name:           "failure: duplicate email",
			requestBody:    gin.H{"username": "taken@email.com", "password": "Valid_password_1*"},
			registerErr:    &domain.DuplicateUserError{Email: "taken@email.com"},
			expectedStatus: http.StatusBadRequest,
			expectedMsgs:   []string{"taken@email.com already registered."},
			expectCall:     true,
		},
		{
			name:           "failure: store error",
			requestBody:    gin.H{"username": "valid_user_email@email.com", "password": "Valid_password_1*"},
			registerErr:    errors.New("db down"),
			expectedStatus: http.StatusInternalServerError,
			expectedMsgs:   []string{middleware.MsgInternalError},
			expectCall:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &mockAuthUsecase{RegisterFunc: func(context.Context, string, string) error { return tt.registerErr }}
			body, _ := json.Marshal(tt.requestBody)

			w := postSignup(setupRouter(uc), body)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectCall, uc.calls == 1, "usecase call")
			if tt.expectedText != "" {
				assert.Equal(t, tt.expectedText, w.Body.String())
				assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")
				return
			}
			var errBody middleware.ErrorBody
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &errBody))
			assert.ElementsMatch(t, tt.expectedMsgs, errBody.Messages)
			assert.Equal(t, tt.expectedStatus, errBody.StatusCode)
			assert.Equal(t, "/api/v1/basic-authn/singup", errBody.Path)
		})
	}
}

func TestAuthHandler_Signup_MalformedBody(t *testing.T) {
	bodies := map[string][]byte{
		"not json":       []byte("not json"),
		"empty":          nil,
		"wrong types":    []byte(`{"username": 1, "password": true}`),
		"truncated json": []byte(`{"username": "a@b.com"`),
	}

	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			uc := &mockAuthUsecase{}

			w := postSignup(setupRouter(uc), body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Zero(t, uc.calls)
			var errBody middleware.ErrorBody
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &errBody))
			assert.Equal(t, []string{domain.MsgMalformedBody}, errBody.Messages)
		})
	}
}

func TestAuthHandler_Signup_PassesCredentialsThrough(t *testing.T) {
	var gotEmail, gotPassword string
	uc := &mockAuthUsecase{RegisterFunc: func(_ context.Context, email, password string) error {
		gotEmail, gotPassword = email, password
		return nil
	}}

	w := postSignup(setupRouter(uc), []byte(`{"username":"valid_user_email@email.com","password":"Valid_password_1*"}`))

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "valid_user_email@email.com", gotEmail)
	assert.Equal(t, "Valid_password_1*", gotPassword)
}

func TestAuthHandler_Private(t *testing.T) {
	w := httptest.NewRecorder()
	setupRouter(&mockAuthUsecase{}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/basic-authn", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, PrivateMessage, w.Body.String())
}
