package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"chatwire/internal/core/services"
	"chatwire/internal/infrastructure/middleware"
	"chatwire/internal/infrastructure/repositories/memory"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// testEnv wires the full handler stack against the in-memory store, with
// the same middleware chain the api binary uses.
type testEnv struct {
	router *gin.Engine
	store  *memory.Store
	auth   services.AuthService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := memory.NewStore()
	auth := services.NewAuthService("test-secret", time.Hour, 24*time.Hour)
	logger := zap.NewNop().Sugar()

	userService := services.NewUserService(store.Users())
	messageService := services.NewMessageService(store.Conversations(), store.Messages(), store.Users())
	callService := services.NewCallService(store.Calls(), store.Users())

	router := gin.New()
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.ErrorHandlerMiddleware(logger))

	NewAuthHandler(auth, store.Users(), time.Hour).SetupRoutes(router)

	api := router.Group("/api/v1")
	api.Use(middleware.AuthMiddleware(auth))
	NewUserHandler(userService).SetupRoutes(api)
	NewMessageHandler(messageService).SetupRoutes(api)
	NewCallHandler(callService).SetupRoutes(api)

	return &testEnv{router: router, store: store, auth: auth}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

// register creates a user through the public endpoint and returns the
// user ID and access token.
func (e *testEnv) register(t *testing.T, username string) (string, string) {
	t.Helper()

	rec := e.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]any{
		"username": username,
		"email":    username + "@example.com",
		"password": "secret123",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	body := decode(t, rec)
	return body["user_id"].(string), body["access_token"].(string)
}
