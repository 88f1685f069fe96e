package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rajivgeraev/slotswap-api/internal/config"
	"github.com/rajivgeraev/slotswap-api/internal/storage"
)

func newTestApp(t *testing.T) (*fiber.App, *storage.MemoryStore) {
	t.Helper()
	cfg := &config.Config{JWTSecret: "test-secret", AppEnv: "test"}
	store := storage.NewMemoryStore()

	app := fiber.New()
	NewAuthService(cfg, store).SetupRoutes(app)
	return app, store
}

func post(t *testing.T, app *fiber.App, path string, body any) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func hasTokenCookie(resp *http.Response) bool {
	for _, c := range resp.Cookies() {
		if c.Name == "token" && c.Value != "" {
			return true
		}
	}
	return false
}

func TestSignup_SetsAuthCookie(t *testing.T) {
	app, _ := newTestApp(t)

	resp := post(t, app, "/api/auth/signup", fiber.Map{
		"name":     "Алиса",
		"email":    "alice@example.com",
		"password": "secret123",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.True(t, hasTokenCookie(resp), "ожидалась кука token")
}

func TestSignup_DuplicateEmail(t *testing.T) {
	app, _ := newTestApp(t)

	body := fiber.Map{"name": "Алиса", "email": "alice@example.com", "password": "secret123"}
	resp := post(t, app, "/api/auth/signup", body)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp = post(t, app, "/api/auth/signup", body)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestSignup_Validation(t *testing.T) {
	app, _ := newTestApp(t)

	tests := []struct {
		name string
		body fiber.Map
	}{
		{"короткое имя", fiber.Map{"name": "А", "email": "a@b.co", "password": "secret123"}},
		{"плохой email", fiber.Map{"name": "Алиса", "email": "not-an-email", "password": "secret123"}},
		{"короткий пароль", fiber.Map{"name": "Алиса", "email": "a@b.co", "password": "12345"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := post(t, app, "/api/auth/signup", tt.body)
			assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestLogin_Success(t *testing.T) {
	app, _ := newTestApp(t)

	post(t, app, "/api/auth/signup", fiber.Map{
		"name": "Алиса", "email": "alice@example.com", "password": "secret123",
	})

	resp := post(t, app, "/api/auth/login", fiber.Map{
		"email": "alice@example.com", "password": "secret123",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.True(t, hasTokenCookie(resp))
}

func TestLogin_WrongPassword(t *testing.T) {
	app, _ := newTestApp(t)

	post(t, app, "/api/auth/signup", fiber.Map{
		"name": "Алиса", "email": "alice@example.com", "password": "secret123",
	})

	resp := post(t, app, "/api/auth/login", fiber.Map{
		"email": "alice@example.com", "password": "wrong",
	})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestLogin_UnknownEmail(t *testing.T) {
	app, _ := newTestApp(t)

	resp := post(t, app, "/api/auth/login", fiber.Map{
		"email": "nobody@example.com", "password": "secret123",
	})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestLogout_ExpiresCookie(t *testing.T) {
	app, _ := newTestApp(t)

	resp := post(t, app, "/api/auth/logout", fiber.Map{})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var expired bool
	for _, c := range resp.Cookies() {
		if c.Name == "token" && c.MaxAge < 0 {
			expired = true
		}
	}
	assert.True(t, expired, "кука token должна быть просрочена")
}
