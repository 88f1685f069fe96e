package event

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rajivgeraev/slotswap-api/internal/config"
	"github.com/rajivgeraev/slotswap-api/internal/models"
	"github.com/rajivgeraev/slotswap-api/internal/storage"
	"github.com/rajivgeraev/slotswap-api/internal/utils"
)

type testEnv struct {
	app   *fiber.App
	store *storage.MemoryStore
	alice *models.User
	bob   *models.User
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	cfg := &config.Config{JWTSecret: "test-secret", AppEnv: "test"}
	store := storage.NewMemoryStore()

	env := &testEnv{
		app:   fiber.New(),
		store: store,
		alice: &models.User{ID: uuid.New(), Name: "Алиса", Email: "alice@example.com"},
		bob:   &models.User{ID: uuid.New(), Name: "Боб", Email: "bob@example.com"},
	}
	require.NoError(t, store.Users().Create(context.Background(), env.alice))
	require.NoError(t, store.Users().Create(context.Background(), env.bob))

	NewEventService(cfg, store).SetupRoutes(env.app)
	return env
}

func (e *testEnv) request(t *testing.T, method, path string, body any, user *models.User) *http.Response {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	token, err := utils.NewJWTService("test-secret").GenerateToken(user)
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: "token", Value: token})

	resp, err := e.app.Test(req)
	require.NoError(t, err)
	return resp
}

func (e *testEnv) createEvent(t *testing.T, owner *models.User, status models.EventStatus) *models.Event {
	t.Helper()
	event := &models.Event{
		ID:        uuid.New(),
		OwnerID:   owner.ID,
		Title:     "Смена",
		Date:      "2026-09-10",
		StartTime: "09:00",
		EndTime:   "12:00",
		Status:    status,
	}
	require.NoError(t, e.store.Events().Create(context.Background(), event))
	return event
}

func TestCreateEvent_DefaultsToSwappable(t *testing.T) {
	env := newTestEnv(t)

	resp := env.request(t, http.MethodPost, "/api/events/", fiber.Map{
		"title":      "Утренняя смена",
		"date":       "2026-09-10",
		"start_time": "09:00",
		"end_time":   "12:00",
	}, env.alice)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var created models.Event
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	assert.Equal(t, models.EventStatusSwappable, created.Status)
	assert.Equal(t, env.alice.ID, created.OwnerID)
}

func TestCreateEvent_InvalidTimeRange(t *testing.T) {
	env := newTestEnv(t)

	resp := env.request(t, http.MethodPost, "/api/events/", fiber.Map{
		"title":      "Смена наоборот",
		"date":       "2026-09-10",
		"start_time": "14:00",
		"end_time":   "09:00",
	}, env.alice)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestCreateEvent_BadTimeFormat(t *testing.T) {
	env := newTestEnv(t)

	resp := env.request(t, http.MethodPost, "/api/events/", fiber.Map{
		"title":      "Смена",
		"date":       "2026-09-10",
		"start_time": "9am",
		"end_time":   "12:00",
	}, env.alice)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestCreateEvent_EngineOwnedStatusRejected(t *testing.T) {
	env := newTestEnv(t)

	// Статус Swap Pending выставляет только движок обменов
	resp := env.request(t, http.MethodPost, "/api/events/", fiber.Map{
		"title":      "Смена",
		"date":       "2026-09-10",
		"start_time": "09:00",
		"end_time":   "12:00",
		"status":     string(models.EventStatusSwapPending),
	}, env.alice)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestUpdateEvent_SetsNonSwappable(t *testing.T) {
	env := newTestEnv(t)
	event := env.createEvent(t, env.alice, models.EventStatusSwappable)

	resp := env.request(t, http.MethodPut, "/api/events/"+event.ID.String(), fiber.Map{
		"status": string(models.EventStatusNonSwappable),
	}, env.alice)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	stored, err := env.store.Events().FindByID(context.Background(), event.ID)
	require.NoError(t, err)
	assert.Equal(t, models.EventStatusNonSwappable, stored.Status)
}

func TestUpdateEvent_EngineOwnedStatusRejected(t *testing.T) {
	env := newTestEnv(t)
	event := env.createEvent(t, env.alice, models.EventStatusSwappable)

	resp := env.request(t, http.MethodPut, "/api/events/"+event.ID.String(), fiber.Map{
		"status": string(models.EventStatusSwapPending),
	}, env.alice)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestUpdateEvent_BlockedWhilePending(t *testing.T) {
	env := newTestEnv(t)
	event := env.createEvent(t, env.alice, models.EventStatusSwapPending)

	resp := env.request(t, http.MethodPut, "/api/events/"+event.ID.String(), fiber.Map{
		"title": "Новое название",
	}, env.alice)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestUpdateEvent_ForeignEventForbidden(t *testing.T) {
	env := newTestEnv(t)
	event := env.createEvent(t, env.alice, models.EventStatusSwappable)

	resp := env.request(t, http.MethodPut, "/api/events/"+event.ID.String(), fiber.Map{
		"title": "Чужая смена",
	}, env.bob)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestDeleteEvent_BlockedWhilePending(t *testing.T) {
	env := newTestEnv(t)
	event := env.createEvent(t, env.alice, models.EventStatusSwapPending)

	resp := env.request(t, http.MethodDelete, "/api/events/"+event.ID.String(), nil, env.alice)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	_, err := env.store.Events().FindByID(context.Background(), event.ID)
	assert.NoError(t, err, "событие не должно быть удалено")
}

func TestDeleteEvent_Owner(t *testing.T) {
	env := newTestEnv(t)
	event := env.createEvent(t, env.alice, models.EventStatusSwappable)

	resp := env.request(t, http.MethodDelete, "/api/events/"+event.ID.String(), nil, env.alice)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	_, err := env.store.Events().FindByID(context.Background(), event.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestGetMyEvents_OnlyOwn(t *testing.T) {
	env := newTestEnv(t)
	env.createEvent(t, env.alice, models.EventStatusSwappable)
	env.createEvent(t, env.bob, models.EventStatusSwappable)

	resp := env.request(t, http.MethodGet, "/api/events/", nil, env.alice)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result struct {
		Events []models.Event `json:"events"`
		Count  int            `json:"count"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	require.Equal(t, 1, result.Count)
	assert.Equal(t, env.alice.ID, result.Events[0].OwnerID)
}
