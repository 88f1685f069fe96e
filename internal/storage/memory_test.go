package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rajivgeraev/slotswap-api/internal/models"
)

func newEvent(owner uuid.UUID, status models.EventStatus) *models.Event {
	return &models.Event{
		ID:        uuid.New(),
		OwnerID:   owner,
		Title:     "Смена",
		Date:      "2026-09-10",
		StartTime: "09:00",
		EndTime:   "12:00",
		Status:    status,
	}
}

func TestMemoryStore_UpdateStatusIf(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	event := newEvent(uuid.New(), models.EventStatusSwappable)
	require.NoError(t, store.Events().Create(ctx, event))

	// Первый переход проходит
	ok, err := store.Events().UpdateStatusIf(ctx, event.ID, models.EventStatusSwappable, models.EventStatusSwapPending)
	require.NoError(t, err)
	assert.True(t, ok)

	// Повторный переход из того же исходного статуса — нет
	ok, err = store.Events().UpdateStatusIf(ctx, event.ID, models.EventStatusSwappable, models.EventStatusSwapPending)
	require.NoError(t, err)
	assert.False(t, ok, "второй условный переход обязан проиграть")

	stored, err := store.Events().FindByID(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, models.EventStatusSwapPending, stored.Status)
}

func TestMemoryStore_UpdateStatusIf_MissingEvent(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	ok, err := store.Events().UpdateStatusIf(ctx, uuid.New(), models.EventStatusSwappable, models.EventStatusSwapPending)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStore_ResolveIf_ExactlyOnce(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	request := &models.SwapRequest{
		ID:            uuid.New(),
		SenderUserID:  uuid.New(),
		TargetUserID:  uuid.New(),
		SenderEventID: uuid.New(),
		TargetEventID: uuid.New(),
		Status:        models.SwapStatusPending,
	}
	require.NoError(t, store.Swaps().Create(ctx, request))

	ok, err := store.Swaps().ResolveIf(ctx, request.ID, models.SwapStatusAccepted)
	require.NoError(t, err)
	assert.True(t, ok)

	// Терминальный статус не перезаписывается
	ok, err = store.Swaps().ResolveIf(ctx, request.ID, models.SwapStatusRejected)
	require.NoError(t, err)
	assert.False(t, ok)

	stored, err := store.Swaps().FindByID(ctx, request.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SwapStatusAccepted, stored.Status)
}

func TestMemoryStore_WithTxRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	event := newEvent(uuid.New(), models.EventStatusSwappable)
	require.NoError(t, store.Events().Create(ctx, event))

	boom := errors.New("boom")
	err := store.WithTx(ctx, func(tx Store) error {
		ok, err := tx.Events().UpdateStatusIf(ctx, event.ID, models.EventStatusSwappable, models.EventStatusSwapPending)
		require.NoError(t, err)
		require.True(t, ok)

		if err := tx.Swaps().Create(ctx, &models.SwapRequest{ID: uuid.New(), Status: models.SwapStatusPending}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	// Изменения внутри неудавшейся транзакции не видны
	stored, err := store.Events().FindByID(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, models.EventStatusSwappable, stored.Status)
}

func TestMemoryStore_WithTxCommits(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	event := newEvent(uuid.New(), models.EventStatusSwappable)
	require.NoError(t, store.Events().Create(ctx, event))

	err := store.WithTx(ctx, func(tx Store) error {
		ok, err := tx.Events().UpdateStatusIf(ctx, event.ID, models.EventStatusSwappable, models.EventStatusSwapPending)
		require.NoError(t, err)
		require.True(t, ok)
		return nil
	})
	require.NoError(t, err)

	stored, err := store.Events().FindByID(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, models.EventStatusSwapPending, stored.Status)
}

func TestMemoryStore_FindFilters(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	alice := uuid.New()
	bob := uuid.New()
	require.NoError(t, store.Events().Create(ctx, newEvent(alice, models.EventStatusSwappable)))
	require.NoError(t, store.Events().Create(ctx, newEvent(bob, models.EventStatusSwappable)))
	require.NoError(t, store.Events().Create(ctx, newEvent(bob, models.EventStatusNonSwappable)))

	status := models.EventStatusSwappable
	events, err := store.Events().Find(ctx, EventFilter{Status: &status, NotOwnerID: &alice})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, bob, events[0].OwnerID)

	events, err = store.Events().Find(ctx, EventFilter{OwnerID: &bob})
	require.NoError(t, err)
	assert.Len(t, events, 2)
}

func TestMemoryStore_UserFindByEmail(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	user := &models.User{ID: uuid.New(), Name: "Алиса", Email: "alice@example.com"}
	require.NoError(t, store.Users().Create(ctx, user))

	found, err := store.Users().FindByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)

	_, err = store.Users().FindByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}
