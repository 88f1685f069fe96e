package engine

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rajivgeraev/slotswap-api/internal/models"
)

func TestListSwappable_ExcludesOwnEvents(t *testing.T) {
	f := newTestFixture(t)
	queries := NewQueries(f.store, nil)

	slots, err := queries.ListSwappable(context.Background(), f.alice)
	require.NoError(t, err)

	require.Len(t, slots, 1)
	assert.Equal(t, f.eventB.ID, slots[0].ID)
	for _, slot := range slots {
		assert.NotEqual(t, f.alice, slot.OwnerID)
	}
}

func TestListSwappable_ExcludesNonSwappable(t *testing.T) {
	f := newTestFixture(t)
	ctx := context.Background()
	queries := NewQueries(f.store, nil)

	// Событие Боба закрыто для обменов
	f.eventB.Status = models.EventStatusNonSwappable
	require.NoError(t, f.store.Events().Update(ctx, f.eventB))

	slots, err := queries.ListSwappable(ctx, f.alice)
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestListSwappable_EnrichesOwner(t *testing.T) {
	f := newTestFixture(t)
	queries := NewQueries(f.store, nil)

	slots, err := queries.ListSwappable(context.Background(), f.alice)
	require.NoError(t, err)

	require.Len(t, slots, 1)
	assert.Equal(t, "Боб", slots[0].OwnerName)
	assert.Equal(t, "bob@example.com", slots[0].OwnerEmail)
}

func TestListSwappable_UnknownOwnerFallback(t *testing.T) {
	f := newTestFixture(t)
	ctx := context.Background()
	queries := NewQueries(f.store, nil)

	orphan := &models.Event{
		ID: uuid.New(), OwnerID: uuid.New(), Title: "Без владельца",
		Date: "2026-09-15", StartTime: "10:00", EndTime: "11:00",
		Status: models.EventStatusSwappable,
	}
	require.NoError(t, f.store.Events().Create(ctx, orphan))

	slots, err := queries.ListSwappable(ctx, f.alice)
	require.NoError(t, err)

	var found bool
	for _, slot := range slots {
		if slot.ID == orphan.ID {
			found = true
			assert.Equal(t, "Unknown", slot.OwnerName)
			assert.Equal(t, "Unknown", slot.OwnerEmail)
		}
	}
	assert.True(t, found)
}

func TestListIncoming_EnrichesRequest(t *testing.T) {
	f := newTestFixture(t)
	ctx := context.Background()
	queries := NewQueries(f.store, nil)

	request, err := f.engine.Propose(ctx, f.proposeParams())
	require.NoError(t, err)

	incoming, err := queries.ListIncoming(ctx, f.bob)
	require.NoError(t, err)

	require.Len(t, incoming, 1)
	item := incoming[0]
	assert.Equal(t, request.ID, item.ID)
	assert.Equal(t, "Алиса", item.SenderUserName)
	assert.Equal(t, "alice@example.com", item.SenderUserEmail)
	assert.Equal(t, "Смена Алисы", item.SenderEventTitle)
	assert.Equal(t, "2026-09-10", item.SenderEventDate)
	assert.Equal(t, "09:00", item.SenderEventStartTime)
	assert.Equal(t, "12:00", item.SenderEventEndTime)
	assert.Equal(t, "Смена Боба", item.TargetEventTitle)
	assert.Equal(t, "2026-09-11", item.TargetEventDate)
}

func TestListIncoming_OnlyPendingForTarget(t *testing.T) {
	f := newTestFixture(t)
	ctx := context.Background()
	queries := NewQueries(f.store, nil)

	request, err := f.engine.Propose(ctx, f.proposeParams())
	require.NoError(t, err)

	// Отправителю входящих не видно
	incoming, err := queries.ListIncoming(ctx, f.alice)
	require.NoError(t, err)
	assert.Empty(t, incoming)

	// Разрешённый запрос исчезает из входящих
	require.NoError(t, f.engine.Resolve(ctx, request.ID, DecisionReject, f.bob))
	incoming, err = queries.ListIncoming(ctx, f.bob)
	require.NoError(t, err)
	assert.Empty(t, incoming)
}
