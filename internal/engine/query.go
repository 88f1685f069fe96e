package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/rajivgeraev/slotswap-api/internal/cache"
	"github.com/rajivgeraev/slotswap-api/internal/models"
	"github.com/rajivgeraev/slotswap-api/internal/storage"
)

// Queries отвечает за read-only проекции витрины обменов. Фильтр
// выборки здесь задаёт множество предусловий, на которое опирается
// движок: к обмену предлагаются только события в статусе Swappable.
type Queries struct {
	store     storage.Store
	projCache *cache.Cache
}

// NewQueries создает сервис проекций. projCache может быть nil.
func NewQueries(store storage.Store, projCache *cache.Cache) *Queries {
	return &Queries{store: store, projCache: projCache}
}

// ListSwappable возвращает все доступные к обмену события, кроме
// событий самого пользователя, дополняя каждое данными владельца.
// Каждый вызов — свежая выборка, без кэширования и пагинации.
func (q *Queries) ListSwappable(ctx context.Context, excludeUserID uuid.UUID) ([]models.SwappableSlot, error) {
	status := models.EventStatusSwappable
	events, err := q.store.Events().Find(ctx, storage.EventFilter{
		Status:     &status,
		NotOwnerID: &excludeUserID,
	})
	if err != nil {
		return nil, fmt.Errorf("выборка доступных событий: %w", err)
	}

	slots := make([]models.SwappableSlot, 0, len(events))
	for _, event := range events {
		slot := models.SwappableSlot{Event: event, OwnerName: "Unknown", OwnerEmail: "Unknown"}

		owner, err := q.store.Users().FindByID(ctx, event.OwnerID)
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("чтение владельца события: %w", err)
		}
		if owner != nil {
			slot.OwnerName = owner.Name
			slot.OwnerEmail = owner.Email
		}
		slots = append(slots, slot)
	}
	return slots, nil
}

// ListIncoming возвращает неразрешённые запросы на обмен, адресованные
// пользователю, дополняя каждый данными отправителя и обоих событий.
// Обогащение выполняется точечными чтениями на момент вызова; готовая
// проекция кэшируется и сбрасывается движком при изменениях.
func (q *Queries) ListIncoming(ctx context.Context, userID uuid.UUID) ([]models.IncomingRequest, error) {
	if cached, ok := q.projCache.GetIncoming(ctx, userID); ok {
		return cached, nil
	}

	requests, err := q.store.Swaps().FindPendingByTarget(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("выборка входящих запросов: %w", err)
	}

	incoming := make([]models.IncomingRequest, 0, len(requests))
	for _, request := range requests {
		item := models.IncomingRequest{SwapRequest: request}

		// Отсутствующий документ оставляет пустые поля, как и битая
		// ссылка в исходных данных
		sender, err := q.store.Users().FindByID(ctx, request.SenderUserID)
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("чтение отправителя: %w", err)
		}
		if sender != nil {
			item.SenderUserName = sender.Name
			item.SenderUserEmail = sender.Email
		}

		senderEvent, err := q.findEventOrNil(ctx, request.SenderEventID)
		if err != nil {
			return nil, err
		}
		if senderEvent != nil {
			item.SenderEventTitle = senderEvent.Title
			item.SenderEventDate = senderEvent.Date
			item.SenderEventStartTime = senderEvent.StartTime
			item.SenderEventEndTime = senderEvent.EndTime
		}

		targetEvent, err := q.findEventOrNil(ctx, request.TargetEventID)
		if err != nil {
			return nil, err
		}
		if targetEvent != nil {
			item.TargetEventTitle = targetEvent.Title
			item.TargetEventDate = targetEvent.Date
			item.TargetEventStartTime = targetEvent.StartTime
			item.TargetEventEndTime = targetEvent.EndTime
		}

		incoming = append(incoming, item)
	}

	q.projCache.SetIncoming(ctx, userID, incoming)
	return incoming, nil
}

func (q *Queries) findEventOrNil(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	event, err := q.store.Events().FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("чтение события: %w", err)
	}
	return event, nil
}
