package storage

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/rajivgeraev/slotswap-api/internal/models"
)

// ErrNotFound возвращается, когда документ с указанным ID не существует
var ErrNotFound = errors.New("документ не найден")

// EventFilter описывает условия выборки событий.
// Nil-поле означает отсутствие условия.
type EventFilter struct {
	OwnerID    *uuid.UUID
	NotOwnerID *uuid.UUID
	Status     *models.EventStatus
}

// EventStore предоставляет примитивные операции хранилища событий
type EventStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Event, error)
	Find(ctx context.Context, filter EventFilter) ([]models.Event, error)
	Create(ctx context.Context, event *models.Event) error
	Update(ctx context.Context, event *models.Event) error
	Delete(ctx context.Context, id uuid.UUID) error

	// UpdateStatusIf переводит событие из статуса from в to только если
	// текущий статус равен from. Возвращает false, если условие не
	// выполнилось (конкурентное изменение).
	UpdateStatusIf(ctx context.Context, id uuid.UUID, from, to models.EventStatus) (bool, error)
}

// SwapRequestStore предоставляет примитивные операции хранилища запросов на обмен
type SwapRequestStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.SwapRequest, error)
	FindPendingByTarget(ctx context.Context, targetUserID uuid.UUID) ([]models.SwapRequest, error)
	FindPendingByEvent(ctx context.Context, eventID uuid.UUID) ([]models.SwapRequest, error)
	Create(ctx context.Context, req *models.SwapRequest) error

	// ResolveIf переводит запрос из pending в терминальный статус to
	// только если запрос всё ещё pending. Возвращает false, если запрос
	// уже был разрешён.
	ResolveIf(ctx context.Context, id uuid.UUID, to models.SwapStatus) (bool, error)
}

// UserStore предоставляет примитивные операции хранилища пользователей
type UserStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
}

// Store объединяет хранилища и даёт транзакционную границу для операций,
// затрагивающих несколько документов. Реализация обязана гарантировать,
// что изменения внутри fn либо применяются целиком, либо не применяются
// вовсе.
type Store interface {
	Events() EventStore
	Swaps() SwapRequestStore
	Users() UserStore

	WithTx(ctx context.Context, fn func(Store) error) error
}
