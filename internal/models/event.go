package models

import (
	"regexp"
	"time"

	"github.com/google/uuid"
)

// EventStatus представляет статус события в маркетплейсе обменов
type EventStatus string

const (
	// EventStatusSwappable — событие можно предлагать к обмену
	EventStatusSwappable EventStatus = "Swappable"
	// EventStatusSwapPending — событие участвует ровно в одном неразрешённом обмене
	EventStatusSwapPending EventStatus = "Swap Pending"
	// EventStatusSwapped — историческое значение; принятый обмен возвращает событие в Swappable
	EventStatusSwapped EventStatus = "Swapped"
	// EventStatusNonSwappable — владелец закрыл событие для обменов
	EventStatusNonSwappable EventStatus = "Non-Swappable"
)

// IsValid проверяет, что статус входит в закрытый набор значений
func (s EventStatus) IsValid() bool {
	switch s {
	case EventStatusSwappable, EventStatusSwapPending, EventStatusSwapped, EventStatusNonSwappable:
		return true
	}
	return false
}

// IsEngineOwned сообщает, принадлежит ли статус движку обменов.
// Такие статусы нельзя выставлять через обычное редактирование события.
func (s EventStatus) IsEngineOwned() bool {
	return s == EventStatusSwapPending || s == EventStatusSwapped
}

// Event представляет событие календаря
type Event struct {
	ID        uuid.UUID   `json:"id"`
	OwnerID   uuid.UUID   `json:"owner_id"`
	Title     string      `json:"title"`
	Date      string      `json:"date"`       // YYYY-MM-DD
	StartTime string      `json:"start_time"` // HH:MM, 24 часа
	EndTime   string      `json:"end_time"`   // HH:MM, 24 часа
	Status    EventStatus `json:"status"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

var (
	dateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	timeRe = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)
)

// IsValidDate проверяет формат даты YYYY-MM-DD
func IsValidDate(v string) bool {
	return dateRe.MatchString(v)
}

// IsValidTime проверяет формат времени HH:MM
func IsValidTime(v string) bool {
	return timeRe.MatchString(v)
}

// IsValidTimeRange проверяет, что начало строго раньше конца.
// Для нормализованного HH:MM достаточно лексикографического сравнения.
func IsValidTimeRange(start, end string) bool {
	return start < end
}
