package models

import (
	"time"

	"github.com/google/uuid"
)

// SwapStatus представляет статус запроса на обмен
type SwapStatus string

const (
	SwapStatusPending  SwapStatus = "pending"
	SwapStatusAccepted SwapStatus = "accepted"
	SwapStatusRejected SwapStatus = "rejected"
)

// SwapRequest представляет запрос на обмен событиями между двумя пользователями.
// После создания запрос неизменяем, кроме единственного перехода
// pending -> accepted/rejected.
type SwapRequest struct {
	ID            uuid.UUID  `json:"id"`
	SenderUserID  uuid.UUID  `json:"sender_user_id"`
	TargetUserID  uuid.UUID  `json:"target_user_id"`
	SenderEventID uuid.UUID  `json:"sender_event_id"`
	TargetEventID uuid.UUID  `json:"target_event_id"`
	Status        SwapStatus `json:"status"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// SwappableSlot представляет чужое событие в витрине обменов,
// дополненное данными владельца для отображения
type SwappableSlot struct {
	Event
	OwnerName  string `json:"owner_name"`
	OwnerEmail string `json:"owner_email"`
}

// IncomingRequest представляет входящий запрос на обмен,
// дополненный данными отправителя и обоих событий
type IncomingRequest struct {
	SwapRequest
	SenderUserName       string `json:"sender_user_name"`
	SenderUserEmail      string `json:"sender_user_email"`
	SenderEventTitle     string `json:"sender_event_title"`
	SenderEventDate      string `json:"sender_event_date"`
	SenderEventStartTime string `json:"sender_event_start_time"`
	SenderEventEndTime   string `json:"sender_event_end_time"`
	TargetEventTitle     string `json:"target_event_title"`
	TargetEventDate      string `json:"target_event_date"`
	TargetEventStartTime string `json:"target_event_start_time"`
	TargetEventEndTime   string `json:"target_event_end_time"`
}
