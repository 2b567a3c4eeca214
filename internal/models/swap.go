package models

import (
	"time"

	"github.com/google/uuid"
)

// SwapStatus — статус заявки на обмен
type SwapStatus string

const (
	// SwapPending — заявка ждёт решения получателя
	SwapPending SwapStatus = "PENDING"
	// SwapAccepted — обмен принят, владельцы событий поменялись
	SwapAccepted SwapStatus = "ACCEPTED"
	// SwapRejected — обмен отклонён, события снова доступны
	SwapRejected SwapStatus = "REJECTED"
)

// IsTerminal сообщает, что заявка уже обработана и больше не меняется
func (s SwapStatus) IsTerminal() bool {
	return s == SwapAccepted || s == SwapRejected
}

// SwapRequest представляет заявку на обмен двух событий
type SwapRequest struct {
	ID               uuid.UUID  `json:"id"`
	RequesterID      uuid.UUID  `json:"requester_id"`
	ResponderID      uuid.UUID  `json:"responder_id"`
	RequesterEventID uuid.UUID  `json:"requester_event_id"`
	ResponderEventID uuid.UUID  `json:"responder_event_id"`
	Status           SwapStatus `json:"status"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// SwapRequestDetails — заявка, обогащённая данными сторон и событий
// для списков входящих/исходящих
type SwapRequestDetails struct {
	SwapRequest

	RequesterName string `json:"requester_name"`
	ResponderName string `json:"responder_name"`

	RequesterEvent EventSummary `json:"requester_event"`
	ResponderEvent EventSummary `json:"responder_event"`
}

// EventSummary — краткие данные события внутри заявки
type EventSummary struct {
	Title     string    `json:"title"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}
