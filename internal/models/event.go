package models

import (
	"time"

	"github.com/google/uuid"
)

// EventStatus — статус события в календаре
type EventStatus string

const (
	// StatusBusy — обычное событие, не участвует в обменах
	StatusBusy EventStatus = "BUSY"
	// StatusSwappable — владелец выставил событие на обмен
	StatusSwappable EventStatus = "SWAPPABLE"
	// StatusSwapPending — событие заблокировано активной заявкой на обмен
	StatusSwapPending EventStatus = "SWAP_PENDING"
)

// IsValid проверяет, что статус является одним из допустимых
func (s EventStatus) IsValid() bool {
	switch s {
	case StatusBusy, StatusSwappable, StatusSwapPending:
		return true
	}
	return false
}

// Event представляет событие в календаре пользователя
type Event struct {
	ID        uuid.UUID   `json:"id"`
	OwnerID   uuid.UUID   `json:"owner_id"`
	Title     string      `json:"title"`
	StartTime time.Time   `json:"start_time"`
	EndTime   time.Time   `json:"end_time"`
	Status    EventStatus `json:"status"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// SwappableSlot представляет чужое событие, доступное для обмена
type SwappableSlot struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	OwnerID   uuid.UUID `json:"owner_id"`
	OwnerName string    `json:"owner_name"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

// EventPatch описывает частичное обновление события.
// nil означает «поле не передано»: пустая строка или нулевое время —
// это тоже значения, а не признак отсутствия.
type EventPatch struct {
	Title     *string      `json:"title"`
	StartTime *time.Time   `json:"start_time"`
	EndTime   *time.Time   `json:"end_time"`
	Status    *EventStatus `json:"status"`
}

// IsEmpty сообщает, что в патче нет ни одного поля
func (p EventPatch) IsEmpty() bool {
	return p.Title == nil && p.StartTime == nil && p.EndTime == nil && p.Status == nil
}

// ApplyTo возвращает копию события с наложенными полями патча
func (p EventPatch) ApplyTo(e Event) Event {
	if p.Title != nil {
		e.Title = *p.Title
	}
	if p.StartTime != nil {
		e.StartTime = *p.StartTime
	}
	if p.EndTime != nil {
		e.EndTime = *p.EndTime
	}
	if p.Status != nil {
		e.Status = *p.Status
	}
	return e
}
