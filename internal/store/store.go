// Package store определяет транзакционную границу над событиями
// и заявками на обмен. Движок обменов работает только через Store:
// вся последовательность чтение-проверка-запись выполняется внутри
// одной транзакции и либо фиксируется целиком, либо откатывается.
package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/samiksha1911888/slot-swapper/internal/models"
)

// Store открывает транзакции над хранилищем
type Store interface {
	// WithTx выполняет fn в транзакции. Ошибка fn откатывает
	// все изменения; nil — фиксирует их.
	WithTx(ctx context.Context, fn func(tx Tx) error) error
}

// Tx — операции, доступные внутри транзакции. Чтения берут блокировку
// на строку, поэтому проверенные условия сохраняются до записи.
type Tx interface {
	// LockEventPair читает и блокирует оба события. Отсутствующее
	// событие возвращается как nil без ошибки.
	LockEventPair(ctx context.Context, firstID, secondID uuid.UUID) (*models.Event, *models.Event, error)

	// SetEventStatus меняет статус события
	SetEventStatus(ctx context.Context, eventID uuid.UUID, status models.EventStatus) error

	// SwapEventOwners передает firstID владельцу firstOwner, secondID —
	// secondOwner и переводит оба события в BUSY
	SwapEventOwners(ctx context.Context, firstID uuid.UUID, firstOwner uuid.UUID, secondID uuid.UUID, secondOwner uuid.UUID) error

	// InsertSwapRequest создает заявку в статусе PENDING и возвращает её id
	InsertSwapRequest(ctx context.Context, requesterID, responderID, requesterEventID, responderEventID uuid.UUID) (uuid.UUID, error)

	// LockSwapRequest читает и блокирует заявку; nil — заявки нет
	LockSwapRequest(ctx context.Context, requestID uuid.UUID) (*models.SwapRequest, error)

	// MarkSwapRequest переводит заявку в терминальный статус
	// и обновляет updated_at
	MarkSwapRequest(ctx context.Context, requestID uuid.UUID, status models.SwapStatus) error
}
