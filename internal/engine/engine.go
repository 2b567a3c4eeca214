// Package engine реализует протокол обмена событиями: две фазы
// (предложение → принятие/отклонение) с блокирующим статусом
// SWAP_PENDING. Пара событий проходит состояния: оба SWAPPABLE →
// заявка PENDING и оба события SWAP_PENDING → либо ACCEPTED
// (владельцы поменялись, события BUSY), либо REJECTED (события
// снова SWAPPABLE). Терминальная заявка больше не меняется.
//
// Каждая операция выполняется в одной транзакции: проверки порядка
// «существование → владение → статус» и все записи либо фиксируются
// вместе, либо не видны вовсе.
package engine

import (
	"context"
	"log"

	"github.com/google/uuid"

	"github.com/samiksha1911888/slot-swapper/internal/apperr"
	"github.com/samiksha1911888/slot-swapper/internal/models"
	"github.com/samiksha1911888/slot-swapper/internal/store"
)

// Engine координирует события и заявки на обмен
type Engine struct {
	store store.Store
}

// New создает новый движок над переданным хранилищем
func New(s store.Store) *Engine {
	return &Engine{store: s}
}

// RequestSwap создает заявку на обмен mySlotID на theirSlotID от имени
// requesterID и блокирует оба события статусом SWAP_PENDING.
// Возвращает id новой заявки.
func (e *Engine) RequestSwap(ctx context.Context, requesterID, mySlotID, theirSlotID uuid.UUID) (uuid.UUID, error) {
	if mySlotID == theirSlotID {
		return uuid.Nil, apperr.InvalidState("Нельзя обменять событие на него само")
	}

	var requestID uuid.UUID

	err := e.store.WithTx(ctx, func(tx store.Tx) error {
		mySlot, theirSlot, err := tx.LockEventPair(ctx, mySlotID, theirSlotID)
		if err != nil {
			log.Printf("Ошибка чтения событий для обмена: %v", err)
			return apperr.Storage(err)
		}

		// Порядок проверок фиксирован: существование → владение → статус
		if mySlot == nil || theirSlot == nil {
			return apperr.NotFound("Одно или оба события не найдены")
		}
		if mySlot.OwnerID != requesterID {
			return apperr.Forbidden("Вы не владеете предлагаемым событием")
		}
		if mySlot.Status != models.StatusSwappable || theirSlot.Status != models.StatusSwappable {
			return apperr.InvalidState("Одно или оба события недоступны для обмена")
		}

		requestID, err = tx.InsertSwapRequest(ctx, requesterID, theirSlot.OwnerID, mySlotID, theirSlotID)
		if err != nil {
			log.Printf("Ошибка создания заявки на обмен: %v", err)
			return apperr.Storage(err)
		}

		for _, id := range []uuid.UUID{mySlotID, theirSlotID} {
			if err := tx.SetEventStatus(ctx, id, models.StatusSwapPending); err != nil {
				log.Printf("Ошибка блокировки события %s: %v", id, err)
				return apperr.Storage(err)
			}
		}
		return nil
	})
	if err != nil {
		return uuid.Nil, err
	}

	return requestID, nil
}

// RespondSwap обрабатывает решение получателя заявки. При accept=true
// события меняются владельцами и становятся BUSY, при accept=false
// возвращаются в SWAPPABLE. Возвращает итоговый статус заявки.
func (e *Engine) RespondSwap(ctx context.Context, responderID, requestID uuid.UUID, accept bool) (models.SwapStatus, error) {
	var outcome models.SwapStatus

	err := e.store.WithTx(ctx, func(tx store.Tx) error {
		req, err := tx.LockSwapRequest(ctx, requestID)
		if err != nil {
			log.Printf("Ошибка чтения заявки %s: %v", requestID, err)
			return apperr.Storage(err)
		}
		if req == nil {
			return apperr.NotFound("Заявка на обмен не найдена")
		}
		if req.ResponderID != responderID {
			return apperr.Forbidden("Ответить на заявку может только её получатель")
		}
		if req.Status != models.SwapPending {
			return apperr.InvalidState("Заявка уже обработана")
		}

		reqEvent, respEvent, err := tx.LockEventPair(ctx, req.RequesterEventID, req.ResponderEventID)
		if err != nil {
			log.Printf("Ошибка чтения событий заявки %s: %v", requestID, err)
			return apperr.Storage(err)
		}
		if reqEvent == nil || respEvent == nil {
			return apperr.InvalidState("События заявки отсутствуют")
		}
		// Страховка от записей, измененных в обход протокола
		if reqEvent.Status != models.StatusSwapPending || respEvent.Status != models.StatusSwapPending {
			return apperr.InvalidState("События заявки не заблокированы под обмен")
		}

		if !accept {
			outcome = models.SwapRejected
			if err := tx.MarkSwapRequest(ctx, requestID, models.SwapRejected); err != nil {
				log.Printf("Ошибка отклонения заявки %s: %v", requestID, err)
				return apperr.Storage(err)
			}
			for _, id := range []uuid.UUID{req.RequesterEventID, req.ResponderEventID} {
				if err := tx.SetEventStatus(ctx, id, models.StatusSwappable); err != nil {
					log.Printf("Ошибка разблокировки события %s: %v", id, err)
					return apperr.Storage(err)
				}
			}
			return nil
		}

		outcome = models.SwapAccepted
		// Событие инициатора уходит получателю, событие получателя — инициатору
		if err := tx.SwapEventOwners(ctx, req.RequesterEventID, req.ResponderID, req.ResponderEventID, req.RequesterID); err != nil {
			log.Printf("Ошибка передачи владельцев по заявке %s: %v", requestID, err)
			return apperr.Storage(err)
		}
		if err := tx.MarkSwapRequest(ctx, requestID, models.SwapAccepted); err != nil {
			log.Printf("Ошибка принятия заявки %s: %v", requestID, err)
			return apperr.Storage(err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	return outcome, nil
}
