package engine_test

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samiksha1911888/slot-swapper/internal/apperr"
	"github.com/samiksha1911888/slot-swapper/internal/engine"
	"github.com/samiksha1911888/slot-swapper/internal/models"
)

func TestRequestSwap(t *testing.T) {
	ctx := context.Background()
	u1 := uuid.New()
	u2 := uuid.New()

	st := newMemStore()
	mySlot := st.addEvent(u1, models.StatusSwappable)
	theirSlot := st.addEvent(u2, models.StatusSwappable)

	eng := engine.New(st)

	requestID, err := eng.RequestSwap(ctx, u1, mySlot, theirSlot)
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, requestID)

	// Оба события заблокированы, заявка в ожидании
	assert.Equal(t, models.StatusSwapPending, st.event(mySlot).Status)
	assert.Equal(t, models.StatusSwapPending, st.event(theirSlot).Status)

	req := st.swap(requestID)
	assert.Equal(t, models.SwapPending, req.Status)
	assert.Equal(t, u1, req.RequesterID)
	assert.Equal(t, u2, req.ResponderID)
	assert.Equal(t, mySlot, req.RequesterEventID)
	assert.Equal(t, theirSlot, req.ResponderEventID)
}

func TestRequestSwapValidationOrder(t *testing.T) {
	// Порядок проверок — контракт: существование → владение → статус
	u1 := uuid.New()
	u2 := uuid.New()

	tests := []struct {
		name  string
		setup func(st *memStore) (mySlot, theirSlot uuid.UUID)
		kind  apperr.Kind
	}{
		{
			name: "мое событие не существует",
			setup: func(st *memStore) (uuid.UUID, uuid.UUID) {
				return uuid.New(), st.addEvent(u2, models.StatusSwappable)
			},
			kind: apperr.KindNotFound,
		},
		{
			name: "чужое событие не существует",
			setup: func(st *memStore) (uuid.UUID, uuid.UUID) {
				return st.addEvent(u1, models.StatusSwappable), uuid.New()
			},
			kind: apperr.KindNotFound,
		},
		{
			name: "чужое событие при этом не SWAPPABLE — существование проверяется раньше",
			setup: func(st *memStore) (uuid.UUID, uuid.UUID) {
				return uuid.New(), st.addEvent(u2, models.StatusBusy)
			},
			kind: apperr.KindNotFound,
		},
		{
			name: "событие не принадлежит инициатору",
			setup: func(st *memStore) (uuid.UUID, uuid.UUID) {
				return st.addEvent(u2, models.StatusSwappable), st.addEvent(u2, models.StatusSwappable)
			},
			kind: apperr.KindForbidden,
		},
		{
			name: "чужое событие и не мое, и не SWAPPABLE — владение проверяется раньше",
			setup: func(st *memStore) (uuid.UUID, uuid.UUID) {
				return st.addEvent(u2, models.StatusBusy), st.addEvent(u2, models.StatusBusy)
			},
			kind: apperr.KindForbidden,
		},
		{
			name: "обмен события на него само",
			setup: func(st *memStore) (uuid.UUID, uuid.UUID) {
				id := st.addEvent(u1, models.StatusSwappable)
				return id, id
			},
			kind: apperr.KindInvalidState,
		},
		{
			name: "мое событие BUSY",
			setup: func(st *memStore) (uuid.UUID, uuid.UUID) {
				return st.addEvent(u1, models.StatusBusy), st.addEvent(u2, models.StatusSwappable)
			},
			kind: apperr.KindInvalidState,
		},
		{
			name: "чужое событие уже под обменом",
			setup: func(st *memStore) (uuid.UUID, uuid.UUID) {
				return st.addEvent(u1, models.StatusSwappable), st.addEvent(u2, models.StatusSwapPending)
			},
			kind: apperr.KindInvalidState,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := newMemStore()
			mySlot, theirSlot := tt.setup(st)
			eng := engine.New(st)

			_, err := eng.RequestSwap(context.Background(), u1, mySlot, theirSlot)
			require.Error(t, err)
			assert.Equal(t, tt.kind, apperr.KindOf(err))
			// Неудачная попытка ничего не оставляет после себя
			assert.Zero(t, st.pendingCount())
		})
	}
}

func TestRequestSwapStorageFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	u1 := uuid.New()
	u2 := uuid.New()

	st := newMemStore()
	mySlot := st.addEvent(u1, models.StatusSwappable)
	theirSlot := st.addEvent(u2, models.StatusSwappable)
	st.failInsert = true

	eng := engine.New(st)

	_, err := eng.RequestSwap(ctx, u1, mySlot, theirSlot)
	require.Error(t, err)
	assert.Equal(t, apperr.KindStorage, apperr.KindOf(err))

	// Откат: события остались доступными
	assert.Equal(t, models.StatusSwappable, st.event(mySlot).Status)
	assert.Equal(t, models.StatusSwappable, st.event(theirSlot).Status)
	assert.Zero(t, st.pendingCount())
}

func TestRespondSwapAccept(t *testing.T) {
	ctx := context.Background()
	u1 := uuid.New()
	u2 := uuid.New()

	st := newMemStore()
	mySlot := st.addEvent(u1, models.StatusSwappable)
	theirSlot := st.addEvent(u2, models.StatusSwappable)

	eng := engine.New(st)
	requestID, err := eng.RequestSwap(ctx, u1, mySlot, theirSlot)
	require.NoError(t, err)

	created := st.swap(requestID)

	outcome, err := eng.RespondSwap(ctx, u2, requestID, true)
	require.NoError(t, err)
	assert.Equal(t, models.SwapAccepted, outcome)

	// Владельцы поменялись, оба события снова обычные
	assert.Equal(t, u2, st.event(mySlot).OwnerID)
	assert.Equal(t, u1, st.event(theirSlot).OwnerID)
	assert.Equal(t, models.StatusBusy, st.event(mySlot).Status)
	assert.Equal(t, models.StatusBusy, st.event(theirSlot).Status)

	final := st.swap(requestID)
	assert.Equal(t, models.SwapAccepted, final.Status)
	assert.True(t, final.UpdatedAt.After(created.UpdatedAt) || final.UpdatedAt.Equal(created.UpdatedAt))

	// Повторный ответ по той же заявке невозможен и ничего не меняет
	_, err = eng.RespondSwap(ctx, u2, requestID, true)
	require.Error(t, err)
	assert.Equal(t, apperr.KindInvalidState, apperr.KindOf(err))
	assert.Equal(t, u2, st.event(mySlot).OwnerID)
	assert.Equal(t, u1, st.event(theirSlot).OwnerID)
}

func TestRespondSwapReject(t *testing.T) {
	ctx := context.Background()
	u1 := uuid.New()
	u2 := uuid.New()

	st := newMemStore()
	mySlot := st.addEvent(u1, models.StatusSwappable)
	theirSlot := st.addEvent(u2, models.StatusSwappable)

	eng := engine.New(st)
	requestID, err := eng.RequestSwap(ctx, u1, mySlot, theirSlot)
	require.NoError(t, err)

	outcome, err := eng.RespondSwap(ctx, u2, requestID, false)
	require.NoError(t, err)
	assert.Equal(t, models.SwapRejected, outcome)

	// Владельцы не изменились, события снова доступны для обмена
	assert.Equal(t, u1, st.event(mySlot).OwnerID)
	assert.Equal(t, u2, st.event(theirSlot).OwnerID)
	assert.Equal(t, models.StatusSwappable, st.event(mySlot).Status)
	assert.Equal(t, models.StatusSwappable, st.event(theirSlot).Status)
	assert.Equal(t, models.SwapRejected, st.swap(requestID).Status)

	// После отклонения события можно предлагать заново
	newID, err := eng.RequestSwap(ctx, u1, mySlot, theirSlot)
	require.NoError(t, err)
	require.NotEqual(t, requestID, newID)
}

func TestRespondSwapValidation(t *testing.T) {
	ctx := context.Background()
	u1 := uuid.New()
	u2 := uuid.New()
	stranger := uuid.New()

	st := newMemStore()
	mySlot := st.addEvent(u1, models.StatusSwappable)
	theirSlot := st.addEvent(u2, models.StatusSwappable)

	eng := engine.New(st)
	requestID, err := eng.RequestSwap(ctx, u1, mySlot, theirSlot)
	require.NoError(t, err)

	t.Run("несуществующая заявка", func(t *testing.T) {
		_, err := eng.RespondSwap(ctx, u2, uuid.New(), true)
		require.Error(t, err)
		assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	})

	t.Run("инициатор не может ответить сам", func(t *testing.T) {
		_, err := eng.RespondSwap(ctx, u1, requestID, true)
		require.Error(t, err)
		assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
	})

	t.Run("посторонний не может ответить", func(t *testing.T) {
		_, err := eng.RespondSwap(ctx, stranger, requestID, true)
		require.Error(t, err)
		assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
	})

	t.Run("события, измененные в обход протокола", func(t *testing.T) {
		// Снимаем блокировку напрямую, как будто запись испортили
		st.mu.Lock()
		st.events[theirSlot].Status = models.StatusBusy
		st.mu.Unlock()

		_, err := eng.RespondSwap(ctx, u2, requestID, true)
		require.Error(t, err)
		assert.Equal(t, apperr.KindInvalidState, apperr.KindOf(err))

		// Заявка осталась в ожидании, владельцы на месте
		assert.Equal(t, models.SwapPending, st.swap(requestID).Status)
		assert.Equal(t, u1, st.event(mySlot).OwnerID)
	})
}

func TestConcurrentRequestsForSameSlot(t *testing.T) {
	// Две заявки целятся в одно SWAPPABLE событие: выигрывает ровно одна
	ctx := context.Background()
	u1 := uuid.New()
	u2 := uuid.New()
	u3 := uuid.New()

	st := newMemStore()
	slotA := st.addEvent(u1, models.StatusSwappable)
	slotB := st.addEvent(u2, models.StatusSwappable)
	slotC := st.addEvent(u3, models.StatusSwappable)

	eng := engine.New(st)

	var wg sync.WaitGroup
	errs := make([]error, 2)

	wg.Add(2)
	go func() {
		defer wg.Done()
		_, errs[0] = eng.RequestSwap(ctx, u1, slotA, slotB)
	}()
	go func() {
		defer wg.Done()
		_, errs[1] = eng.RequestSwap(ctx, u3, slotC, slotB)
	}()
	wg.Wait()

	var okCount, conflictCount int
	for _, err := range errs {
		if err == nil {
			okCount++
			continue
		}
		require.Equal(t, apperr.KindInvalidState, apperr.KindOf(err))
		conflictCount++
	}

	assert.Equal(t, 1, okCount)
	assert.Equal(t, 1, conflictCount)
	assert.Equal(t, 1, st.pendingCount())
	assert.Equal(t, models.StatusSwapPending, st.event(slotB).Status)

	// Слот проигравшего остался доступным
	if errs[0] == nil {
		assert.Equal(t, models.StatusSwapPending, st.event(slotA).Status)
		assert.Equal(t, models.StatusSwappable, st.event(slotC).Status)
	} else {
		assert.Equal(t, models.StatusSwapPending, st.event(slotC).Status)
		assert.Equal(t, models.StatusSwappable, st.event(slotA).Status)
	}
}

func TestConcurrentResponsesToSameRequest(t *testing.T) {
	// Два одновременных ответа: фиксируется только первый
	ctx := context.Background()
	u1 := uuid.New()
	u2 := uuid.New()

	st := newMemStore()
	mySlot := st.addEvent(u1, models.StatusSwappable)
	theirSlot := st.addEvent(u2, models.StatusSwappable)

	eng := engine.New(st)
	requestID, err := eng.RequestSwap(ctx, u1, mySlot, theirSlot)
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 2)

	wg.Add(2)
	go func() {
		defer wg.Done()
		_, errs[0] = eng.RespondSwap(ctx, u2, requestID, true)
	}()
	go func() {
		defer wg.Done()
		_, errs[1] = eng.RespondSwap(ctx, u2, requestID, false)
	}()
	wg.Wait()

	var okCount, conflictCount int
	for _, err := range errs {
		if err == nil {
			okCount++
			continue
		}
		require.Equal(t, apperr.KindInvalidState, apperr.KindOf(err))
		conflictCount++
	}

	assert.Equal(t, 1, okCount)
	assert.Equal(t, 1, conflictCount)
	assert.True(t, st.swap(requestID).Status.IsTerminal())

	// Итог согласован: либо обмен состоялся целиком, либо не состоялся вовсе
	switch st.swap(requestID).Status {
	case models.SwapAccepted:
		assert.Equal(t, u2, st.event(mySlot).OwnerID)
		assert.Equal(t, u1, st.event(theirSlot).OwnerID)
		assert.Equal(t, models.StatusBusy, st.event(mySlot).Status)
		assert.Equal(t, models.StatusBusy, st.event(theirSlot).Status)
	case models.SwapRejected:
		assert.Equal(t, u1, st.event(mySlot).OwnerID)
		assert.Equal(t, u2, st.event(theirSlot).OwnerID)
		assert.Equal(t, models.StatusSwappable, st.event(mySlot).Status)
		assert.Equal(t, models.StatusSwappable, st.event(theirSlot).Status)
	}
}
