package engine_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/samiksha1911888/slot-swapper/internal/models"
	"github.com/samiksha1911888/slot-swapper/internal/store"
)

// memStore — хранилище в памяти для тестов движка. WithTx держит мьютекс
// на всю транзакцию (сериализуемость) и откатывает изменения по снимку
// при ошибке, воспроизводя контракт store.Store без Postgres.
type memStore struct {
	mu     sync.Mutex
	events map[uuid.UUID]*models.Event
	swaps  map[uuid.UUID]*models.SwapRequest

	// failInsert имитирует сбой хранилища при создании заявки
	failInsert bool
}

func newMemStore() *memStore {
	return &memStore{
		events: make(map[uuid.UUID]*models.Event),
		swaps:  make(map[uuid.UUID]*models.SwapRequest),
	}
}

func (s *memStore) addEvent(owner uuid.UUID, status models.EventStatus) uuid.UUID {
	id := uuid.New()
	now := time.Now()
	s.events[id] = &models.Event{
		ID:        id,
		OwnerID:   owner,
		Title:     "slot " + id.String()[:8],
		StartTime: now.Add(time.Hour),
		EndTime:   now.Add(2 * time.Hour),
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return id
}

func (s *memStore) event(id uuid.UUID) models.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.events[id]
}

func (s *memStore) swap(id uuid.UUID) models.SwapRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.swaps[id]
}

func (s *memStore) pendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, sr := range s.swaps {
		if sr.Status == models.SwapPending {
			n++
		}
	}
	return n
}

func (s *memStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapEvents := make(map[uuid.UUID]*models.Event, len(s.events))
	for id, ev := range s.events {
		cp := *ev
		snapEvents[id] = &cp
	}
	snapSwaps := make(map[uuid.UUID]*models.SwapRequest, len(s.swaps))
	for id, sr := range s.swaps {
		cp := *sr
		snapSwaps[id] = &cp
	}

	if err := fn(&memTx{store: s}); err != nil {
		s.events = snapEvents
		s.swaps = snapSwaps
		return err
	}
	return nil
}

type memTx struct {
	store *memStore
}

func (t *memTx) LockEventPair(ctx context.Context, firstID, secondID uuid.UUID) (*models.Event, *models.Event, error) {
	return t.store.events[firstID], t.store.events[secondID], nil
}

func (t *memTx) SetEventStatus(ctx context.Context, eventID uuid.UUID, status models.EventStatus) error {
	ev, ok := t.store.events[eventID]
	if !ok {
		return errors.New("событие не найдено")
	}
	ev.Status = status
	ev.UpdatedAt = time.Now()
	return nil
}

func (t *memTx) SwapEventOwners(ctx context.Context, firstID uuid.UUID, firstOwner uuid.UUID, secondID uuid.UUID, secondOwner uuid.UUID) error {
	first, ok := t.store.events[firstID]
	if !ok {
		return errors.New("событие не найдено")
	}
	second, ok := t.store.events[secondID]
	if !ok {
		return errors.New("событие не найдено")
	}
	first.OwnerID = firstOwner
	first.Status = models.StatusBusy
	first.UpdatedAt = time.Now()
	second.OwnerID = secondOwner
	second.Status = models.StatusBusy
	second.UpdatedAt = time.Now()
	return nil
}

func (t *memTx) InsertSwapRequest(ctx context.Context, requesterID, responderID, requesterEventID, responderEventID uuid.UUID) (uuid.UUID, error) {
	if t.store.failInsert {
		return uuid.Nil, errors.New("имитация сбоя хранилища")
	}
	id := uuid.New()
	now := time.Now()
	t.store.swaps[id] = &models.SwapRequest{
		ID:               id,
		RequesterID:      requesterID,
		ResponderID:      responderID,
		RequesterEventID: requesterEventID,
		ResponderEventID: responderEventID,
		Status:           models.SwapPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	return id, nil
}

func (t *memTx) LockSwapRequest(ctx context.Context, requestID uuid.UUID) (*models.SwapRequest, error) {
	return t.store.swaps[requestID], nil
}

func (t *memTx) MarkSwapRequest(ctx context.Context, requestID uuid.UUID, status models.SwapStatus) error {
	sr, ok := t.store.swaps[requestID]
	if !ok {
		return errors.New("заявка не найдена")
	}
	sr.Status = status
	sr.UpdatedAt = time.Now()
	return nil
}
