package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/samiksha1911888/slot-swapper/internal/models"
)

// PGStore реализует Store поверх пула соединений pgx
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore создает новый экземпляр PGStore
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

// WithTx выполняет fn в транзакции базы данных
func (s *PGStore) WithTx(ctx context.Context, fn func(tx Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&pgTx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("ошибка фиксации транзакции: %w", err)
	}
	return nil
}

// pgTx оборачивает pgx.Tx в интерфейс Tx
type pgTx struct {
	tx pgx.Tx
}

// LockEventPair блокирует оба события через SELECT ... FOR UPDATE.
// Строки блокируются в порядке id, чтобы два встречных вызова
// не взяли блокировки навстречу друг другу.
func (t *pgTx) LockEventPair(ctx context.Context, firstID, secondID uuid.UUID) (*models.Event, *models.Event, error) {
	rows, err := t.tx.Query(ctx, `
		SELECT id, owner_id, title, start_time, end_time, status, created_at, updated_at
		FROM events
		WHERE id = $1 OR id = $2
		ORDER BY id
		FOR UPDATE
	`, firstID, secondID)
	if err != nil {
		return nil, nil, fmt.Errorf("ошибка чтения событий: %w", err)
	}
	defer rows.Close()

	found := make(map[uuid.UUID]*models.Event, 2)
	for rows.Next() {
		var ev models.Event
		if err := rows.Scan(
			&ev.ID,
			&ev.OwnerID,
			&ev.Title,
			&ev.StartTime,
			&ev.EndTime,
			&ev.Status,
			&ev.CreatedAt,
			&ev.UpdatedAt,
		); err != nil {
			return nil, nil, fmt.Errorf("ошибка сканирования события: %w", err)
		}
		found[ev.ID] = &ev
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("ошибка чтения событий: %w", err)
	}

	return found[firstID], found[secondID], nil
}

// SetEventStatus меняет статус события
func (t *pgTx) SetEventStatus(ctx context.Context, eventID uuid.UUID, status models.EventStatus) error {
	_, err := t.tx.Exec(ctx, `
		UPDATE events SET status = $1, updated_at = NOW() WHERE id = $2
	`, status, eventID)
	if err != nil {
		return fmt.Errorf("ошибка обновления статуса события: %w", err)
	}
	return nil
}

// SwapEventOwners передает события новым владельцам и переводит их в BUSY
func (t *pgTx) SwapEventOwners(ctx context.Context, firstID uuid.UUID, firstOwner uuid.UUID, secondID uuid.UUID, secondOwner uuid.UUID) error {
	_, err := t.tx.Exec(ctx, `
		UPDATE events
		SET owner_id = CASE WHEN id = $1 THEN $2::uuid ELSE $4::uuid END,
		    status = 'BUSY',
		    updated_at = NOW()
		WHERE id = $1 OR id = $3
	`, firstID, firstOwner, secondID, secondOwner)
	if err != nil {
		return fmt.Errorf("ошибка передачи владельцев: %w", err)
	}
	return nil
}

// InsertSwapRequest создает заявку на обмен в статусе PENDING
func (t *pgTx) InsertSwapRequest(ctx context.Context, requesterID, responderID, requesterEventID, responderEventID uuid.UUID) (uuid.UUID, error) {
	requestID := uuid.New()
	_, err := t.tx.Exec(ctx, `
		INSERT INTO swap_requests (id, requester_id, responder_id, requester_event_id, responder_event_id, status)
		VALUES ($1, $2, $3, $4, $5, 'PENDING')
	`, requestID, requesterID, responderID, requesterEventID, responderEventID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("ошибка создания заявки на обмен: %w", err)
	}
	return requestID, nil
}

// LockSwapRequest блокирует заявку через SELECT ... FOR UPDATE
func (t *pgTx) LockSwapRequest(ctx context.Context, requestID uuid.UUID) (*models.SwapRequest, error) {
	var req models.SwapRequest
	err := t.tx.QueryRow(ctx, `
		SELECT id, requester_id, responder_id, requester_event_id, responder_event_id, status, created_at, updated_at
		FROM swap_requests
		WHERE id = $1
		FOR UPDATE
	`, requestID).Scan(
		&req.ID,
		&req.RequesterID,
		&req.ResponderID,
		&req.RequesterEventID,
		&req.ResponderEventID,
		&req.Status,
		&req.CreatedAt,
		&req.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("ошибка чтения заявки на обмен: %w", err)
	}
	return &req, nil
}

// MarkSwapRequest переводит заявку в терминальный статус
func (t *pgTx) MarkSwapRequest(ctx context.Context, requestID uuid.UUID, status models.SwapStatus) error {
	_, err := t.tx.Exec(ctx, `
		UPDATE swap_requests SET status = $1, updated_at = NOW() WHERE id = $2
	`, status, requestID)
	if err != nil {
		return fmt.Errorf("ошибка обновления статуса заявки: %w", err)
	}
	return nil
}
