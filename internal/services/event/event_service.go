package event

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/samiksha1911888/slot-swapper/internal/config"
	"github.com/samiksha1911888/slot-swapper/internal/db"
	"github.com/samiksha1911888/slot-swapper/internal/middleware"
	"github.com/samiksha1911888/slot-swapper/internal/models"
	"github.com/samiksha1911888/slot-swapper/internal/utils"
)

// EventService представляет сервис для работы с событиями календаря
type EventService struct {
	cfg        *config.Config
	jwtService *utils.JWTService
}

// NewEventService создает новый экземпляр EventService
func NewEventService(cfg *config.Config) *EventService {
	return &EventService{
		cfg:        cfg,
		jwtService: utils.NewJWTService(cfg.JWTSecret),
	}
}

// GetMyEvents возвращает события текущего пользователя,
// опционально отфильтрованные по статусу
func (s *EventService) GetMyEvents(c fiber.Ctx) error {
	userID, ok := middleware.CallerID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Пользователь не авторизован"})
	}

	status := c.Query("status")
	if status != "" && !models.EventStatus(status).IsValid() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Недопустимый статус события"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	var rows pgx.Rows
	var queryErr error

	if status == "" {
		rows, queryErr = db.Pool.Query(ctx, `
			SELECT id, owner_id, title, start_time, end_time, status, created_at, updated_at
			FROM events
			WHERE owner_id = $1
			ORDER BY start_time
		`, userID)
	} else {
		rows, queryErr = db.Pool.Query(ctx, `
			SELECT id, owner_id, title, start_time, end_time, status, created_at, updated_at
			FROM events
			WHERE owner_id = $1 AND status = $2
			ORDER BY start_time
		`, userID, status)
	}

	if queryErr != nil {
		log.Printf("Ошибка запроса событий: %v", queryErr)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения событий"})
	}
	defer rows.Close()

	events := make([]models.Event, 0)
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
			log.Printf("Ошибка сканирования строки: %v", err)
			continue
		}
		events = append(events, ev)
	}

	return c.JSON(fiber.Map{
		"events": events,
		"count":  len(events),
	})
}

// CreateEvent создает новое событие со статусом BUSY
func (s *EventService) CreateEvent(c fiber.Ctx) error {
	userID, ok := middleware.CallerID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Пользователь не авторизован"})
	}

	var requestData struct {
		Title     string     `json:"title" validate:"required"`
		StartTime *time.Time `json:"start_time" validate:"required"`
		EndTime   *time.Time `json:"end_time" validate:"required"`
	}

	if err := c.Bind().Body(&requestData); err != nil {
		log.Printf("Ошибка декодирования тела запроса: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат данных"})
	}

	if err := utils.Validate.Struct(requestData); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Укажите название, начало и конец события"})
	}

	if !requestData.EndTime.After(*requestData.StartTime) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Конец события должен быть позже начала"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	eventID := uuid.New()
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO events (id, owner_id, title, start_time, end_time, status)
		VALUES ($1, $2, $3, $4, $5, 'BUSY')
	`, eventID, userID, requestData.Title, requestData.StartTime, requestData.EndTime)

	if err != nil {
		log.Printf("Ошибка создания события: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка сохранения события"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":         eventID,
		"title":      requestData.Title,
		"start_time": requestData.StartTime,
		"end_time":   requestData.EndTime,
		"status":     models.StatusBusy,
	})
}

// UpdateEvent частично обновляет событие. Передаются только нужные поля;
// статус через этот маршрут меняется лишь между BUSY и SWAPPABLE,
// события под активным обменом не редактируются.
func (s *EventService) UpdateEvent(c fiber.Ctx) error {
	userID, ok := middleware.CallerID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Пользователь не авторизован"})
	}

	eventID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID события"})
	}

	var patch models.EventPatch
	if err := c.Bind().Body(&patch); err != nil {
		log.Printf("Ошибка декодирования тела запроса: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат данных"})
	}

	if patch.Status != nil && *patch.Status != models.StatusBusy && *patch.Status != models.StatusSwappable {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Статус можно менять только между BUSY и SWAPPABLE"})
	}

	if patch.IsEmpty() {
		return c.JSON(fiber.Map{"ok": true})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		log.Printf("Ошибка начала транзакции: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка базы данных"})
	}
	defer tx.Rollback(ctx)

	var current models.Event
	err = tx.QueryRow(ctx, `
		SELECT id, owner_id, title, start_time, end_time, status, created_at, updated_at
		FROM events
		WHERE id = $1
		FOR UPDATE
	`, eventID).Scan(
		&current.ID,
		&current.OwnerID,
		&current.Title,
		&current.StartTime,
		&current.EndTime,
		&current.Status,
		&current.CreatedAt,
		&current.UpdatedAt,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Событие не найдено"})
		}
		log.Printf("Ошибка запроса события: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения события"})
	}

	if current.OwnerID != userID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Вы не владелец этого события"})
	}

	// Событие под активным обменом меняет только движок обменов
	if current.Status == models.StatusSwapPending {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Событие заблокировано активной заявкой на обмен"})
	}

	updated := patch.ApplyTo(current)
	if !updated.EndTime.After(updated.StartTime) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Конец события должен быть позже начала"})
	}

	_, err = tx.Exec(ctx, `
		UPDATE events
		SET title = $1, start_time = $2, end_time = $3, status = $4, updated_at = NOW()
		WHERE id = $5
	`, updated.Title, updated.StartTime, updated.EndTime, updated.Status, eventID)

	if err != nil {
		log.Printf("Ошибка обновления события: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка обновления события"})
	}

	if err = tx.Commit(ctx); err != nil {
		log.Printf("Ошибка фиксации транзакции: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка базы данных"})
	}

	return c.JSON(fiber.Map{"ok": true})
}

// DeleteEvent удаляет событие. Событие под активным обменом удалить
// нельзя — иначе заявка осталась бы висеть на несуществующей записи.
func (s *EventService) DeleteEvent(c fiber.Ctx) error {
	userID, ok := middleware.CallerID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Пользователь не авторизован"})
	}

	eventID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID события"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		log.Printf("Ошибка начала транзакции: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка базы данных"})
	}
	defer tx.Rollback(ctx)

	var ownerID uuid.UUID
	var status models.EventStatus
	err = tx.QueryRow(ctx, `
		SELECT owner_id, status FROM events WHERE id = $1 FOR UPDATE
	`, eventID).Scan(&ownerID, &status)

	if err != nil {
		if err == pgx.ErrNoRows {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Событие не найдено"})
		}
		log.Printf("Ошибка запроса события: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения события"})
	}

	if ownerID != userID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Вы не владелец этого события"})
	}

	if status == models.StatusSwapPending {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Событие заблокировано активной заявкой на обмен"})
	}

	if _, err = tx.Exec(ctx, "DELETE FROM events WHERE id = $1", eventID); err != nil {
		log.Printf("Ошибка удаления события: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка удаления события"})
	}

	if err = tx.Commit(ctx); err != nil {
		log.Printf("Ошибка фиксации транзакции: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка базы данных"})
	}

	return c.JSON(fiber.Map{"ok": true})
}
