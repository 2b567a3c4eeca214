package swap

import (
	"context"
	"log"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/samiksha1911888/slot-swapper/internal/apperr"
	"github.com/samiksha1911888/slot-swapper/internal/config"
	"github.com/samiksha1911888/slot-swapper/internal/db"
	"github.com/samiksha1911888/slot-swapper/internal/engine"
	"github.com/samiksha1911888/slot-swapper/internal/middleware"
	"github.com/samiksha1911888/slot-swapper/internal/models"
	"github.com/samiksha1911888/slot-swapper/internal/store"
	"github.com/samiksha1911888/slot-swapper/internal/utils"
)

// SwapService представляет сервис обмена событиями
type SwapService struct {
	cfg        *config.Config
	jwtService *utils.JWTService
	engine     *engine.Engine
}

// NewSwapService создает новый экземпляр SwapService
func NewSwapService(cfg *config.Config) *SwapService {
	return &SwapService{
		cfg:        cfg,
		jwtService: utils.NewJWTService(cfg.JWTSecret),
		engine:     engine.New(store.NewPGStore(db.Pool)),
	}
}

// GetSwappableSlots возвращает чужие события, выставленные на обмен
func (s *SwapService) GetSwappableSlots(c fiber.Ctx) error {
	userID, ok := middleware.CallerID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Пользователь не авторизован"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	rows, err := db.Pool.Query(ctx, `
		SELECT e.id, e.title, e.owner_id, u.name, e.start_time, e.end_time
		FROM events e
		JOIN users u ON u.id = e.owner_id
		WHERE e.status = 'SWAPPABLE' AND e.owner_id <> $1
		ORDER BY e.start_time
	`, userID)
	if err != nil {
		log.Printf("Ошибка запроса доступных слотов: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения слотов"})
	}
	defer rows.Close()

	slots := make([]models.SwappableSlot, 0)
	for rows.Next() {
		var slot models.SwappableSlot
		if err := rows.Scan(
			&slot.ID,
			&slot.Title,
			&slot.OwnerID,
			&slot.OwnerName,
			&slot.StartTime,
			&slot.EndTime,
		); err != nil {
			log.Printf("Ошибка сканирования строки: %v", err)
			continue
		}
		slots = append(slots, slot)
	}

	return c.JSON(fiber.Map{
		"slots": slots,
		"count": len(slots),
	})
}

// RequestSwap создает заявку на обмен своего события на чужое
func (s *SwapService) RequestSwap(c fiber.Ctx) error {
	userID, ok := middleware.CallerID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Пользователь не авторизован"})
	}

	var requestData struct {
		MySlotID    string `json:"my_slot_id"`
		TheirSlotID string `json:"their_slot_id"`
	}

	if err := c.Bind().Body(&requestData); err != nil {
		log.Printf("Ошибка декодирования тела запроса: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат данных"})
	}

	if requestData.MySlotID == "" || requestData.TheirSlotID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Необходимо указать ID обоих событий"})
	}

	mySlotID, err := uuid.Parse(requestData.MySlotID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID своего события"})
	}

	theirSlotID, err := uuid.Parse(requestData.TheirSlotID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID чужого события"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	requestID, err := s.engine.RequestSwap(ctx, userID, mySlotID, theirSlotID)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":         true,
		"swap_request_id": requestID,
	})
}

// RespondSwap принимает или отклоняет заявку на обмен
func (s *SwapService) RespondSwap(c fiber.Ctx) error {
	userID, ok := middleware.CallerID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Пользователь не авторизован"})
	}

	requestID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID заявки"})
	}

	var requestData struct {
		Accept *bool `json:"accept"`
	}

	if err := c.Bind().Body(&requestData); err != nil {
		log.Printf("Ошибка декодирования тела запроса: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат данных"})
	}

	if requestData.Accept == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Укажите решение по заявке"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	outcome, err := s.engine.RespondSwap(ctx, userID, requestID, *requestData.Accept)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"status":  outcome,
	})
}

// GetIncomingRequests возвращает заявки, адресованные пользователю
func (s *SwapService) GetIncomingRequests(c fiber.Ctx) error {
	return s.listRequests(c, "sr.responder_id")
}

// GetOutgoingRequests возвращает заявки, созданные пользователем
func (s *SwapService) GetOutgoingRequests(c fiber.Ctx) error {
	return s.listRequests(c, "sr.requester_id")
}

// listRequests выполняет общий запрос списков заявок; filterColumn
// определяет, с какой стороны заявки стоит пользователь
func (s *SwapService) listRequests(c fiber.Ctx, filterColumn string) error {
	userID, ok := middleware.CallerID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Пользователь не авторизован"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	requests, err := s.queryRequests(ctx, filterColumn, userID)
	if err != nil {
		log.Printf("Ошибка запроса заявок на обмен: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения заявок"})
	}

	return c.JSON(fiber.Map{
		"requests": requests,
		"count":    len(requests),
	})
}

func (s *SwapService) queryRequests(ctx context.Context, filterColumn string, userID uuid.UUID) ([]models.SwapRequestDetails, error) {
	// filterColumn приходит только из listRequests, не от клиента
	rows, err := db.Pool.Query(ctx, `
		SELECT sr.id, sr.requester_id, sr.responder_id, sr.requester_event_id, sr.responder_event_id,
		       sr.status, sr.created_at, sr.updated_at,
		       u1.name, u2.name,
		       re.title, re.start_time, re.end_time,
		       pe.title, pe.start_time, pe.end_time
		FROM swap_requests sr
		JOIN users u1 ON u1.id = sr.requester_id
		JOIN users u2 ON u2.id = sr.responder_id
		JOIN events re ON re.id = sr.requester_event_id
		JOIN events pe ON pe.id = sr.responder_event_id
		WHERE `+filterColumn+` = $1
		ORDER BY sr.created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	requests := make([]models.SwapRequestDetails, 0)
	for rows.Next() {
		var req models.SwapRequestDetails
		if err := rows.Scan(
			&req.ID,
			&req.RequesterID,
			&req.ResponderID,
			&req.RequesterEventID,
			&req.ResponderEventID,
			&req.Status,
			&req.CreatedAt,
			&req.UpdatedAt,
			&req.RequesterName,
			&req.ResponderName,
			&req.RequesterEvent.Title,
			&req.RequesterEvent.StartTime,
			&req.RequesterEvent.EndTime,
			&req.ResponderEvent.Title,
			&req.ResponderEvent.StartTime,
			&req.ResponderEvent.EndTime,
		); err != nil {
			log.Printf("Ошибка сканирования заявки: %v", err)
			continue
		}
		requests = append(requests, req)
	}

	return requests, rows.Err()
}

// errorResponse переводит ошибку движка в HTTP-ответ
func errorResponse(c fiber.Ctx, err error) error {
	status := apperr.HTTPStatus(err)
	if status == fiber.StatusInternalServerError {
		// Детали уже в логах, клиенту — общий текст
		return c.Status(status).JSON(fiber.Map{"error": "Ошибка базы данных"})
	}
	return c.Status(status).JSON(fiber.Map{"error": apperr.ClientMessage(err)})
}
