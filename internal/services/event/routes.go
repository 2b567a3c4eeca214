package event

import (
	"github.com/gofiber/fiber/v3"

	"github.com/samiksha1911888/slot-swapper/internal/middleware"
)

// SetupRoutes настраивает маршруты для API событий
func (s *EventService) SetupRoutes(app *fiber.App) {
	api := app.Group("/api/events")

	// Все маршруты требуют авторизации
	api.Use(middleware.AuthMiddleware(s.jwtService))

	api.Get("/", s.GetMyEvents)
	api.Post("/", s.CreateEvent)
	api.Get("/export", s.ExportCalendar)
	api.Patch("/:id", s.UpdateEvent)
	api.Delete("/:id", s.DeleteEvent)
}
