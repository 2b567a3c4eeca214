package swap

import (
	"github.com/gofiber/fiber/v3"

	"github.com/samiksha1911888/slot-swapper/internal/middleware"
)

// SetupRoutes настраивает маршруты для API обменов
func (s *SwapService) SetupRoutes(app *fiber.App) {
	api := app.Group("/api/swaps")

	// Защищенные маршруты (требуют авторизации)
	api.Use(middleware.AuthMiddleware(s.jwtService))

	api.Get("/swappable-slots", s.GetSwappableSlots)
	api.Post("/request", s.RequestSwap)
	api.Post("/response/:id", s.RespondSwap)
	api.Get("/incoming", s.GetIncomingRequests)
	api.Get("/outgoing", s.GetOutgoingRequests)
}
