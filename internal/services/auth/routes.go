package auth

import "github.com/gofiber/fiber/v3"

// SetupRoutes настраивает маршруты авторизации
func (s *AuthService) SetupRoutes(app *fiber.App) {
	api := app.Group("/api/auth")

	api.Post("/signup", s.SignupHandler)
	api.Post("/login", s.LoginHandler)
}
