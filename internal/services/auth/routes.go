package auth

import (
	"github.com/gofiber/fiber/v3"
)

// SetupRoutes настраивает маршруты аутентификации
func (s *AuthService) SetupRoutes(app *fiber.App) {
	api := app.Group("/api/auth")

	api.Post("/signup", s.Signup)
	api.Post("/login", s.Login)
	api.Post("/logout", s.Logout)
}
