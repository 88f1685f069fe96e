package event

import (
	"github.com/gofiber/fiber/v3"

	"github.com/rajivgeraev/slotswap-api/internal/middleware"
)

// SetupRoutes настраивает маршруты для API событий
func (s *EventService) SetupRoutes(app *fiber.App) {
	api := app.Group("/api/events")

	// Все маршруты требуют авторизации
	api.Use(middleware.AuthMiddleware(s.jwtService))

	api.Get("/", s.GetMyEvents)
	api.Post("/", s.CreateEvent)
	api.Get("/:id", s.GetEvent)
	api.Put("/:id", s.UpdateEvent)
	api.Delete("/:id", s.DeleteEvent)
}
