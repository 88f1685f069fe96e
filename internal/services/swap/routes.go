package swap

import (
	"github.com/gofiber/fiber/v3"

	"github.com/rajivgeraev/slotswap-api/internal/middleware"
)

// SetupRoutes настраивает маршруты для API обменов
func (s *SwapService) SetupRoutes(app *fiber.App) {
	authMiddleware := middleware.AuthMiddleware(s.jwtService)

	// Витрина доступных к обмену событий
	slots := app.Group("/api/swappable-slots")
	slots.Use(authMiddleware)
	slots.Get("/", s.GetSwappableSlots)

	api := app.Group("/api/swap-requests")
	api.Use(authMiddleware)

	api.Get("/", s.GetIncomingRequests)
	api.Post("/", s.CreateSwapRequest)
	api.Put("/:id/status", s.HandleSwapRequest)
}
