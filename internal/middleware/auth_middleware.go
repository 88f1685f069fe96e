package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/rajivgeraev/slotswap-api/internal/utils"
)

// AuthMiddleware создаёт middleware для проверки JWT. Токен берётся из
// httpOnly-куки token или из заголовка Authorization. Без валидного
// токена обработчик не выполняется.
func AuthMiddleware(jwtService *utils.JWTService) fiber.Handler {
	return func(c fiber.Ctx) error {
		tokenString := c.Cookies("token")

		if tokenString == "" {
			authHeader := c.Get("Authorization")
			if authHeader != "" {
				parts := strings.Split(authHeader, " ")
				if len(parts) != 2 || parts[0] != "Bearer" {
					return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
						"error": "Неверный формат заголовка Authorization",
					})
				}
				tokenString = parts[1]
			}
		}

		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Требуется аутентификация",
			})
		}

		claims, err := jwtService.VerifyToken(tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Невалидный или просроченный токен",
			})
		}

		// Добавляем данные пользователя в контекст запроса
		c.Locals("userID", claims.UserID.String())
		c.Locals("userEmail", claims.Email)
		c.Locals("userName", claims.Name)

		return c.Next()
	}
}
