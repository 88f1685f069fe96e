package auth

import (
	"errors"
	"log"
	"regexp"
	"unicode/utf8"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/rajivgeraev/slotswap-api/internal/config"
	"github.com/rajivgeraev/slotswap-api/internal/db"
	"github.com/rajivgeraev/slotswap-api/internal/models"
	"github.com/rajivgeraev/slotswap-api/internal/storage"
	"github.com/rajivgeraev/slotswap-api/internal/utils"
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// AuthService представляет сервис аутентификации
type AuthService struct {
	cfg        *config.Config
	store      storage.Store
	jwtService *utils.JWTService
}

// NewAuthService создает новый экземпляр AuthService
func NewAuthService(cfg *config.Config, store storage.Store) *AuthService {
	return &AuthService{
		cfg:        cfg,
		store:      store,
		jwtService: utils.NewJWTService(cfg.JWTSecret),
	}
}

// GetJWTService возвращает JWT сервис для переиспользования в middleware
func (s *AuthService) GetJWTService() *utils.JWTService {
	return s.jwtService
}

// Signup регистрирует нового пользователя и сразу аутентифицирует его
func (s *AuthService) Signup(c fiber.Ctx) error {
	var requestData struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := c.Bind().Body(&requestData); err != nil {
		log.Printf("Ошибка декодирования тела запроса: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат данных"})
	}

	if utf8.RuneCountInString(requestData.Name) < 2 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Имя должно содержать минимум 2 символа"})
	}
	if !emailRe.MatchString(requestData.Email) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат email"})
	}
	if len(requestData.Password) < 6 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Пароль должен содержать минимум 6 символов"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	// Проверяем, что email ещё не занят
	_, err := s.store.Users().FindByEmail(ctx, requestData.Email)
	if err == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Email уже зарегистрирован"})
	}
	if !errors.Is(err, storage.ErrNotFound) {
		log.Printf("Ошибка проверки email: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка базы данных"})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(requestData.Password), 10)
	if err != nil {
		log.Printf("Ошибка хеширования пароля: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка регистрации"})
	}

	user := &models.User{
		ID:           uuid.New(),
		Name:         requestData.Name,
		Email:        requestData.Email,
		PasswordHash: string(hash),
	}

	if err := s.store.Users().Create(ctx, user); err != nil {
		log.Printf("Ошибка создания пользователя: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка регистрации"})
	}

	if err := s.setAuthCookie(c, user); err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"user":    user,
	})
}

// Login аутентифицирует пользователя по email и паролю
func (s *AuthService) Login(c fiber.Ctx) error {
	var requestData struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := c.Bind().Body(&requestData); err != nil {
		log.Printf("Ошибка декодирования тела запроса: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат данных"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	user, err := s.store.Users().FindByEmail(ctx, requestData.Email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			// Не раскрываем, существует ли email
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Неверные учетные данные"})
		}
		log.Printf("Ошибка поиска пользователя: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка базы данных"})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(requestData.Password)); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Неверные учетные данные"})
	}

	if err := s.setAuthCookie(c, user); err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"user":    user,
	})
}

// Logout завершает сессию, удаляя куку с токеном
func (s *AuthService) Logout(c fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     "token",
		Value:    "",
		HTTPOnly: true,
		Secure:   s.cfg.AppEnv == "production",
		MaxAge:   -1,
		Path:     "/",
	})

	return c.JSON(fiber.Map{"success": true})
}

// setAuthCookie выписывает JWT и кладёт его в httpOnly-куку на 7 дней
func (s *AuthService) setAuthCookie(c fiber.Ctx, user *models.User) error {
	token, err := s.jwtService.GenerateToken(user)
	if err != nil {
		log.Printf("Ошибка создания токена: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка аутентификации"})
	}

	c.Cookie(&fiber.Cookie{
		Name:     "token",
		Value:    token,
		HTTPOnly: true,
		Secure:   s.cfg.AppEnv == "production",
		MaxAge:   7 * 24 * 60 * 60,
		Path:     "/",
	})
	return nil
}
