package swap

import (
	"log"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/rajivgeraev/slotswap-api/internal/config"
	"github.com/rajivgeraev/slotswap-api/internal/db"
	"github.com/rajivgeraev/slotswap-api/internal/engine"
	"github.com/rajivgeraev/slotswap-api/internal/utils"
)

// SwapService представляет HTTP-сервис витрины обменов: предложение,
// разрешение и выборки поверх движка обменов
type SwapService struct {
	cfg        *config.Config
	engine     *engine.Engine
	queries    *engine.Queries
	jwtService *utils.JWTService
}

// NewSwapService создает новый экземпляр SwapService
func NewSwapService(cfg *config.Config, eng *engine.Engine, queries *engine.Queries) *SwapService {
	return &SwapService{
		cfg:        cfg,
		engine:     eng,
		queries:    queries,
		jwtService: utils.NewJWTService(cfg.JWTSecret),
	}
}

// GetSwappableSlots возвращает доступные к обмену события других
// пользователей
func (s *SwapService) GetSwappableSlots(c fiber.Ctx) error {
	userUUID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID пользователя"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	slots, err := s.queries.ListSwappable(ctx, userUUID)
	if err != nil {
		log.Printf("Ошибка выборки доступных событий: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения событий"})
	}

	return c.JSON(fiber.Map{
		"slots": slots,
		"count": len(slots),
	})
}

// GetIncomingRequests возвращает входящие запросы на обмен текущего
// пользователя с данными отправителя и событий
func (s *SwapService) GetIncomingRequests(c fiber.Ctx) error {
	userUUID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID пользователя"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	requests, err := s.queries.ListIncoming(ctx, userUUID)
	if err != nil {
		log.Printf("Ошибка выборки входящих запросов: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения запросов на обмен"})
	}

	return c.JSON(fiber.Map{
		"requests": requests,
		"count":    len(requests),
	})
}

// CreateSwapRequest создает предложение обмена от текущего пользователя
func (s *SwapService) CreateSwapRequest(c fiber.Ctx) error {
	userUUID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID пользователя"})
	}

	var requestData struct {
		SenderEventID string `json:"sender_event_id"`
		TargetEventID string `json:"target_event_id"`
		SenderUserID  string `json:"sender_user_id"`
		TargetUserID  string `json:"target_user_id"`
	}

	if err := c.Bind().Body(&requestData); err != nil {
		log.Printf("Ошибка декодирования тела запроса: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат данных"})
	}

	if requestData.SenderEventID == "" || requestData.TargetEventID == "" || requestData.TargetUserID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Необходимо указать оба события и целевого пользователя"})
	}

	senderEventID, err := uuid.Parse(requestData.SenderEventID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID события отправителя"})
	}
	targetEventID, err := uuid.Parse(requestData.TargetEventID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID целевого события"})
	}
	targetUserID, err := uuid.Parse(requestData.TargetUserID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID целевого пользователя"})
	}

	// Отправителем может быть только текущий пользователь
	if requestData.SenderUserID != "" && requestData.SenderUserID != userUUID.String() {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Нельзя создать предложение от имени другого пользователя"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	request, err := s.engine.Propose(ctx, engine.ProposeParams{
		SenderEventID: senderEventID,
		TargetEventID: targetEventID,
		SenderUserID:  userUUID,
		TargetUserID:  targetUserID,
	})
	if err != nil {
		return engineError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"request": request,
	})
}

// HandleSwapRequest обрабатывает решение по запросу на обмен
func (s *SwapService) HandleSwapRequest(c fiber.Ctx) error {
	userUUID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID пользователя"})
	}

	requestUUID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID запроса на обмен"})
	}

	var requestData struct {
		Decision string `json:"decision"`
	}

	if err := c.Bind().Body(&requestData); err != nil {
		log.Printf("Ошибка декодирования тела запроса: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат данных"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	if err := s.engine.Resolve(ctx, requestUUID, engine.Decision(requestData.Decision), userUUID); err != nil {
		return engineError(c, err)
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"request_id": requestUUID,
		"decision":   requestData.Decision,
	})
}

// engineError переводит ошибки движка в HTTP-ответы
func engineError(c fiber.Ctx, err error) error {
	switch {
	case engine.IsValidation(err):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case engine.IsNotFound(err):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case engine.IsForbidden(err):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": err.Error()})
	case engine.IsConflict(err):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	default:
		log.Printf("Ошибка движка обменов: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Внутренняя ошибка сервера"})
	}
}

// currentUserID извлекает ID пользователя, положенный auth middleware
func currentUserID(c fiber.Ctx) (uuid.UUID, bool) {
	userID, _ := c.Locals("userID").(string)
	if userID == "" {
		return uuid.Nil, false
	}
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return uuid.Nil, false
	}
	return userUUID, true
}
