package event

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/rajivgeraev/slotswap-api/internal/config"
	"github.com/rajivgeraev/slotswap-api/internal/db"
	"github.com/rajivgeraev/slotswap-api/internal/models"
	"github.com/rajivgeraev/slotswap-api/internal/storage"
	"github.com/rajivgeraev/slotswap-api/internal/utils"
)

// EventService представляет сервис для работы с событиями календаря
type EventService struct {
	cfg        *config.Config
	store      storage.Store
	jwtService *utils.JWTService
}

// NewEventService создает новый экземпляр EventService
func NewEventService(cfg *config.Config, store storage.Store) *EventService {
	return &EventService{
		cfg:        cfg,
		store:      store,
		jwtService: utils.NewJWTService(cfg.JWTSecret),
	}
}

// GetMyEvents возвращает события текущего пользователя
func (s *EventService) GetMyEvents(c fiber.Ctx) error {
	userUUID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID пользователя"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	events, err := s.store.Events().Find(ctx, storage.EventFilter{OwnerID: &userUUID})
	if err != nil {
		log.Printf("Ошибка запроса событий: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения событий"})
	}

	return c.JSON(fiber.Map{
		"events": events,
		"count":  len(events),
	})
}

// CreateEvent создает новое событие текущего пользователя
func (s *EventService) CreateEvent(c fiber.Ctx) error {
	userUUID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID пользователя"})
	}

	var requestData struct {
		Title     string `json:"title"`
		Date      string `json:"date"`
		StartTime string `json:"start_time"`
		EndTime   string `json:"end_time"`
		Status    string `json:"status"`
	}

	if err := c.Bind().Body(&requestData); err != nil {
		log.Printf("Ошибка декодирования тела запроса: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат данных"})
	}

	// По умолчанию событие доступно для обмена
	status := models.EventStatus(requestData.Status)
	if requestData.Status == "" {
		status = models.EventStatusSwappable
	}

	if msg := validateEventFields(requestData.Title, requestData.Date, requestData.StartTime, requestData.EndTime, status); msg != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
	}

	event := &models.Event{
		ID:        uuid.New(),
		OwnerID:   userUUID,
		Title:     requestData.Title,
		Date:      requestData.Date,
		StartTime: requestData.StartTime,
		EndTime:   requestData.EndTime,
		Status:    status,
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	if err := s.store.Events().Create(ctx, event); err != nil {
		log.Printf("Ошибка создания события: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка сохранения события"})
	}

	return c.Status(fiber.StatusCreated).JSON(event)
}

// GetEvent возвращает одно событие по ID
func (s *EventService) GetEvent(c fiber.Ctx) error {
	eventUUID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID события"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	event, err := s.store.Events().FindByID(ctx, eventUUID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Событие не найдено"})
		}
		log.Printf("Ошибка запроса события: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения события"})
	}

	return c.JSON(event)
}

// UpdateEvent обновляет событие. Статусы, принадлежащие движку обменов,
// через этот путь выставить нельзя; событие в активном обмене
// редактированию не подлежит.
func (s *EventService) UpdateEvent(c fiber.Ctx) error {
	userUUID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID пользователя"})
	}

	eventUUID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID события"})
	}

	var requestData struct {
		Title     string `json:"title"`
		Date      string `json:"date"`
		StartTime string `json:"start_time"`
		EndTime   string `json:"end_time"`
		Status    string `json:"status"`
	}

	if err := c.Bind().Body(&requestData); err != nil {
		log.Printf("Ошибка декодирования тела запроса: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат данных"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	event, err := s.store.Events().FindByID(ctx, eventUUID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Событие не найдено"})
		}
		log.Printf("Ошибка запроса события: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения события"})
	}

	if event.OwnerID != userUUID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Вы не можете редактировать чужое событие"})
	}
	if event.Status == models.EventStatusSwapPending {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Событие участвует в обмене и не может быть изменено"})
	}

	if requestData.Title != "" {
		event.Title = requestData.Title
	}
	if requestData.Date != "" {
		event.Date = requestData.Date
	}
	if requestData.StartTime != "" {
		event.StartTime = requestData.StartTime
	}
	if requestData.EndTime != "" {
		event.EndTime = requestData.EndTime
	}
	if requestData.Status != "" {
		event.Status = models.EventStatus(requestData.Status)
	}

	if msg := validateEventFields(event.Title, event.Date, event.StartTime, event.EndTime, event.Status); msg != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
	}

	if err := s.store.Events().Update(ctx, event); err != nil {
		log.Printf("Ошибка обновления события: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка обновления события"})
	}

	return c.JSON(event)
}

// DeleteEvent удаляет событие владельца. Событие в активном обмене
// удалить нельзя: иначе останется висящий запрос на обмен.
func (s *EventService) DeleteEvent(c fiber.Ctx) error {
	userUUID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID пользователя"})
	}

	eventUUID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID события"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	event, err := s.store.Events().FindByID(ctx, eventUUID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Событие не найдено"})
		}
		log.Printf("Ошибка запроса события: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения события"})
	}

	if event.OwnerID != userUUID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Вы не можете удалить чужое событие"})
	}
	if event.Status == models.EventStatusSwapPending {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Событие участвует в обмене и не может быть удалено"})
	}

	if err := s.store.Events().Delete(ctx, eventUUID); err != nil {
		log.Printf("Ошибка удаления события: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка удаления события"})
	}

	return c.JSON(fiber.Map{"success": true})
}

// validateEventFields проверяет поля события, возвращая текст ошибки
// или пустую строку
func validateEventFields(title, date, startTime, endTime string, status models.EventStatus) string {
	if title == "" {
		return "Название обязательно"
	}
	if len(title) > 100 {
		return "Название не может превышать 100 символов"
	}
	if !models.IsValidDate(date) {
		return "Дата должна быть в формате YYYY-MM-DD"
	}
	if !models.IsValidTime(startTime) {
		return "Время начала должно быть в формате HH:MM"
	}
	if !models.IsValidTime(endTime) {
		return "Время окончания должно быть в формате HH:MM"
	}
	if !models.IsValidTimeRange(startTime, endTime) {
		return "Время начала должно быть раньше времени окончания"
	}
	if !status.IsValid() {
		return "Недопустимый статус события"
	}
	if status.IsEngineOwned() {
		return "Статус " + string(status) + " выставляется только движком обменов"
	}
	return ""
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
