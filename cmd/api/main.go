package main

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"

	"github.com/rajivgeraev/slotswap-api/internal/cache"
	"github.com/rajivgeraev/slotswap-api/internal/config"
	"github.com/rajivgeraev/slotswap-api/internal/db"
	"github.com/rajivgeraev/slotswap-api/internal/engine"
	"github.com/rajivgeraev/slotswap-api/internal/services/auth"
	"github.com/rajivgeraev/slotswap-api/internal/services/event"
	"github.com/rajivgeraev/slotswap-api/internal/services/swap"
	"github.com/rajivgeraev/slotswap-api/internal/storage"
)

func main() {
	// Загружаем конфигурацию
	cfg := config.LoadConfig()

	// Инициализируем базу данных
	database, err := db.New(cfg)
	if err != nil {
		log.Fatalf("❌ Ошибка при инициализации базы данных: %v", err)
	}
	defer database.Close()

	// Применяем миграции
	migrateCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := storage.Migrate(migrateCtx, database); err != nil {
		log.Fatalf("❌ Ошибка при применении миграций: %v", err)
	}

	// Кэш проекций опционален: без REDIS_URL витрина работает на живых выборках
	var projCache *cache.Cache
	if cfg.RedisURL != "" {
		projCache, err = cache.New(cfg.RedisURL)
		if err != nil {
			log.Fatalf("❌ Ошибка при подключении к Redis: %v", err)
		}
	}

	// Создаём экземпляр Fiber
	app := fiber.New(fiber.Config{
		AppName:      "SlotSwap API",
		ErrorHandler: errorHandler,
	})

	// Добавляем middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowCredentials: false,
	}))

	// Собираем ядро: хранилище, движок обменов, проекции
	store := storage.NewPostgresStore(database)
	swapEngine := engine.New(store, projCache)
	queries := engine.NewQueries(store, projCache)

	// Создаём сервисы
	authService := auth.NewAuthService(cfg, store)
	eventService := event.NewEventService(cfg, store)
	swapService := swap.NewSwapService(cfg, swapEngine, queries)

	// Регистрируем маршруты
	authService.SetupRoutes(app)
	eventService.SetupRoutes(app)
	swapService.SetupRoutes(app)

	// Запускаем сервер
	log.Printf("✅ SlotSwap API запущен на порту %s", cfg.Port)
	log.Fatal(app.Listen(":" + cfg.Port))
}

// errorHandler обрабатывает ошибки Fiber
func errorHandler(c fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	// Проверяем, является ли ошибка из Fiber
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	// Отправляем ошибку в JSON
	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
	})
}
