package cache

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"github.com/rajivgeraev/slotswap-api/internal/models"
)

// incomingTTL ограничивает время жизни проекции на случай пропущенной
// инвалидации
const incomingTTL = time.Minute

// Cache хранит обогащённую проекцию входящих запросов на обмен в Redis,
// чтобы не повторять веер точечных чтений на каждый запрос витрины.
// Nil-экземпляр безопасен: все операции превращаются в промахи.
type Cache struct {
	client *redis.Client
}

// New создает кэш поверх Redis и проверяет соединение
func New(url string) (*Cache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, err
	}

	log.Println("✅ Подключение к Redis установлено")
	return &Cache{client: client}, nil
}

func incomingKey(userID uuid.UUID) string {
	return "incoming:" + userID.String()
}

// GetIncoming возвращает закэшированную проекцию входящих запросов.
// Любая ошибка Redis считается промахом: витрина переживёт недоступный
// кэш, выполнив живой веер чтений.
func (c *Cache) GetIncoming(ctx context.Context, userID uuid.UUID) ([]models.IncomingRequest, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}

	payload, err := c.client.Get(ctx, incomingKey(userID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("Ошибка чтения кэша проекции: %v", err)
		}
		return nil, false
	}

	var requests []models.IncomingRequest
	if err := json.Unmarshal(payload, &requests); err != nil {
		log.Printf("Ошибка разбора кэша проекции: %v", err)
		return nil, false
	}
	return requests, true
}

// SetIncoming сохраняет проекцию входящих запросов
func (c *Cache) SetIncoming(ctx context.Context, userID uuid.UUID, requests []models.IncomingRequest) {
	if c == nil || c.client == nil {
		return
	}

	payload, err := json.Marshal(requests)
	if err != nil {
		log.Printf("Ошибка сериализации проекции: %v", err)
		return
	}
	if err := c.client.Set(ctx, incomingKey(userID), payload, incomingTTL).Err(); err != nil {
		log.Printf("Ошибка записи кэша проекции: %v", err)
	}
}

// InvalidateIncoming сбрасывает проекцию пользователя. Вызывается при
// создании и разрешении запроса на обмен.
func (c *Cache) InvalidateIncoming(ctx context.Context, userID uuid.UUID) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Del(ctx, incomingKey(userID)).Err(); err != nil {
		log.Printf("Ошибка инвалидации кэша проекции: %v", err)
	}
}
