package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rajivgeraev/slotswap-api/internal/models"
)

// MemoryStore реализует Store в памяти. Используется в тестах: каждый
// тест поднимает собственное изолированное хранилище без внешней базы.
type MemoryStore struct {
	mu     sync.Mutex
	events map[uuid.UUID]models.Event
	swaps  map[uuid.UUID]models.SwapRequest
	users  map[uuid.UUID]models.User
	inTx   bool
}

// NewMemoryStore создает пустое хранилище в памяти
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		events: make(map[uuid.UUID]models.Event),
		swaps:  make(map[uuid.UUID]models.SwapRequest),
		users:  make(map[uuid.UUID]models.User),
	}
}

func (s *MemoryStore) lock() {
	if !s.inTx {
		s.mu.Lock()
	}
}

func (s *MemoryStore) unlock() {
	if !s.inTx {
		s.mu.Unlock()
	}
}

func (s *MemoryStore) Events() EventStore      { return &memEventStore{s: s} }
func (s *MemoryStore) Swaps() SwapRequestStore { return &memSwapStore{s: s} }
func (s *MemoryStore) Users() UserStore        { return &memUserStore{s: s} }

// WithTx выполняет fn под общей блокировкой. Перед запуском снимается
// снимок всех документов; ошибка fn восстанавливает его, так что
// частично применённых мультидокументных операций не остаётся.
func (s *MemoryStore) WithTx(ctx context.Context, fn func(Store) error) error {
	if s.inTx {
		return fn(s)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapEvents := cloneMap(s.events)
	snapSwaps := cloneMap(s.swaps)
	snapUsers := cloneMap(s.users)

	txStore := &MemoryStore{
		events: s.events,
		swaps:  s.swaps,
		users:  s.users,
		inTx:   true,
	}

	if err := fn(txStore); err != nil {
		s.events = snapEvents
		s.swaps = snapSwaps
		s.users = snapUsers
		return err
	}
	return nil
}

func cloneMap[V any](src map[uuid.UUID]V) map[uuid.UUID]V {
	dst := make(map[uuid.UUID]V, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

/* ---------- События ---------- */

type memEventStore struct {
	s *MemoryStore
}

func (m *memEventStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	m.s.lock()
	defer m.s.unlock()

	e, ok := m.s.events[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &e, nil
}

func (m *memEventStore) Find(ctx context.Context, filter EventFilter) ([]models.Event, error) {
	m.s.lock()
	defer m.s.unlock()

	var events []models.Event
	for _, e := range m.s.events {
		if filter.OwnerID != nil && e.OwnerID != *filter.OwnerID {
			continue
		}
		if filter.NotOwnerID != nil && e.OwnerID == *filter.NotOwnerID {
			continue
		}
		if filter.Status != nil && e.Status != *filter.Status {
			continue
		}
		events = append(events, e)
	}
	sort.Slice(events, func(i, j int) bool {
		if events[i].Date != events[j].Date {
			return events[i].Date < events[j].Date
		}
		return events[i].StartTime < events[j].StartTime
	})
	return events, nil
}

func (m *memEventStore) Create(ctx context.Context, event *models.Event) error {
	m.s.lock()
	defer m.s.unlock()

	now := time.Now()
	event.CreatedAt = now
	event.UpdatedAt = now
	m.s.events[event.ID] = *event
	return nil
}

func (m *memEventStore) Update(ctx context.Context, event *models.Event) error {
	m.s.lock()
	defer m.s.unlock()

	stored, ok := m.s.events[event.ID]
	if !ok {
		return ErrNotFound
	}
	event.CreatedAt = stored.CreatedAt
	event.UpdatedAt = time.Now()
	m.s.events[event.ID] = *event
	return nil
}

func (m *memEventStore) Delete(ctx context.Context, id uuid.UUID) error {
	m.s.lock()
	defer m.s.unlock()

	if _, ok := m.s.events[id]; !ok {
		return ErrNotFound
	}
	delete(m.s.events, id)
	return nil
}

func (m *memEventStore) UpdateStatusIf(ctx context.Context, id uuid.UUID, from, to models.EventStatus) (bool, error) {
	m.s.lock()
	defer m.s.unlock()

	e, ok := m.s.events[id]
	if !ok || e.Status != from {
		return false, nil
	}
	e.Status = to
	e.UpdatedAt = time.Now()
	m.s.events[id] = e
	return true, nil
}

/* ---------- Запросы на обмен ---------- */

type memSwapStore struct {
	s *MemoryStore
}

func (m *memSwapStore) FindByID(ctx context.Context, id uuid.UUID) (*models.SwapRequest, error) {
	m.s.lock()
	defer m.s.unlock()

	r, ok := m.s.swaps[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &r, nil
}

func (m *memSwapStore) FindPendingByTarget(ctx context.Context, targetUserID uuid.UUID) ([]models.SwapRequest, error) {
	m.s.lock()
	defer m.s.unlock()

	var requests []models.SwapRequest
	for _, r := range m.s.swaps {
		if r.TargetUserID == targetUserID && r.Status == models.SwapStatusPending {
			requests = append(requests, r)
		}
	}
	sort.Slice(requests, func(i, j int) bool {
		return requests[i].CreatedAt.After(requests[j].CreatedAt)
	})
	return requests, nil
}

func (m *memSwapStore) FindPendingByEvent(ctx context.Context, eventID uuid.UUID) ([]models.SwapRequest, error) {
	m.s.lock()
	defer m.s.unlock()

	var requests []models.SwapRequest
	for _, r := range m.s.swaps {
		if (r.SenderEventID == eventID || r.TargetEventID == eventID) && r.Status == models.SwapStatusPending {
			requests = append(requests, r)
		}
	}
	return requests, nil
}

func (m *memSwapStore) Create(ctx context.Context, req *models.SwapRequest) error {
	m.s.lock()
	defer m.s.unlock()

	now := time.Now()
	req.CreatedAt = now
	req.UpdatedAt = now
	m.s.swaps[req.ID] = *req
	return nil
}

func (m *memSwapStore) ResolveIf(ctx context.Context, id uuid.UUID, to models.SwapStatus) (bool, error) {
	m.s.lock()
	defer m.s.unlock()

	r, ok := m.s.swaps[id]
	if !ok || r.Status != models.SwapStatusPending {
		return false, nil
	}
	r.Status = to
	r.UpdatedAt = time.Now()
	m.s.swaps[id] = r
	return true, nil
}

/* ---------- Пользователи ---------- */

type memUserStore struct {
	s *MemoryStore
}

func (m *memUserStore) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	m.s.lock()
	defer m.s.unlock()

	u, ok := m.s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (m *memUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	m.s.lock()
	defer m.s.unlock()

	for _, u := range m.s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memUserStore) Create(ctx context.Context, user *models.User) error {
	m.s.lock()
	defer m.s.unlock()

	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	m.s.users[user.ID] = *user
	return nil
}
