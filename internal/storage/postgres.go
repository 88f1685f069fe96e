package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/rajivgeraev/slotswap-api/internal/db"
	"github.com/rajivgeraev/slotswap-api/internal/models"
)

// querier покрывает общую часть pgxpool.Pool и pgx.Tx, чтобы один и тот
// же код хранилища работал и в транзакции, и вне её
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore реализует Store поверх PostgreSQL
type PostgresStore struct {
	db *db.DB
	q  querier
	tx pgx.Tx // не nil, если экземпляр работает внутри транзакции
}

// NewPostgresStore создает хранилище поверх переданного пула соединений
func NewPostgresStore(database *db.DB) *PostgresStore {
	return &PostgresStore{db: database, q: database.Pool}
}

func (s *PostgresStore) Events() EventStore      { return &pgEventStore{q: s.q} }
func (s *PostgresStore) Swaps() SwapRequestStore { return &pgSwapStore{q: s.q} }
func (s *PostgresStore) Users() UserStore        { return &pgUserStore{q: s.q} }

// WithTx выполняет fn внутри одной транзакции. Ошибка fn откатывает все
// изменения, поэтому мультидокументные операции движка обменов либо
// применяются целиком, либо не применяются вовсе.
func (s *PostgresStore) WithTx(ctx context.Context, fn func(Store) error) error {
	if s.tx != nil {
		// Уже в транзакции — вложенную не открываем
		return fn(s)
	}

	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	txStore := &PostgresStore{db: s.db, q: tx, tx: tx}
	if err := fn(txStore); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("ошибка фиксации транзакции: %w", err)
	}
	return nil
}

/* ---------- События ---------- */

type pgEventStore struct {
	q querier
}

const eventColumns = `id, owner_id, title, date, start_time, end_time, status, created_at, updated_at`

func scanEvent(row pgx.Row) (*models.Event, error) {
	var e models.Event
	err := row.Scan(&e.ID, &e.OwnerID, &e.Title, &e.Date, &e.StartTime, &e.EndTime, &e.Status, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка чтения события: %w", err)
	}
	return &e, nil
}

func (s *pgEventStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	row := s.q.QueryRow(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id)
	return scanEvent(row)
}

func (s *pgEventStore) Find(ctx context.Context, filter EventFilter) ([]models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE 1=1`
	var args []any

	if filter.OwnerID != nil {
		args = append(args, *filter.OwnerID)
		query += fmt.Sprintf(" AND owner_id = $%d", len(args))
	}
	if filter.NotOwnerID != nil {
		args = append(args, *filter.NotOwnerID)
		query += fmt.Sprintf(" AND owner_id <> $%d", len(args))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	query += " ORDER BY date, start_time"

	rows, err := s.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса событий: %w", err)
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		var e models.Event
		if err := rows.Scan(&e.ID, &e.OwnerID, &e.Title, &e.Date, &e.StartTime, &e.EndTime, &e.Status, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("ошибка сканирования события: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (s *pgEventStore) Create(ctx context.Context, event *models.Event) error {
	now := time.Now()
	event.CreatedAt = now
	event.UpdatedAt = now

	_, err := s.q.Exec(ctx, `
		INSERT INTO events (id, owner_id, title, date, start_time, end_time, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, event.ID, event.OwnerID, event.Title, event.Date, event.StartTime, event.EndTime, event.Status, event.CreatedAt, event.UpdatedAt)
	if err != nil {
		return fmt.Errorf("ошибка вставки события: %w", err)
	}
	return nil
}

func (s *pgEventStore) Update(ctx context.Context, event *models.Event) error {
	tag, err := s.q.Exec(ctx, `
		UPDATE events
		SET owner_id = $1, title = $2, date = $3, start_time = $4, end_time = $5, status = $6, updated_at = NOW()
		WHERE id = $7
	`, event.OwnerID, event.Title, event.Date, event.StartTime, event.EndTime, event.Status, event.ID)
	if err != nil {
		return fmt.Errorf("ошибка обновления события: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *pgEventStore) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.q.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("ошибка удаления события: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *pgEventStore) UpdateStatusIf(ctx context.Context, id uuid.UUID, from, to models.EventStatus) (bool, error) {
	// Условное обновление закрывает гонку двух параллельных предложений
	// обмена на одно и то же событие
	tag, err := s.q.Exec(ctx, `
		UPDATE events
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3
	`, to, id, from)
	if err != nil {
		return false, fmt.Errorf("ошибка условного обновления статуса: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

/* ---------- Запросы на обмен ---------- */

type pgSwapStore struct {
	q querier
}

const swapColumns = `id, sender_user_id, target_user_id, sender_event_id, target_event_id, status, created_at, updated_at`

func scanSwapRows(rows pgx.Rows) ([]models.SwapRequest, error) {
	defer rows.Close()

	var requests []models.SwapRequest
	for rows.Next() {
		var r models.SwapRequest
		if err := rows.Scan(&r.ID, &r.SenderUserID, &r.TargetUserID, &r.SenderEventID, &r.TargetEventID, &r.Status, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("ошибка сканирования запроса на обмен: %w", err)
		}
		requests = append(requests, r)
	}
	return requests, rows.Err()
}

func (s *pgSwapStore) FindByID(ctx context.Context, id uuid.UUID) (*models.SwapRequest, error) {
	var r models.SwapRequest
	err := s.q.QueryRow(ctx, `SELECT `+swapColumns+` FROM swap_requests WHERE id = $1`, id).
		Scan(&r.ID, &r.SenderUserID, &r.TargetUserID, &r.SenderEventID, &r.TargetEventID, &r.Status, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка чтения запроса на обмен: %w", err)
	}
	return &r, nil
}

func (s *pgSwapStore) FindPendingByTarget(ctx context.Context, targetUserID uuid.UUID) ([]models.SwapRequest, error) {
	rows, err := s.q.Query(ctx, `
		SELECT `+swapColumns+`
		FROM swap_requests
		WHERE target_user_id = $1 AND status = $2
		ORDER BY created_at DESC
	`, targetUserID, models.SwapStatusPending)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса входящих обменов: %w", err)
	}
	return scanSwapRows(rows)
}

func (s *pgSwapStore) FindPendingByEvent(ctx context.Context, eventID uuid.UUID) ([]models.SwapRequest, error) {
	rows, err := s.q.Query(ctx, `
		SELECT `+swapColumns+`
		FROM swap_requests
		WHERE (sender_event_id = $1 OR target_event_id = $1) AND status = $2
	`, eventID, models.SwapStatusPending)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса обменов по событию: %w", err)
	}
	return scanSwapRows(rows)
}

func (s *pgSwapStore) Create(ctx context.Context, req *models.SwapRequest) error {
	now := time.Now()
	req.CreatedAt = now
	req.UpdatedAt = now

	_, err := s.q.Exec(ctx, `
		INSERT INTO swap_requests (id, sender_user_id, target_user_id, sender_event_id, target_event_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, req.ID, req.SenderUserID, req.TargetUserID, req.SenderEventID, req.TargetEventID, req.Status, req.CreatedAt, req.UpdatedAt)
	if err != nil {
		return fmt.Errorf("ошибка вставки запроса на обмен: %w", err)
	}
	return nil
}

func (s *pgSwapStore) ResolveIf(ctx context.Context, id uuid.UUID, to models.SwapStatus) (bool, error) {
	// Переход возможен ровно один раз: повторный resolve не найдёт
	// строку в статусе pending
	tag, err := s.q.Exec(ctx, `
		UPDATE swap_requests
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3
	`, to, id, models.SwapStatusPending)
	if err != nil {
		return false, fmt.Errorf("ошибка разрешения запроса на обмен: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

/* ---------- Пользователи ---------- */

type pgUserStore struct {
	q querier
}

const userColumns = `id, name, email, password_hash, created_at, updated_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка чтения пользователя: %w", err)
	}
	return &u, nil
}

func (s *pgUserStore) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return scanUser(s.q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (s *pgUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return scanUser(s.q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

func (s *pgUserStore) Create(ctx context.Context, user *models.User) error {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := s.q.Exec(ctx, `
		INSERT INTO users (id, name, email, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, user.ID, user.Name, user.Email, user.PasswordHash, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("ошибка вставки пользователя: %w", err)
	}
	return nil
}
