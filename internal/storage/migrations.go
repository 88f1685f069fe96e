package storage

import (
	"context"
	"fmt"
	"log"

	"github.com/rajivgeraev/slotswap-api/internal/db"
)

// Migration представляет одну именованную миграцию схемы
type Migration struct {
	Name string
	Up   string
}

var migrations = []Migration{
	{
		Name: "initial_schema",
		Up: `
			CREATE TABLE IF NOT EXISTS users (
				id UUID PRIMARY KEY,
				name TEXT NOT NULL,
				email TEXT NOT NULL UNIQUE,
				password_hash TEXT NOT NULL,
				created_at TIMESTAMPTZ NOT NULL,
				updated_at TIMESTAMPTZ NOT NULL
			);

			CREATE TABLE IF NOT EXISTS events (
				id UUID PRIMARY KEY,
				owner_id UUID NOT NULL,
				title TEXT NOT NULL,
				date TEXT NOT NULL,
				start_time TEXT NOT NULL,
				end_time TEXT NOT NULL,
				status TEXT NOT NULL DEFAULT 'Swappable',
				created_at TIMESTAMPTZ NOT NULL,
				updated_at TIMESTAMPTZ NOT NULL
			);

			CREATE INDEX IF NOT EXISTS idx_events_owner_date ON events (owner_id, date);
			CREATE INDEX IF NOT EXISTS idx_events_status ON events (status);

			CREATE TABLE IF NOT EXISTS swap_requests (
				id UUID PRIMARY KEY,
				sender_user_id UUID NOT NULL,
				target_user_id UUID NOT NULL,
				sender_event_id UUID NOT NULL,
				target_event_id UUID NOT NULL,
				status TEXT NOT NULL DEFAULT 'pending',
				created_at TIMESTAMPTZ NOT NULL,
				updated_at TIMESTAMPTZ NOT NULL
			);

			CREATE INDEX IF NOT EXISTS idx_swap_requests_target ON swap_requests (target_user_id, status);
			CREATE INDEX IF NOT EXISTS idx_swap_requests_sender ON swap_requests (sender_user_id, status);
		`,
	},
}

// Migrate применяет все ещё не применённые миграции по порядку
func Migrate(ctx context.Context, database *db.DB) error {
	if _, err := database.Pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS _migrations (
			id SERIAL PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			run_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`); err != nil {
		return fmt.Errorf("ошибка создания таблицы миграций: %w", err)
	}

	for _, m := range migrations {
		var count int
		if err := database.Pool.QueryRow(ctx,
			`SELECT COUNT(*) FROM _migrations WHERE name = $1`, m.Name).Scan(&count); err != nil {
			return fmt.Errorf("ошибка проверки миграции %s: %w", m.Name, err)
		}
		if count > 0 {
			continue
		}

		if _, err := database.Pool.Exec(ctx, m.Up); err != nil {
			return fmt.Errorf("ошибка применения миграции %s: %w", m.Name, err)
		}
		if _, err := database.Pool.Exec(ctx,
			`INSERT INTO _migrations (name) VALUES ($1)`, m.Name); err != nil {
			return fmt.Errorf("ошибка записи миграции %s: %w", m.Name, err)
		}
		log.Printf("✅ Миграция применена: %s", m.Name)
	}
	return nil
}
