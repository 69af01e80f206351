package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Vousmeveyoz/discord-jixabot/types"
)

var (
	licenseCols     = getCols(types.License{})
	licenseColsStr  = strings.Join(licenseCols, ", ")
	customerCols    = getCols(types.Customer{})
	customerColsStr = strings.Join(customerCols, ", ")
)

// Migrate creates the two tables if they do not exist yet.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS licenses (
	key TEXT PRIMARY KEY,
	roblox_id TEXT NOT NULL,
	discord_id TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	last_used TIMESTAMPTZ,
	tutorial_url TEXT,
	webhook_user_key TEXT,
	webhook_api_key TEXT,
	webhook_url TEXT
)`)

	if err != nil {
		return fmt.Errorf("migrate licenses: %w", err)
	}

	_, err = pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS customers (
	user_key TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	channel_id TEXT NOT NULL,
	koin_rate BIGINT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
)`)

	if err != nil {
		return fmt.Errorf("migrate customers: %w", err)
	}

	return nil
}

type PgLicenses struct {
	Pool *pgxpool.Pool
}

func NewLicenses(pool *pgxpool.Pool) *PgLicenses {
	return &PgLicenses{Pool: pool}
}

func (s *PgLicenses) Append(ctx context.Context, l types.License) error {
	_, err := s.Pool.Exec(
		ctx,
		"INSERT INTO licenses ("+licenseColsStr+") VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)",
		l.Key, l.RobloxID, l.DiscordID, l.CreatedAt, l.LastUsed, l.TutorialURL, l.WebhookUserKey, l.WebhookAPIKey, l.WebhookURL,
	)

	return err
}

func (s *PgLicenses) FindByKey(ctx context.Context, key string) (*types.License, error) {
	row, err := s.Pool.Query(ctx, "SELECT "+licenseColsStr+" FROM licenses WHERE key = $1", key)

	if err != nil {
		return nil, err
	}

	l, err := pgx.CollectOneRow(row, pgx.RowToStructByName[types.License])

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	return &l, nil
}

func (s *PgLicenses) TouchLastUsed(ctx context.Context, key string, t time.Time) error {
	_, err := s.Pool.Exec(ctx, "UPDATE licenses SET last_used = $2 WHERE key = $1", key, t)
	return err
}

type PgCustomers struct {
	Pool *pgxpool.Pool
}

func NewCustomers(pool *pgxpool.Pool) *PgCustomers {
	return &PgCustomers{Pool: pool}
}

func (s *PgCustomers) Upsert(ctx context.Context, c types.Customer) error {
	tx, err := s.Pool.Begin(ctx)

	if err != nil {
		return err
	}

	defer tx.Rollback(ctx)

	// One customer per channel: re-registering a channel under a new user
	// key releases the old binding.
	_, err = tx.Exec(ctx, "DELETE FROM customers WHERE channel_id = $1 AND user_key <> $2", c.ChannelID, c.UserKey)

	if err != nil {
		return err
	}

	_, err = tx.Exec(
		ctx,
		`INSERT INTO customers (user_key, name, channel_id, koin_rate, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $5)
		 ON CONFLICT (user_key) DO UPDATE
		 SET name = EXCLUDED.name, channel_id = EXCLUDED.channel_id, koin_rate = EXCLUDED.koin_rate, updated_at = EXCLUDED.updated_at`,
		c.UserKey, c.Name, c.ChannelID, c.KoinRate, c.UpdatedAt,
	)

	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (s *PgCustomers) FindByChannel(ctx context.Context, channelID string) (*types.Customer, error) {
	row, err := s.Pool.Query(ctx, "SELECT "+customerColsStr+" FROM customers WHERE channel_id = $1", channelID)

	if err != nil {
		return nil, err
	}

	c, err := pgx.CollectOneRow(row, pgx.RowToStructByName[types.Customer])

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	return &c, nil
}
