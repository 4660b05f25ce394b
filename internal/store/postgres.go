package store

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/ticketops/helpdesk-service/internal/config"
	"github.com/ticketops/helpdesk-service/internal/domain"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS tickets (
    position      INT PRIMARY KEY,
    ticket_id     TEXT NOT NULL,
    title         TEXT NOT NULL,
    description   TEXT NOT NULL,
    priority      TEXT NOT NULL,
    category      TEXT NOT NULL DEFAULT '',
    reporter      TEXT NOT NULL,
    assigned_to   TEXT NOT NULL DEFAULT '',
    status        TEXT NOT NULL,
    created_at    TIMESTAMPTZ NOT NULL,
    sla_deadline  TIMESTAMPTZ NOT NULL,
    comments      JSONB NOT NULL DEFAULT '[]'
);
CREATE TABLE IF NOT EXISTS users (
    position      INT PRIMARY KEY,
    username      TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    role          TEXT NOT NULL
);`

// PostgresStore keeps both collections in Postgres. Save replaces the whole
// collection inside one transaction so readers never observe partial writes.
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPostgresStore connects, verifies the connection and ensures the schema.
func NewPostgresStore(ctx context.Context, cfg config.StoreConfig, logger *zap.Logger) (*PostgresStore, error) {
	if cfg.PostgresDSN == "" {
		return nil, errors.New("POSTGRES_DSN required for postgres store driver")
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, err
	}
	logger.Info("connected to postgres store")
	return &PostgresStore{pool: pool, logger: logger}, nil
}

// LoadTickets reads the collection in append order.
func (s *PostgresStore) LoadTickets(ctx context.Context) ([]domain.Ticket, error) {
	const query = `
        SELECT ticket_id, title, description, priority, category, reporter,
               assigned_to, status, created_at, sla_deadline, comments
        FROM tickets ORDER BY position`
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tickets []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		var comments []byte
		if err := rows.Scan(
			&ticket.ID,
			&ticket.Title,
			&ticket.Description,
			&ticket.Priority,
			&ticket.Category,
			&ticket.Reporter,
			&ticket.AssignedTo,
			&ticket.Status,
			&ticket.CreatedAt,
			&ticket.SLADeadline,
			&comments,
		); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(comments, &ticket.Comments); err != nil {
			s.logger.Warn("corrupt comment payload, treating as empty",
				zap.String("ticket_id", ticket.ID), zap.Error(err))
			ticket.Comments = nil
		}
		tickets = append(tickets, ticket)
	}
	return tickets, rows.Err()
}

// SaveTickets replaces the ticket collection transactionally.
func (s *PostgresStore) SaveTickets(ctx context.Context, tickets []domain.Ticket) error {
	return s.replaceAll(ctx, "tickets", func(tx pgx.Tx) error {
		const insert = `
            INSERT INTO tickets (position, ticket_id, title, description, priority, category,
                                 reporter, assigned_to, status, created_at, sla_deadline, comments)
            VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`
		for i, ticket := range tickets {
			comments := []byte("[]")
			if ticket.Comments != nil {
				var err error
				if comments, err = json.Marshal(ticket.Comments); err != nil {
					return err
				}
			}
			if _, err := tx.Exec(ctx, insert,
				i,
				ticket.ID,
				ticket.Title,
				ticket.Description,
				ticket.Priority,
				ticket.Category,
				ticket.Reporter,
				ticket.AssignedTo,
				ticket.Status,
				ticket.CreatedAt,
				ticket.SLADeadline,
				comments,
			); err != nil {
				return err
			}
		}
		return nil
	})
}

// LoadUsers reads the user collection in append order.
func (s *PostgresStore) LoadUsers(ctx context.Context) ([]domain.User, error) {
	const query = `SELECT username, password_hash, role FROM users ORDER BY position`
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var user domain.User
		if err := rows.Scan(&user.Username, &user.PasswordHash, &user.Role); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// SaveUsers replaces the user collection transactionally.
func (s *PostgresStore) SaveUsers(ctx context.Context, users []domain.User) error {
	return s.replaceAll(ctx, "users", func(tx pgx.Tx) error {
		const insert = `INSERT INTO users (position, username, password_hash, role) VALUES ($1,$2,$3,$4)`
		for i, user := range users {
			if _, err := tx.Exec(ctx, insert, i, user.Username, user.PasswordHash, user.Role); err != nil {
				return err
			}
		}
		return nil
	})
}

// Ping verifies connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases pool resources.
func (s *PostgresStore) Close() {
	if s != nil && s.pool != nil {
		s.pool.Close()
	}
}

func (s *PostgresStore) replaceAll(ctx context.Context, table string, insert func(pgx.Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, "DELETE FROM "+table); err != nil {
		return err
	}
	if err := insert(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
