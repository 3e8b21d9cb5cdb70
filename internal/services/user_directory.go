package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"
)

// DatabaseQuerier is the subset of pgxpool.Pool used by the pgx-backed
// services; pgxmock satisfies it in tests.
type DatabaseQuerier interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

var ErrUserNotFound = errors.New("user not found")

// PgUserDirectory resolves display names from the users table.
type PgUserDirectory struct {
	db     DatabaseQuerier
	logger *logrus.Logger
}

func NewPgUserDirectory(db DatabaseQuerier, logger *logrus.Logger) *PgUserDirectory {
	return &PgUserDirectory{
		db:     db,
		logger: logger,
	}
}

func (d *PgUserDirectory) GetDisplayName(ctx context.Context, userID uuid.UUID) (string, error) {
	var nickname string
	err := d.db.QueryRow(ctx, `SELECT nickname FROM users WHERE id = $1`, userID).Scan(&nickname)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrUserNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to load user %s: %w", userID, err)
	}
	return nickname, nil
}
