package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPgUserDirectory_GetDisplayName(t *testing.T) {
	mockDB, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockDB.Close()

	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)

	directory := NewPgUserDirectory(mockDB, logger)

	t.Run("found", func(t *testing.T) {
		userID := uuid.New()
		mockDB.ExpectQuery("SELECT nickname FROM users").
			WithArgs(userID).
			WillReturnRows(pgxmock.NewRows([]string{"nickname"}).AddRow("지수"))

		name, err := directory.GetDisplayName(context.Background(), userID)
		require.NoError(t, err)
		assert.Equal(t, "지수", name)
	})

	t.Run("not found", func(t *testing.T) {
		userID := uuid.New()
		mockDB.ExpectQuery("SELECT nickname FROM users").
			WithArgs(userID).
			WillReturnError(pgx.ErrNoRows)

		_, err := directory.GetDisplayName(context.Background(), userID)
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	require.NoError(t, mockDB.ExpectationsWereMet())
}
