package health

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func TestChecker_Check(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{DisableAutomaticPing: true})
	require.NoError(t, err)

	t.Run("healthy", func(t *testing.T) {
		mock.ExpectPing()

		status := (&Checker{DB: gormDB}).Check(context.Background())

		assert.Equal(t, "healthy", status.Status)
		require.Len(t, status.Services, 1)
		assert.Equal(t, "up", status.Services[0].Status)
	})

	t.Run("database down", func(t *testing.T) {
		mock.ExpectPing().WillReturnError(errors.New("connection refused"))

		status := (&Checker{DB: gormDB}).Check(context.Background())

		assert.Equal(t, "degraded", status.Status)
		assert.Equal(t, "down", status.Services[0].Status)
		assert.Equal(t, "connection refused", status.Services[0].Message)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
