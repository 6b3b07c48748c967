package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/andalize/proptic/common/config"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup_AppliesPoolLimits(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()
	mock.ExpectPing()

	err = setup(context.Background(), db, &config.DatabaseConfig{
		MaxConns:        12,
		MaxIdle:         3,
		ConnMaxLifetime: time.Minute,
	})
	require.NoError(t, err)
	assert.Equal(t, 12, db.Stats().MaxOpenConnections)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSetup_ClosesOnPingFailure(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	mock.ExpectPing().WillReturnError(errors.New("connection refused"))
	mock.ExpectClose()

	err = setup(context.Background(), db, &config.DatabaseConfig{ConnectTimeout: time.Second})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to ping database")
	require.NoError(t, mock.ExpectationsWereMet())
}
