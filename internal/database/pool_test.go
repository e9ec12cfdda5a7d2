package database

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPressure(t *testing.T) {
	tests := []struct {
		name  string
		stats sql.DBStats
		want  int
	}{
		{"idle pool", sql.DBStats{MaxOpenConnections: 20, InUse: 2}, 0},
		{"unlimited pool", sql.DBStats{InUse: 50}, 0},
		{"nearly full", sql.DBStats{MaxOpenConnections: 20, InUse: 18}, 1},
		{"short waits", sql.DBStats{MaxOpenConnections: 20, WaitCount: 3, WaitDuration: 200 * time.Millisecond}, 0},
		{"full and waiting", sql.DBStats{MaxOpenConnections: 10, InUse: 10, WaitCount: 40, WaitDuration: 3 * time.Second}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, pressure(tt.stats), tt.want)
		})
	}
}

func TestHealth(t *testing.T) {
	conn, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer conn.Close()
	db := New(conn)

	mock.ExpectPing()
	h := db.Health(context.Background())
	assert.True(t, h.Healthy)
	assert.Empty(t, h.Error)

	mock.ExpectPing().WillReturnError(errors.New("connection refused"))
	h = db.Health(context.Background())
	assert.False(t, h.Healthy)
	assert.Equal(t, "connection refused", h.Error)
	assert.NoError(t, mock.ExpectationsWereMet())
}
