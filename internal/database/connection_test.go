package database

import (
	"database/sql"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDB_LogStats(t *testing.T) {
	// sql.Open no abre conexiones hasta el primer uso
	sqlDB, err := sql.Open("postgres", "host=localhost port=5432 user=einvoice dbname=einvoice sslmode=disable")
	require.NoError(t, err)
	defer sqlDB.Close()
	sqlDB.SetMaxOpenConns(7)

	logger, hook := test.NewNullLogger()
	db := &DB{DB: sqlDB}

	db.LogStats(logger)

	require.Len(t, hook.Entries, 1)
	entry := hook.LastEntry()
	assert.Equal(t, logrus.InfoLevel, entry.Level)
	assert.Equal(t, "Database pool statistics", entry.Message)
	assert.Equal(t, 7, entry.Data["max_open_connections"])
	assert.Equal(t, 0, entry.Data["open_connections"])
	assert.Equal(t, 0, entry.Data["in_use"])
}
