package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hypernova-labs/einvoice-service/internal/config"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

// DB representa la conexión a la base de datos
type DB struct {
	*sql.DB
}

// schema crea la tabla de auditoría de envíos si no existe
const schema = `
CREATE TABLE IF NOT EXISTS einvoice_submissions (
	id             UUID PRIMARY KEY,
	document_id    TEXT NOT NULL UNIQUE,
	internal_id    TEXT NOT NULL DEFAULT '',
	invoice_number TEXT NOT NULL,
	status         TEXT NOT NULL,
	cancel_reason  TEXT,
	total_amount   NUMERIC(18, 2) NOT NULL DEFAULT 0,
	raw_response   JSONB,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_einvoice_submissions_invoice_number
	ON einvoice_submissions (invoice_number);
`

// Connect establece la conexión a PostgreSQL
func Connect(ctx context.Context, cfg *config.Config) (*DB, error) {
	db, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(10 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("error pinging database: %w", err)
	}

	return &DB{db}, nil
}

// EnsureSchema crea las tablas que usa el servicio
func (db *DB) EnsureSchema(ctx context.Context) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("error creating einvoice_submissions schema: %w", err)
	}
	return nil
}

// Close cierra la conexión a la base de datos
func (db *DB) Close() error {
	return db.DB.Close()
}

// HealthCheck verifica la salud de la base de datos
func (db *DB) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, "SELECT 1"); err != nil {
		return fmt.Errorf("database query test failed: %w", err)
	}
	return nil
}

// LogStats registra las estadísticas del pool de conexiones
func (db *DB) LogStats(logger *logrus.Logger) {
	stats := db.Stats()
	logger.WithFields(logrus.Fields{
		"max_open_connections": stats.MaxOpenConnections,
		"open_connections":     stats.OpenConnections,
		"in_use":               stats.InUse,
		"idle":                 stats.Idle,
		"wait_count":           stats.WaitCount,
		"wait_duration":        stats.WaitDuration,
	}).Info("Database pool statistics")
}
