// Package registry provides PostgreSQL-backed alert configuration lookup.
// The engine only reads alert configuration; Create exists for the seeding
// tool, alert lifecycle is otherwise managed outside this service.
package registry

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/Fredev01/water-quality-alert-engine/internal/model"
)

// ErrRegistryUnavailable marks transport or storage failures talking to the
// alert registry. Callers treat it as retryable.
var ErrRegistryUnavailable = errors.New("alert registry unavailable")

// Registry wraps a database connection and provides alert operations.
type Registry struct {
	conn *sql.DB
}

// NewRegistry creates a new registry connection using the provided DSN.
func NewRegistry(dsn string) (*Registry, error) {
	conn, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	slog.Info("Successfully connected to PostgreSQL alert registry")

	return &Registry{conn: conn}, nil
}

// NewRegistryWithConn creates a registry over an existing connection.
// Used by tests and when sharing a pool with the audit log.
func NewRegistryWithConn(conn *sql.DB) *Registry {
	return &Registry{conn: conn}
}

// Close closes the database connection.
func (r *Registry) Close() error {
	if r.conn != nil {
		return r.conn.Close()
	}
	return nil
}

// ListByMeter returns the alerts configured on a meter. An empty slice (not
// an error) means nothing is configured.
func (r *Registry) ListByMeter(ctx context.Context, meterID string) ([]model.Alert, error) {
	query := `
		SELECT alert_id, meter_id, owner_id, title, severity, parameter_bands, created_at, updated_at
		FROM alerts
		WHERE meter_id = $1
		ORDER BY created_at
	`
	rows, err := r.conn.QueryContext(ctx, query, meterID)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list alerts for meter %s: %v", ErrRegistryUnavailable, meterID, err)
	}
	defer rows.Close()

	var alerts []model.Alert
	for rows.Next() {
		var alert model.Alert
		var severity string
		var bandsJSON []byte
		if err := rows.Scan(
			&alert.ID,
			&alert.MeterID,
			&alert.OwnerID,
			&alert.Title,
			&severity,
			&bandsJSON,
			&alert.CreatedAt,
			&alert.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("%w: failed to scan alert row: %v", ErrRegistryUnavailable, err)
		}

		level, err := model.ParseSeverity(severity)
		if err != nil {
			return nil, fmt.Errorf("invalid alert %s: %w", alert.ID, err)
		}
		alert.SeverityLevel = level

		if err := json.Unmarshal(bandsJSON, &alert.ParameterBands); err != nil {
			return nil, fmt.Errorf("invalid parameter bands for alert %s: %w", alert.ID, err)
		}

		alerts = append(alerts, alert)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: failed to iterate alert rows: %v", ErrRegistryUnavailable, err)
	}

	return alerts, nil
}

// Create inserts a new alert and returns it with a generated ID.
func (r *Registry) Create(ctx context.Context, meterID, ownerID, title string, level model.SeverityLevel, bands model.ParameterBands) (*model.Alert, error) {
	if !level.Valid() {
		return nil, fmt.Errorf("unknown severity level: %q", level)
	}

	bandsJSON, err := json.Marshal(bands)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal parameter bands: %w", err)
	}

	query := `
		INSERT INTO alerts (alert_id, meter_id, owner_id, title, severity, parameter_bands, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	alert := &model.Alert{
		ID:             uuid.NewString(),
		MeterID:        meterID,
		OwnerID:        ownerID,
		Title:          title,
		SeverityLevel:  level,
		ParameterBands: bands,
	}
	err = r.conn.QueryRowContext(ctx, query,
		alert.ID, meterID, ownerID, title, string(level), bandsJSON,
	).Scan(&alert.CreatedAt, &alert.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create alert: %v", ErrRegistryUnavailable, err)
	}

	return alert, nil
}
