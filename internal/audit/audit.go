// Package audit provides the PostgreSQL-backed notification history log.
// One row is appended per delivery attempt that passes the debounce gate;
// the same rows back the owner's notification inbox.
package audit

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/Fredev01/water-quality-alert-engine/internal/model"
)

// ErrStoreUnavailable marks transport or storage failures talking to the
// audit log. Callers treat it as retryable.
var ErrStoreUnavailable = errors.New("audit log unavailable")

// Log wraps a database connection and provides notification history
// operations.
type Log struct {
	conn *sql.DB
}

// NewLog creates a new audit log connection using the provided DSN.
func NewLog(dsn string) (*Log, error) {
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

	slog.Info("Successfully connected to PostgreSQL audit log")

	return &Log{conn: conn}, nil
}

// NewLogWithConn creates an audit log over an existing connection.
// Used by tests and when sharing a pool with the registry.
func NewLogWithConn(conn *sql.DB) *Log {
	return &Log{conn: conn}
}

// Close closes the database connection.
func (l *Log) Close() error {
	if l.conn != nil {
		return l.conn.Close()
	}
	return nil
}

// Create appends a notification record and returns its generated ID.
// The record's ID field is populated as a side effect.
func (l *Log) Create(ctx context.Context, record *model.NotificationRecord) (string, error) {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}

	query := `
		INSERT INTO notifications (notification_id, user_id, title, body, read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := l.conn.ExecContext(ctx, query,
		record.ID, record.UserID, record.Title, record.Body, record.Read, record.Timestamp,
	)
	if err != nil {
		return "", fmt.Errorf("%w: failed to insert notification record: %v", ErrStoreUnavailable, err)
	}

	slog.Debug("Audit record created",
		"notification_id", record.ID,
		"user_id", record.UserID,
	)

	return record.ID, nil
}

// ListByUser returns the user's notification history, newest first.
func (l *Log) ListByUser(ctx context.Context, userID string, limit int) ([]model.NotificationRecord, error) {
	query := `
		SELECT notification_id, user_id, title, body, read, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := l.conn.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list notifications for user %s: %v", ErrStoreUnavailable, userID, err)
	}
	defer rows.Close()

	var records []model.NotificationRecord
	for rows.Next() {
		var rec model.NotificationRecord
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.Title, &rec.Body, &rec.Read, &rec.Timestamp); err != nil {
			return nil, fmt.Errorf("%w: failed to scan notification row: %v", ErrStoreUnavailable, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: failed to iterate notification rows: %v", ErrStoreUnavailable, err)
	}

	return records, nil
}

// MarkRead flips a notification's inbox read flag.
func (l *Log) MarkRead(ctx context.Context, notificationID string) error {
	query := `
		UPDATE notifications
		SET read = TRUE
		WHERE notification_id = $1
	`
	result, err := l.conn.ExecContext(ctx, query, notificationID)
	if err != nil {
		return fmt.Errorf("%w: failed to mark notification read: %v", ErrStoreUnavailable, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("notification not found: %s", notificationID)
	}

	return nil
}
