package database

import (
	"context"
	"fmt"
	"time"

	"crypto-alerts-bot/internal/types"

	log "github.com/sirupsen/logrus"
)

const alertColumns = `id, chat_id, symbol, target, direction, repeat, triggered, created_at`

// InsertAlert saves a new alert and fills in its assigned id.
func (db *DB) InsertAlert(ctx context.Context, alert *types.Alert) error {
	query := `
	INSERT INTO alerts (chat_id, symbol, target, direction, repeat, triggered, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?);`

	if alert.CreatedAt.IsZero() {
		alert.CreatedAt = time.Now().UTC()
	}

	res, err := db.conn.ExecContext(ctx, query,
		alert.ChatID, string(alert.Symbol), alert.Target, string(alert.Direction),
		alert.Repeat, alert.Triggered, alert.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert alert: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read alert id: %w", err)
	}
	alert.ID = id

	log.Debugf("alert inserted: id=%d chat=%d %s %s %f repeat=%t",
		alert.ID, alert.ChatID, alert.Symbol, alert.Direction, alert.Target, alert.Repeat)
	return nil
}

// ActiveAlerts fetches every alert that has not triggered yet.
func (db *DB) ActiveAlerts(ctx context.Context) ([]types.Alert, error) {
	query := `SELECT ` + alertColumns + ` FROM alerts WHERE triggered = 0;`
	return db.queryAlerts(ctx, query)
}

// ActiveAlertsByChat fetches all non-triggered alerts owned by a chat.
func (db *DB) ActiveAlertsByChat(ctx context.Context, chatID int64) ([]types.Alert, error) {
	query := `SELECT ` + alertColumns + ` FROM alerts WHERE triggered = 0 AND chat_id = ?;`
	return db.queryAlerts(ctx, query, chatID)
}

func (db *DB) queryAlerts(ctx context.Context, query string, args ...interface{}) ([]types.Alert, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query alerts: %w", err)
	}
	defer rows.Close()

	var alerts []types.Alert
	for rows.Next() {
		var alert types.Alert
		if err := rows.Scan(&alert.ID, &alert.ChatID, &alert.Symbol, &alert.Target,
			&alert.Direction, &alert.Repeat, &alert.Triggered, &alert.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		alerts = append(alerts, alert)
	}

	return alerts, rows.Err()
}

// MarkTriggered flips the triggered flag of a one-shot alert. The row
// stays around so the crossing remains visible after the fact.
func (db *DB) MarkTriggered(ctx context.Context, alertID int64) error {
	query := `UPDATE alerts SET triggered = 1 WHERE id = ?;`

	if _, err := db.conn.ExecContext(ctx, query, alertID); err != nil {
		return fmt.Errorf("failed to mark alert %d triggered: %w", alertID, err)
	}
	return nil
}

// DeleteAlert removes an alert by id and reports whether it existed.
func (db *DB) DeleteAlert(ctx context.Context, alertID int64) (bool, error) {
	query := `DELETE FROM alerts WHERE id = ?;`

	res, err := db.conn.ExecContext(ctx, query, alertID)
	if err != nil {
		return false, fmt.Errorf("failed to delete alert %d: %w", alertID, err)
	}

	deleted, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return deleted > 0, nil
}

// DeleteActiveAlertsBySymbol removes all non-triggered alerts a chat
// holds for one symbol and returns how many were removed.
func (db *DB) DeleteActiveAlertsBySymbol(ctx context.Context, chatID int64, symbol types.Symbol) (int64, error) {
	query := `DELETE FROM alerts WHERE chat_id = ? AND symbol = ? AND triggered = 0;`

	res, err := db.conn.ExecContext(ctx, query, chatID, string(symbol))
	if err != nil {
		return 0, fmt.Errorf("failed to delete alerts for %s: %w", symbol, err)
	}
	return res.RowsAffected()
}
