package database

import (
	"context"
	"fmt"
)

// InsertSubscriber registers a chat for price broadcasts. Inserting an
// already known chat is a no-op.
func (db *DB) InsertSubscriber(ctx context.Context, chatID int64) error {
	query := `INSERT OR IGNORE INTO subscribers (chat_id) VALUES (?);`

	if _, err := db.conn.ExecContext(ctx, query, chatID); err != nil {
		return fmt.Errorf("failed to insert subscriber %d: %w", chatID, err)
	}
	return nil
}

// FindSubscriber reports whether the chat is already registered.
func (db *DB) FindSubscriber(ctx context.Context, chatID int64) (bool, error) {
	query := `SELECT COUNT(1) FROM subscribers WHERE chat_id = ?;`

	var count int
	if err := db.conn.QueryRowContext(ctx, query, chatID).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to look up subscriber %d: %w", chatID, err)
	}
	return count > 0, nil
}

// AllSubscriberChats returns every registered chat id.
func (db *DB) AllSubscriberChats(ctx context.Context) ([]int64, error) {
	query := `SELECT chat_id FROM subscribers;`

	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query subscribers: %w", err)
	}
	defer rows.Close()

	var chatIDs []int64
	for rows.Next() {
		var chatID int64
		if err := rows.Scan(&chatID); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		chatIDs = append(chatIDs, chatID)
	}

	return chatIDs, rows.Err()
}
