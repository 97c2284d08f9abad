package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// GetActiveChain returns the group's active chain message id, or "".
func (d *DB) GetActiveChain(ctx context.Context, groupID string) (string, error) {
	query := `SELECT message_id FROM active_chains WHERE group_id = $1`

	var messageID string
	err := d.Pool.QueryRow(ctx, query, groupID).Scan(&messageID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	return messageID, err
}

// SwapActiveChain replaces the group's active chain and returns the previous
// message id. A transaction-scoped advisory lock on the group serializes
// concurrent swaps, including the first one when no row exists yet.
func (d *DB) SwapActiveChain(ctx context.Context, groupID, messageID string) (string, error) {
	tx, err := d.Pool.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to begin swap: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext('active_chain:' || $1))`, groupID); err != nil {
		return "", fmt.Errorf("failed to lock group: %w", err)
	}

	var previous string
	err = tx.QueryRow(ctx, `SELECT message_id FROM active_chains WHERE group_id = $1`, groupID).Scan(&previous)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return "", err
	}

	query := `
		INSERT INTO active_chains (group_id, message_id) VALUES ($1, $2)
		ON CONFLICT (group_id) DO UPDATE SET message_id = EXCLUDED.message_id, updated_at = NOW()
	`
	if _, err := tx.Exec(ctx, query, groupID, messageID); err != nil {
		return "", err
	}

	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("failed to commit swap: %w", err)
	}
	return previous, nil
}
