package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"linkchain/internal/models"
)

// GetAwaiting returns the user's pending input expectation. Expired rows read
// as AwaitingNone even before the janitor removes them.
func (d *DB) GetAwaiting(ctx context.Context, userID string) (models.Awaiting, error) {
	query := `
		SELECT awaiting FROM conversation_states
		WHERE user_id = $1 AND (expires_at IS NULL OR expires_at > NOW())
	`

	var name string
	err := d.Pool.QueryRow(ctx, query, userID).Scan(&name)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.AwaitingNone, nil
	}
	if err != nil {
		return models.AwaitingNone, err
	}

	state, ok := models.ParseAwaiting(name)
	if !ok {
		return models.AwaitingNone, fmt.Errorf("%w: %q", ErrInvalidState, name)
	}
	return state, nil
}

// SetAwaiting stores the user's pending expectation; AwaitingNone deletes it.
func (d *DB) SetAwaiting(ctx context.Context, userID string, state models.Awaiting, ttl time.Duration) error {
	if state == models.AwaitingNone {
		_, err := d.Pool.Exec(ctx, `DELETE FROM conversation_states WHERE user_id = $1`, userID)
		return err
	}

	var expiresAt *time.Time
	if ttl != 0 {
		t := time.Now().Add(ttl)
		expiresAt = &t
	}

	query := `
		INSERT INTO conversation_states (user_id, awaiting, expires_at) VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE
		SET awaiting = EXCLUDED.awaiting, expires_at = EXCLUDED.expires_at, updated_at = NOW()
	`
	_, err := d.Pool.Exec(ctx, query, userID, state.String(), expiresAt)
	return err
}

// DeleteExpiredStates removes conversation states past their expiry and
// returns how many were deleted.
func (d *DB) DeleteExpiredStates(ctx context.Context) (int64, error) {
	result, err := d.Pool.Exec(ctx, `DELETE FROM conversation_states WHERE expires_at IS NOT NULL AND expires_at <= NOW()`)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
