package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"linkchain/internal/models"
)

// GetProfile retrieves a user's stored links.
func (d *DB) GetProfile(ctx context.Context, userID string) (models.Profile, bool, error) {
	query := `
		SELECT user_id, display_name, COALESCE(linkedin, ''), COALESCE(instagram, '')
		FROM profiles WHERE user_id = $1
	`

	var p models.Profile
	err := d.Pool.QueryRow(ctx, query, userID).Scan(
		&p.UserID,
		&p.DisplayName,
		&p.LinkedIn,
		&p.Instagram,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Profile{}, false, nil
	}
	if err != nil {
		return models.Profile{}, false, err
	}

	return p, true, nil
}

// SetProfileField stores or, for an empty value, clears one platform link.
func (d *DB) SetProfileField(ctx context.Context, userID string, platform models.Platform, value string) error {
	var query string
	switch platform {
	case models.PlatformLinkedIn:
		query = `
			INSERT INTO profiles (user_id, linkedin) VALUES ($1, NULLIF($2, ''))
			ON CONFLICT (user_id) DO UPDATE SET linkedin = EXCLUDED.linkedin, updated_at = NOW()
		`
	case models.PlatformInstagram:
		query = `
			INSERT INTO profiles (user_id, instagram) VALUES ($1, NULLIF($2, ''))
			ON CONFLICT (user_id) DO UPDATE SET instagram = EXCLUDED.instagram, updated_at = NOW()
		`
	default:
		return fmt.Errorf("%w: %q", ErrUnknownPlatform, platform)
	}

	_, err := d.Pool.Exec(ctx, query, userID, value)
	return err
}

// SetDisplayName records the user's current display name.
func (d *DB) SetDisplayName(ctx context.Context, userID, name string) error {
	query := `
		INSERT INTO profiles (user_id, display_name) VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET display_name = EXCLUDED.display_name, updated_at = NOW()
		WHERE profiles.display_name IS DISTINCT FROM EXCLUDED.display_name
	`
	_, err := d.Pool.Exec(ctx, query, userID, name)
	return err
}
