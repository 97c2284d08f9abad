package db

import (
	"context"
	"fmt"

	"linkchain/internal/models"
)

// CountProfiles returns how many users have a link stored for the platform.
func (d *DB) CountProfiles(ctx context.Context, platform models.Platform) (int64, error) {
	var query string
	switch platform {
	case models.PlatformLinkedIn:
		query = `SELECT COUNT(*) FROM profiles WHERE linkedin IS NOT NULL`
	case models.PlatformInstagram:
		query = `SELECT COUNT(*) FROM profiles WHERE instagram IS NOT NULL`
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownPlatform, platform)
	}

	var n int64
	err := d.Pool.QueryRow(ctx, query).Scan(&n)
	return n, err
}

// CountActiveChains returns the number of groups with an active chain.
func (d *DB) CountActiveChains(ctx context.Context) (int64, error) {
	var n int64
	err := d.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM active_chains`).Scan(&n)
	return n, err
}
