package db

import (
	"context"

	"linkchain/internal/models"
)

// GetMembers returns the group's member ids in join order.
func (d *DB) GetMembers(ctx context.Context, groupID string) ([]string, error) {
	query := `SELECT user_id FROM group_members WHERE group_id = $1 ORDER BY ordinal ASC`

	rows, err := d.Pool.Query(ctx, query, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []string
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, err
		}
		members = append(members, userID)
	}

	return members, rows.Err()
}

// AddMember adds a user to a group. Existing members keep their position.
func (d *DB) AddMember(ctx context.Context, groupID, userID string) error {
	query := `
		INSERT INTO group_members (group_id, user_id) VALUES ($1, $2)
		ON CONFLICT (group_id, user_id) DO NOTHING
	`
	_, err := d.Pool.Exec(ctx, query, groupID, userID)
	return err
}

// RemoveMember removes a user from a group.
func (d *DB) RemoveMember(ctx context.Context, groupID, userID string) error {
	query := `DELETE FROM group_members WHERE group_id = $1 AND user_id = $2`
	_, err := d.Pool.Exec(ctx, query, groupID, userID)
	return err
}

// GetUserGroups returns the groups the user is a member of.
func (d *DB) GetUserGroups(ctx context.Context, userID string) ([]string, error) {
	query := `SELECT group_id FROM group_members WHERE user_id = $1 ORDER BY group_id`

	rows, err := d.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []string
	for rows.Next() {
		var groupID string
		if err := rows.Scan(&groupID); err != nil {
			return nil, err
		}
		groups = append(groups, groupID)
	}

	return groups, rows.Err()
}

// GetContribution returns the user's contribution flags for a group.
// A missing record reads as no contributions.
func (d *DB) GetContribution(ctx context.Context, groupID, userID string) (models.Contribution, error) {
	query := `
		SELECT
			COALESCE(bool_or(linkedin), FALSE),
			COALESCE(bool_or(instagram), FALSE)
		FROM contributions WHERE group_id = $1 AND user_id = $2
	`

	var c models.Contribution
	if err := d.Pool.QueryRow(ctx, query, groupID, userID).Scan(&c.LinkedIn, &c.Instagram); err != nil {
		return models.Contribution{}, err
	}
	return c, nil
}

// SetContribution overwrites the user's contribution flags for a group.
func (d *DB) SetContribution(ctx context.Context, groupID, userID string, flags models.Contribution) error {
	query := `
		INSERT INTO contributions (group_id, user_id, linkedin, instagram)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (group_id, user_id) DO UPDATE
		SET linkedin = EXCLUDED.linkedin, instagram = EXCLUDED.instagram, updated_at = NOW()
	`
	_, err := d.Pool.Exec(ctx, query, groupID, userID, flags.LinkedIn, flags.Instagram)
	return err
}

// DeleteContribution removes the user's contribution record for a group.
func (d *DB) DeleteContribution(ctx context.Context, groupID, userID string) error {
	query := `DELETE FROM contributions WHERE group_id = $1 AND user_id = $2`
	_, err := d.Pool.Exec(ctx, query, groupID, userID)
	return err
}
