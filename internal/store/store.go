// Package store defines the persistence boundary of the chain core.
// Every core operation re-reads through these interfaces; nothing above
// this layer caches store state across requests.
package store

import (
	"context"
	"time"

	"linkchain/internal/models"
)

// LinkStore is the durable home of profiles, group membership, per-group
// contributions and active-chain pointers.
type LinkStore interface {
	// GetProfile returns the user's profile. ok is false if the user has
	// never stored anything.
	GetProfile(ctx context.Context, userID string) (profile models.Profile, ok bool, err error)
	// SetProfileField stores a link; an empty value clears the field.
	SetProfileField(ctx context.Context, userID string, platform models.Platform, value string) error
	// SetDisplayName records the name the transport reports for the user.
	SetDisplayName(ctx context.Context, userID, name string) error

	// GetMembers returns member ids in join order.
	GetMembers(ctx context.Context, groupID string) ([]string, error)
	// AddMember is a no-op if the user is already a member.
	AddMember(ctx context.Context, groupID, userID string) error
	RemoveMember(ctx context.Context, groupID, userID string) error
	// GetUserGroups returns the groups the user is a member of.
	GetUserGroups(ctx context.Context, userID string) ([]string, error)

	GetContribution(ctx context.Context, groupID, userID string) (models.Contribution, error)
	SetContribution(ctx context.Context, groupID, userID string, flags models.Contribution) error
	DeleteContribution(ctx context.Context, groupID, userID string) error

	// GetActiveChain returns the active chain message id, or "" if the group
	// has none.
	GetActiveChain(ctx context.Context, groupID string) (string, error)
	// SwapActiveChain sets the active chain and returns the previous one in
	// a single atomic step. previous is "" if there was none.
	SwapActiveChain(ctx context.Context, groupID, messageID string) (previous string, err error)

	Ping(ctx context.Context) error
}

// StateStore keeps the per-user awaiting state of the private conversation.
type StateStore interface {
	// GetAwaiting returns AwaitingNone for unknown or expired users.
	GetAwaiting(ctx context.Context, userID string) (models.Awaiting, error)
	// SetAwaiting stores the state for ttl; AwaitingNone clears it.
	SetAwaiting(ctx context.Context, userID string, state models.Awaiting, ttl time.Duration) error
}

// Stats is read by the metrics collector on each scrape.
type Stats interface {
	CountProfiles(ctx context.Context, platform models.Platform) (int64, error)
	CountActiveChains(ctx context.Context) (int64, error)
}
