package store

import (
	"context"
	"slices"
	"sync"
	"time"

	"linkchain/internal/models"
)

// Memory is a process-local LinkStore, StateStore and Stats. It is the
// single source of truth for its process only; use the PostgreSQL store when
// more than one worker serves the bot.
type Memory struct {
	mu            sync.Mutex
	profiles      map[string]models.Profile
	members       map[string][]string
	contributions map[contributionKey]models.Contribution
	chains        map[string]string
	states        map[string]stateEntry
	now           func() time.Time
}

type contributionKey struct {
	groupID string
	userID  string
}

type stateEntry struct {
	state     models.Awaiting
	expiresAt time.Time
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		profiles:      make(map[string]models.Profile),
		members:       make(map[string][]string),
		contributions: make(map[contributionKey]models.Contribution),
		chains:        make(map[string]string),
		states:        make(map[string]stateEntry),
		now:           time.Now,
	}
}

// GetProfile retrieves a user's stored links.
func (m *Memory) GetProfile(_ context.Context, userID string) (models.Profile, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[userID]
	return p, ok, nil
}

// SetProfileField stores or, for an empty value, clears one platform link.
func (m *Memory) SetProfileField(_ context.Context, userID string, platform models.Platform, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := m.profiles[userID]
	p.UserID = userID
	switch platform {
	case models.PlatformLinkedIn:
		p.LinkedIn = value
	case models.PlatformInstagram:
		p.Instagram = value
	}
	m.profiles[userID] = p
	return nil
}

// SetDisplayName records the user's display name.
func (m *Memory) SetDisplayName(_ context.Context, userID, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := m.profiles[userID]
	p.UserID = userID
	p.DisplayName = name
	m.profiles[userID] = p
	return nil
}

// GetMembers returns the group's member ids in join order.
func (m *Memory) GetMembers(_ context.Context, groupID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.members[groupID]), nil
}

// AddMember adds a user to a group. Existing members keep their position.
func (m *Memory) AddMember(_ context.Context, groupID, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !slices.Contains(m.members[groupID], userID) {
		m.members[groupID] = append(m.members[groupID], userID)
	}
	return nil
}

// RemoveMember removes a user from a group.
func (m *Memory) RemoveMember(_ context.Context, groupID, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.members[groupID] = slices.DeleteFunc(m.members[groupID], func(id string) bool {
		return id == userID
	})
	return nil
}

// GetUserGroups returns the groups the user is a member of.
func (m *Memory) GetUserGroups(_ context.Context, userID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var groups []string
	for groupID, members := range m.members {
		if slices.Contains(members, userID) {
			groups = append(groups, groupID)
		}
	}
	slices.Sort(groups)
	return groups, nil
}

// GetContribution returns the user's contribution flags for a group.
func (m *Memory) GetContribution(_ context.Context, groupID, userID string) (models.Contribution, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.contributions[contributionKey{groupID, userID}], nil
}

// SetContribution overwrites the user's contribution flags for a group.
func (m *Memory) SetContribution(_ context.Context, groupID, userID string, flags models.Contribution) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.contributions[contributionKey{groupID, userID}] = flags
	return nil
}

// DeleteContribution removes the user's contribution record for a group.
func (m *Memory) DeleteContribution(_ context.Context, groupID, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.contributions, contributionKey{groupID, userID})
	return nil
}

// HasContribution reports whether a contribution record exists at all.
func (m *Memory) HasContribution(groupID, userID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.contributions[contributionKey{groupID, userID}]
	return ok
}

// GetActiveChain returns the group's active chain message id, or "".
func (m *Memory) GetActiveChain(_ context.Context, groupID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.chains[groupID], nil
}

// SwapActiveChain replaces the group's active chain and returns the previous one.
func (m *Memory) SwapActiveChain(_ context.Context, groupID, messageID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	previous := m.chains[groupID]
	m.chains[groupID] = messageID
	return previous, nil
}

// Ping always succeeds.
func (m *Memory) Ping(context.Context) error {
	return nil
}

// GetAwaiting returns the user's pending expectation, dropping expired ones.
func (m *Memory) GetAwaiting(_ context.Context, userID string) (models.Awaiting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.states[userID]
	if !ok {
		return models.AwaitingNone, nil
	}
	if !entry.expiresAt.IsZero() && m.now().After(entry.expiresAt) {
		delete(m.states, userID)
		return models.AwaitingNone, nil
	}
	return entry.state, nil
}

// SetAwaiting stores the state for ttl. AwaitingNone clears it.
func (m *Memory) SetAwaiting(_ context.Context, userID string, state models.Awaiting, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if state == models.AwaitingNone {
		delete(m.states, userID)
		return nil
	}
	entry := stateEntry{state: state}
	if ttl != 0 {
		entry.expiresAt = m.now().Add(ttl)
	}
	m.states[userID] = entry
	return nil
}

// CountProfiles counts users with a link for platform.
func (m *Memory) CountProfiles(_ context.Context, platform models.Platform) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, p := range m.profiles {
		if p.Has(platform) {
			n++
		}
	}
	return n, nil
}

// CountActiveChains counts groups with an active chain.
func (m *Memory) CountActiveChains(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.chains)), nil
}
