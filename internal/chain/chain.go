// Package chain manages a group's chain message: starting a new chain,
// archiving the one it replaces, and applying contributions pressed on it.
package chain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"linkchain/internal/metrics"
	"linkchain/internal/models"
	"linkchain/internal/render"
	"linkchain/internal/store"
)

// ErrNotGroupChat is returned when a chain is started outside a group.
var ErrNotGroupChat = errors.New("chains can only be started in group chats")

// Messenger publishes and edits group messages.
type Messenger interface {
	Publish(ctx context.Context, chatID string, msg models.Message) (messageID string, err error)
	Edit(ctx context.Context, chatID, messageID string, msg models.Message) error
}

// Handle identifies a newly started chain.
type Handle struct {
	GroupID    string
	MessageID  string
	PreviousID string
	// Archived is false when there was no previous chain or archiving it failed.
	Archived bool
}

// Service is the chain lifecycle manager and contribution handler.
type Service struct {
	links          store.LinkStore
	renderer       *render.Renderer
	messenger      Messenger
	archiveTimeout time.Duration

	// groupLocks serializes render-and-edit per group within this process so
	// an older render never lands after a newer one.
	groupLocks sync.Map
}

// NewService creates a chain service.
func NewService(links store.LinkStore, renderer *render.Renderer, messenger Messenger, archiveTimeout time.Duration) *Service {
	return &Service{
		links:          links,
		renderer:       renderer,
		messenger:      messenger,
		archiveTimeout: archiveTimeout,
	}
}

func (s *Service) lock(groupID string) func() {
	mu, _ := s.groupLocks.LoadOrStore(groupID, &sync.Mutex{})
	mu.(*sync.Mutex).Lock()
	return mu.(*sync.Mutex).Unlock
}

// StartChain publishes a new chain for the group, makes it the active one and
// archives the chain it replaces. Chain creation never fails because of the
// archive step.
func (s *Service) StartChain(ctx context.Context, groupID string, chatType models.ChatType, actorID string) (Handle, error) {
	if !chatType.IsGroup() {
		return Handle{}, ErrNotGroupChat
	}

	unlock := s.lock(groupID)
	defer unlock()

	members, err := s.members(ctx, groupID)
	if err != nil {
		return Handle{}, err
	}
	msg, err := s.renderer.Render(members, false)
	if err != nil {
		return Handle{}, err
	}

	messageID, err := s.messenger.Publish(ctx, groupID, msg)
	if err != nil {
		return Handle{}, fmt.Errorf("failed to publish chain: %w", err)
	}

	previous, err := s.links.SwapActiveChain(ctx, groupID, messageID)
	if err != nil {
		return Handle{}, fmt.Errorf("failed to activate chain: %w", err)
	}

	metrics.RecordChainStarted()
	slog.Info("chain started", "group_id", groupID, "message_id", messageID, "previous_id", previous, "actor_id", actorID)

	handle := Handle{GroupID: groupID, MessageID: messageID, PreviousID: previous}
	if previous != "" && previous != messageID {
		handle.Archived = s.archive(ctx, groupID, previous, members)
	}
	return handle, nil
}

// archive freezes a superseded chain. Failures are logged and counted, never
// returned.
func (s *Service) archive(ctx context.Context, groupID, messageID string, members []models.Member) bool {
	ctx, cancel := context.WithTimeout(ctx, s.archiveTimeout)
	defer cancel()

	msg, err := s.renderer.Render(members, true)
	if err == nil {
		err = s.messenger.Edit(ctx, groupID, messageID, msg)
	}
	if err != nil {
		metrics.RecordArchiveFailure()
		slog.Warn("failed to archive previous chain", "group_id", groupID, "message_id", messageID, "error", err)
		return false
	}
	return true
}

// Render returns the group's chain message built from current store state.
func (s *Service) Render(ctx context.Context, groupID string, archived bool) (models.Message, error) {
	members, err := s.members(ctx, groupID)
	if err != nil {
		return models.Message{}, err
	}
	return s.renderer.Render(members, archived)
}

// members reads the group's members with their profiles and flags.
func (s *Service) members(ctx context.Context, groupID string) ([]models.Member, error) {
	ids, err := s.links.GetMembers(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to read members: %w", err)
	}

	members := make([]models.Member, 0, len(ids))
	for _, id := range ids {
		profile, _, err := s.links.GetProfile(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to read profile %s: %w", id, err)
		}
		profile.UserID = id
		flags, err := s.links.GetContribution(ctx, groupID, id)
		if err != nil {
			return nil, fmt.Errorf("failed to read contribution %s: %w", id, err)
		}
		members = append(members, models.Member{Profile: profile, Contribution: flags})
	}
	return members, nil
}

// RefreshMember re-renders the active chain of every group the user belongs
// to. It is used after the user's links change.
func (s *Service) RefreshMember(ctx context.Context, userID string) error {
	groups, err := s.links.GetUserGroups(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to read groups: %w", err)
	}

	var errs []error
	for _, groupID := range groups {
		if err := s.refresh(ctx, groupID); err != nil {
			errs = append(errs, fmt.Errorf("group %s: %w", groupID, err))
		}
	}
	return errors.Join(errs...)
}

// refresh re-renders the group's active chain in place from freshly read state.
func (s *Service) refresh(ctx context.Context, groupID string) error {
	unlock := s.lock(groupID)
	defer unlock()

	active, err := s.links.GetActiveChain(ctx, groupID)
	if err != nil {
		return fmt.Errorf("failed to read active chain: %w", err)
	}
	if active == "" {
		return nil
	}

	msg, err := s.Render(ctx, groupID, false)
	if err != nil {
		return err
	}
	if err := s.messenger.Edit(ctx, groupID, active, msg); err != nil {
		return fmt.Errorf("failed to update chain: %w", err)
	}
	return nil
}
