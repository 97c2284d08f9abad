package chain

import (
	"context"
	"fmt"

	"linkchain/internal/metrics"
	"linkchain/internal/models"
)

// Notices shown to the user who pressed a chain button.
const (
	StaleNotice   = "This chain is no longer active. Use the latest chain in this group."
	RemovedNotice = "You've been removed from this group's chain."
)

// Press is a chain button press.
type Press struct {
	GroupID string
	UserID  string
	// Name is the display name the transport reports. It is recorded only
	// when the press adds the user to the chain.
	Name      string
	MessageID string
	Action    models.Action
}

// Outcome tells the caller how to answer the user who pressed the button.
type Outcome struct {
	Notice string
	// Stale is set when the press targeted a chain that is no longer active.
	Stale bool
	// NeedsCapture names the platform link the user must capture privately
	// before the press can succeed.
	NeedsCapture models.Platform
	// Private asks for Notice to be delivered in the private chat as well.
	Private bool
	Updated bool
}

// HandleChainAction applies a button press to the group's active chain.
// Rejected presses mutate nothing.
func (s *Service) HandleChainAction(ctx context.Context, p Press) (Outcome, error) {
	if !p.Action.IsChainAction() {
		return Outcome{}, fmt.Errorf("%w: %v is not a chain action", models.ErrUnknownAction, p.Action)
	}

	active, err := s.links.GetActiveChain(ctx, p.GroupID)
	if err != nil {
		return Outcome{}, fmt.Errorf("failed to read active chain: %w", err)
	}
	if active == "" || active != p.MessageID {
		return Outcome{Stale: true, Notice: StaleNotice}, nil
	}

	switch p.Action {
	case models.ActionAddLinkedIn:
		return s.contribute(ctx, p, models.PlatformLinkedIn)
	case models.ActionAddInstagram:
		return s.contribute(ctx, p, models.PlatformInstagram)
	case models.ActionRemoveMe:
		return s.leave(ctx, p)
	}
	return Outcome{}, fmt.Errorf("%w: %v", models.ErrUnknownAction, p.Action)
}

func (s *Service) contribute(ctx context.Context, p Press, platform models.Platform) (Outcome, error) {
	profile, _, err := s.links.GetProfile(ctx, p.UserID)
	if err != nil {
		return Outcome{}, fmt.Errorf("failed to read profile: %w", err)
	}
	if !profile.Has(platform) {
		return Outcome{
			NeedsCapture: platform,
			Notice:       fmt.Sprintf("Set your %s link in a private chat with me first, then tap again.", platform.Label()),
		}, nil
	}

	if err := s.setFlag(ctx, p, platform); err != nil {
		return Outcome{}, err
	}

	if err := s.refresh(ctx, p.GroupID); err != nil {
		return Outcome{}, err
	}
	return Outcome{
		Updated: true,
		Notice:  fmt.Sprintf("Your %s is on the chain.", platform.Label()),
	}, nil
}

func (s *Service) leave(ctx context.Context, p Press) (Outcome, error) {
	if err := s.links.DeleteContribution(ctx, p.GroupID, p.UserID); err != nil {
		return Outcome{}, fmt.Errorf("failed to delete contribution: %w", err)
	}
	if err := s.links.RemoveMember(ctx, p.GroupID, p.UserID); err != nil {
		return Outcome{}, fmt.Errorf("failed to remove member: %w", err)
	}
	metrics.RecordContribution("all", "remove")

	if err := s.refresh(ctx, p.GroupID); err != nil {
		return Outcome{}, err
	}
	return Outcome{Updated: true, Private: true, Notice: RemovedNotice}, nil
}

// setFlag records the user's name, joins the user to the group, then sets one
// contribution flag. A flag is never written for a non-member. The flag
// read-modify-write holds the group lock.
func (s *Service) setFlag(ctx context.Context, p Press, platform models.Platform) error {
	unlock := s.lock(p.GroupID)
	defer unlock()

	if p.Name != "" {
		if err := s.links.SetDisplayName(ctx, p.UserID, p.Name); err != nil {
			return fmt.Errorf("failed to record display name: %w", err)
		}
	}
	if err := s.links.AddMember(ctx, p.GroupID, p.UserID); err != nil {
		return fmt.Errorf("failed to add member: %w", err)
	}

	flags, err := s.links.GetContribution(ctx, p.GroupID, p.UserID)
	if err != nil {
		return fmt.Errorf("failed to read contribution: %w", err)
	}
	if flags.Has(platform) {
		return nil
	}
	if err := s.links.SetContribution(ctx, p.GroupID, p.UserID, flags.With(platform)); err != nil {
		return fmt.Errorf("failed to record contribution: %w", err)
	}
	metrics.RecordContribution(string(platform), "add")
	return nil
}
