package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bounce-app/apiserver/internal/events"
	"github.com/bounce-app/apiserver/internal/store"
	"github.com/bounce-app/apiserver/types"
)

// ClubRepository defines persistence operations for clubs. Create
// inserts the club together with the founder's President membership in
// one transaction.
type ClubRepository interface {
	GetByID(ctx context.Context, id int) (types.Club, error)
	GetByName(ctx context.Context, name string) (types.Club, error)
	Create(ctx context.Context, club types.Club, founderID int) (types.Club, error)
	Update(ctx context.Context, club types.Club) (types.Club, error)
	Delete(ctx context.Context, id int) error
}

// ClubService encapsulates club use-cases. Mutations other than
// creation are gated on the actor's role in the club itself.
type ClubService struct {
	clubs       ClubRepository
	memberships MembershipRepository
	bus         *events.Bus
}

func NewClubService(clubs ClubRepository, memberships MembershipRepository, bus *events.Bus) *ClubService {
	return &ClubService{
		clubs:       clubs,
		memberships: memberships,
		bus:         bus,
	}
}

// Create makes a new club owned by the creating user. The creator is
// axiomatically the club's first President (position "Owner"); no
// authorization check applies to this bootstrap insert.
func (s *ClubService) Create(ctx context.Context, founderID int, club types.Club) (types.Club, error) {
	club.Name = strings.TrimSpace(club.Name)
	if club.Name == "" {
		return types.Club{}, fmt.Errorf("%w: club name is required", ErrInvalidInput)
	}

	created, err := s.clubs.Create(ctx, club, founderID)
	if err != nil {
		return types.Club{}, err
	}

	s.bus.EmitClubCreated(ctx, created, founderID)
	s.bus.EmitMembership(ctx, events.TopicMembershipCreated, types.Membership{
		UserID:   founderID,
		ClubID:   created.ID,
		Role:     types.RolePresident,
		Position: "Owner",
	})
	return created, nil
}

func (s *ClubService) GetByName(ctx context.Context, name string) (types.Club, error) {
	return s.clubs.GetByName(ctx, name)
}

// ClubUpdate carries the optional fields of a club update; nil fields
// are left unchanged.
type ClubUpdate struct {
	Name         *string
	Description  *string
	WebsiteURL   *string
	FacebookURL  *string
	InstagramURL *string
	TwitterURL   *string
}

// Update edits a club. The actor must hold at least Admin in the club.
func (s *ClubService) Update(ctx context.Context, actorID int, name string, update ClubUpdate) (types.Club, error) {
	club, err := s.clubs.GetByName(ctx, name)
	if err != nil {
		return types.Club{}, err
	}

	actorRole, err := s.roleOf(ctx, club.ID, actorID)
	if err != nil {
		return types.Club{}, err
	}
	if !actorRole.AtLeast(types.RoleAdmin) {
		return types.Club{}, ErrForbidden
	}

	if update.Name != nil {
		newName := strings.TrimSpace(*update.Name)
		if newName == "" {
			return types.Club{}, fmt.Errorf("%w: club name cannot be empty", ErrInvalidInput)
		}
		club.Name = newName
	}
	if update.Description != nil {
		club.Description = *update.Description
	}
	if update.WebsiteURL != nil {
		club.WebsiteURL = *update.WebsiteURL
	}
	if update.FacebookURL != nil {
		club.FacebookURL = *update.FacebookURL
	}
	if update.InstagramURL != nil {
		club.InstagramURL = *update.InstagramURL
	}
	if update.TwitterURL != nil {
		club.TwitterURL = *update.TwitterURL
	}

	return s.clubs.Update(ctx, club)
}

// Delete removes a club and all of its memberships. Presidents only.
func (s *ClubService) Delete(ctx context.Context, actorID int, name string) error {
	club, err := s.clubs.GetByName(ctx, name)
	if err != nil {
		return err
	}

	actorRole, err := s.roleOf(ctx, club.ID, actorID)
	if err != nil {
		return err
	}
	if actorRole != types.RolePresident {
		return ErrForbidden
	}
	return s.clubs.Delete(ctx, club.ID)
}

// roleOf returns the actor's current role in the club; holding no
// membership is the zero Role, not an error.
func (s *ClubService) roleOf(ctx context.Context, clubID, actorID int) (types.Role, error) {
	membership, err := s.memberships.Get(ctx, clubID, actorID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", nil
		}
		return "", err
	}
	return membership.Role, nil
}
