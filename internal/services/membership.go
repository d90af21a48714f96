package services

import (
	"context"
	"errors"

	"github.com/bounce-app/apiserver/internal/events"
	"github.com/bounce-app/apiserver/internal/policy"
	"github.com/bounce-app/apiserver/internal/store"
	"github.com/bounce-app/apiserver/types"
)

// MembershipRepository defines persistence operations for memberships.
// Update and Delete are compare-and-set operations keyed on the row's
// expected current role; a miss surfaces as store.ErrNotFound.
type MembershipRepository interface {
	Get(ctx context.Context, clubID, userID int) (types.Membership, error)
	List(ctx context.Context, clubID, userID int) ([]types.MemberRecord, error)
	Insert(ctx context.Context, m types.Membership) (types.Membership, error)
	Update(ctx context.Context, m types.Membership, expected types.Role) (types.Membership, error)
	Delete(ctx context.Context, clubID, userID int, expected types.Role) error
	DeleteAllExceptPresidents(ctx context.Context, clubID int) (int, error)
}

// MembershipService orchestrates membership mutations: it resolves the
// acting user's current role in the club, asks the policy rules for a
// decision, and only then touches the store. Roles are re-read from
// the store on every request; nothing is cached across requests.
type MembershipService struct {
	memberships MembershipRepository
	clubs       ClubRepository
	users       UserRepository
	bus         *events.Bus
}

func NewMembershipService(
	memberships MembershipRepository,
	clubs ClubRepository,
	users UserRepository,
	bus *events.Bus,
) *MembershipService {
	return &MembershipService{
		memberships: memberships,
		clubs:       clubs,
		users:       users,
		bus:         bus,
	}
}

// Create adds a user to a club with the given role. The referenced
// club and user must exist; the actor's role must permit inserting a
// membership of the target role; a duplicate membership surfaces as
// store.ErrConflict.
func (s *MembershipService) Create(ctx context.Context, actorID int, clubName string, targetUserID int, role types.Role, position string) (types.Membership, error) {
	if !role.Valid() {
		return types.Membership{}, ErrInvalidInput
	}

	club, err := s.clubs.GetByName(ctx, clubName)
	if err != nil {
		return types.Membership{}, err
	}
	if _, err := s.users.GetByID(ctx, targetUserID); err != nil {
		return types.Membership{}, err
	}

	actorRole, err := s.roleOf(ctx, club.ID, actorID)
	if err != nil {
		return types.Membership{}, err
	}
	if !policy.CanInsert(actorRole, role) {
		return types.Membership{}, ErrForbidden
	}

	created, err := s.memberships.Insert(ctx, types.Membership{
		UserID:   targetUserID,
		ClubID:   club.ID,
		Role:     role,
		Position: position,
	})
	if err != nil {
		return types.Membership{}, err
	}

	s.bus.EmitMembership(ctx, events.TopicMembershipCreated, created)
	return created, nil
}

// Update changes the target membership's role and position. The policy
// decision is made against the target's freshly read role, and the
// write is a compare-and-set on that same role: if the row moved in
// between, the stale decision is not committed and the caller sees
// store.ErrConflict.
func (s *MembershipService) Update(ctx context.Context, actorID int, clubName string, targetUserID int, newRole types.Role, newPosition string) (types.Membership, error) {
	if !newRole.Valid() {
		return types.Membership{}, ErrInvalidInput
	}

	club, err := s.clubs.GetByName(ctx, clubName)
	if err != nil {
		return types.Membership{}, err
	}

	target, err := s.memberships.Get(ctx, club.ID, targetUserID)
	if err != nil {
		return types.Membership{}, err
	}
	actorRole, err := s.roleOf(ctx, club.ID, actorID)
	if err != nil {
		return types.Membership{}, err
	}
	if !policy.CanUpdate(actorRole, target.Role, newRole) {
		return types.Membership{}, ErrForbidden
	}

	updated := target
	updated.Role = newRole
	updated.Position = newPosition

	updated, err = s.memberships.Update(ctx, updated, target.Role)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.Membership{}, s.resolveCASMiss(ctx, club.ID, targetUserID)
		}
		return types.Membership{}, err
	}

	s.bus.EmitMembership(ctx, events.TopicMembershipUpdated, updated)
	return updated, nil
}

// Remove deletes the target's membership. Self-removal is always
// permitted; otherwise the actor's role must outrank appropriately.
// Like Update, the delete is compare-and-set on the target's role.
func (s *MembershipService) Remove(ctx context.Context, actorID int, clubName string, targetUserID int) error {
	club, err := s.clubs.GetByName(ctx, clubName)
	if err != nil {
		return err
	}

	target, err := s.memberships.Get(ctx, club.ID, targetUserID)
	if err != nil {
		return err
	}

	var actorRole types.Role
	if actorID == targetUserID {
		actorRole = target.Role
	} else {
		if actorRole, err = s.roleOf(ctx, club.ID, actorID); err != nil {
			return err
		}
	}
	if !policy.CanDelete(actorID, targetUserID, actorRole, target.Role) {
		return ErrForbidden
	}

	if err := s.memberships.Delete(ctx, club.ID, targetUserID, target.Role); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return s.resolveCASMiss(ctx, club.ID, targetUserID)
		}
		return err
	}

	s.bus.EmitMembership(ctx, events.TopicMembershipDeleted, target)
	return nil
}

// RemoveAll clears the club's roster. Presidents only; the store keeps
// every President row so the club is never left without one. Returns
// the number of memberships removed.
func (s *MembershipService) RemoveAll(ctx context.Context, actorID int, clubName string) (int, error) {
	club, err := s.clubs.GetByName(ctx, clubName)
	if err != nil {
		return 0, err
	}

	actorRole, err := s.roleOf(ctx, club.ID, actorID)
	if err != nil {
		return 0, err
	}
	if !policy.CanDeleteAll(actorRole) {
		return 0, ErrForbidden
	}

	removed, err := s.memberships.DeleteAllExceptPresidents(ctx, club.ID)
	if err != nil {
		return 0, err
	}

	s.bus.EmitMembership(ctx, events.TopicMembershipDeleted, types.Membership{ClubID: club.ID})
	return removed, nil
}

// List returns the club's memberships, optionally narrowed to one
// member. Only members of the club may read its roster.
func (s *MembershipService) List(ctx context.Context, actorID int, clubName string, filterUserID int) ([]types.MemberRecord, error) {
	club, err := s.clubs.GetByName(ctx, clubName)
	if err != nil {
		return nil, err
	}

	actorRole, err := s.roleOf(ctx, club.ID, actorID)
	if err != nil {
		return nil, err
	}
	if !policy.CanSelect(actorRole) {
		return nil, ErrForbidden
	}

	return s.memberships.List(ctx, club.ID, filterUserID)
}

// resolveCASMiss classifies a compare-and-set miss by re-reading the
// row: the membership either disappeared (NotFound) or its role moved
// under us (Conflict). Either way the stale decision was not applied.
func (s *MembershipService) resolveCASMiss(ctx context.Context, clubID, targetUserID int) error {
	if _, err := s.memberships.Get(ctx, clubID, targetUserID); err != nil {
		return err
	}
	return store.ErrConflict
}

func (s *MembershipService) roleOf(ctx context.Context, clubID, actorID int) (types.Role, error) {
	membership, err := s.memberships.Get(ctx, clubID, actorID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", nil
		}
		return "", err
	}
	return membership.Role, nil
}
