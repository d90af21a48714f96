package services

import (
	"context"
	"sync"
	"time"

	"github.com/bounce-app/apiserver/internal/store"
	"github.com/bounce-app/apiserver/types"
)

type membershipKey struct {
	clubID int
	userID int
}

type memMembershipRepo struct {
	mu sync.Mutex
	m  map[membershipKey]types.Membership
}

func newMemMembershipRepo() *memMembershipRepo {
	return &memMembershipRepo{m: make(map[membershipKey]types.Membership)}
}

func (r *memMembershipRepo) Get(ctx context.Context, clubID, userID int) (types.Membership, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.m[membershipKey{clubID, userID}]
	if !ok {
		return types.Membership{}, store.ErrNotFound
	}
	return m, nil
}

func (r *memMembershipRepo) List(ctx context.Context, clubID, userID int) ([]types.MemberRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	records := make([]types.MemberRecord, 0)
	for key, m := range r.m {
		if key.clubID != clubID {
			continue
		}
		if userID != 0 && key.userID != userID {
			continue
		}
		records = append(records, types.MemberRecord{Membership: m})
	}
	return records, nil
}

func (r *memMembershipRepo) Insert(ctx context.Context, m types.Membership) (types.Membership, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := membershipKey{m.ClubID, m.UserID}
	if _, exists := r.m[key]; exists {
		return types.Membership{}, store.ErrConflict
	}
	m.CreatedAt = time.Now()
	r.m[key] = m
	return m, nil
}

func (r *memMembershipRepo) Update(ctx context.Context, m types.Membership, expected types.Role) (types.Membership, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := membershipKey{m.ClubID, m.UserID}
	current, ok := r.m[key]
	if !ok || current.Role != expected {
		return types.Membership{}, store.ErrNotFound
	}
	m.CreatedAt = current.CreatedAt
	r.m[key] = m
	return m, nil
}

func (r *memMembershipRepo) Delete(ctx context.Context, clubID, userID int, expected types.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := membershipKey{clubID, userID}
	current, ok := r.m[key]
	if !ok || current.Role != expected {
		return store.ErrNotFound
	}
	delete(r.m, key)
	return nil
}

func (r *memMembershipRepo) DeleteAllExceptPresidents(ctx context.Context, clubID int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for key, m := range r.m {
		if key.clubID == clubID && m.Role != types.RolePresident {
			delete(r.m, key)
			removed++
		}
	}
	return removed, nil
}

type memClubRepo struct {
	mu          sync.Mutex
	nextID      int
	byID        map[int]types.Club
	memberships *memMembershipRepo
}

func newMemClubRepo(memberships *memMembershipRepo) *memClubRepo {
	return &memClubRepo{
		nextID:      1,
		byID:        make(map[int]types.Club),
		memberships: memberships,
	}
}

func (r *memClubRepo) GetByID(ctx context.Context, id int) (types.Club, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	club, ok := r.byID[id]
	if !ok {
		return types.Club{}, store.ErrNotFound
	}
	return club, nil
}

func (r *memClubRepo) GetByName(ctx context.Context, name string) (types.Club, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, club := range r.byID {
		if club.Name == name {
			return club, nil
		}
	}
	return types.Club{}, store.ErrNotFound
}

func (r *memClubRepo) Create(ctx context.Context, club types.Club, founderID int) (types.Club, error) {
	r.mu.Lock()
	for _, existing := range r.byID {
		if existing.Name == club.Name {
			r.mu.Unlock()
			return types.Club{}, store.ErrConflict
		}
	}
	club.ID = r.nextID
	r.nextID++
	club.CreatedAt = time.Now()
	r.byID[club.ID] = club
	r.mu.Unlock()

	_, err := r.memberships.Insert(ctx, types.Membership{
		UserID:   founderID,
		ClubID:   club.ID,
		Role:     types.RolePresident,
		Position: store.FounderPosition,
	})
	if err != nil {
		return types.Club{}, err
	}
	return club, nil
}

func (r *memClubRepo) Update(ctx context.Context, club types.Club) (types.Club, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[club.ID]; !ok {
		return types.Club{}, store.ErrNotFound
	}
	r.byID[club.ID] = club
	return club, nil
}

func (r *memClubRepo) Delete(ctx context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return store.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

type memUserRepo struct {
	mu     sync.Mutex
	nextID int
	byID   map[int]types.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{nextID: 1, byID: make(map[int]types.User)}
}

func (r *memUserRepo) GetByID(ctx context.Context, id int) (types.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.byID[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func (r *memUserRepo) GetByUsername(ctx context.Context, username string) (types.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.byID {
		if user.Username == username {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (r *memUserRepo) Create(ctx context.Context, user types.User) (types.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.byID {
		if existing.Username == user.Username || existing.Email == user.Email {
			return types.User{}, store.ErrConflict
		}
	}
	user.ID = r.nextID
	r.nextID++
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	r.byID[user.ID] = user
	return user, nil
}

func (r *memUserRepo) Update(ctx context.Context, user types.User) (types.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[user.ID]; !ok {
		return types.User{}, store.ErrNotFound
	}
	r.byID[user.ID] = user
	return user, nil
}

func (r *memUserRepo) Delete(ctx context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return store.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

// seedUser inserts a user directly, bypassing validation.
func (r *memUserRepo) seed(user types.User) types.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	user.ID = r.nextID
	r.nextID++
	r.byID[user.ID] = user
	return user
}
