package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/bounce-app/apiserver/internal/auth"
	"github.com/bounce-app/apiserver/types"
)

const (
	minPasswordLength = 8
	minUsernameLength = 3
	maxUsernameLength = 20
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id int) (types.User, error)
	GetByUsername(ctx context.Context, username string) (types.User, error)
	Create(ctx context.Context, user types.User) (types.User, error)
	Update(ctx context.Context, user types.User) (types.User, error)
	Delete(ctx context.Context, id int) error
}

// UserService encapsulates account use-cases: registration, login,
// profile updates, and deletion.
type UserService struct {
	repo UserRepository
}

func NewUserService(repo UserRepository) *UserService {
	return &UserService{repo: repo}
}

// Register validates the username and password rules, hashes the
// password, and creates the account. A taken username or email
// surfaces as store.ErrConflict.
func (s *UserService) Register(ctx context.Context, fullName, username, email, password string) (types.User, error) {
	fullName = strings.TrimSpace(fullName)
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	if fullName == "" || email == "" {
		return types.User{}, fmt.Errorf("%w: full name and email are required", ErrInvalidInput)
	}
	if err := ValidateUsername(username); err != nil {
		return types.User{}, err
	}
	if err := ValidatePassword(password); err != nil {
		return types.User{}, err
	}

	hashed, err := auth.HashPassword(password)
	if err != nil {
		return types.User{}, err
	}

	return s.repo.Create(ctx, types.User{
		Username:     username,
		Email:        email,
		FullName:     fullName,
		PasswordHash: hashed,
	})
}

// Login verifies the credentials and returns the account. An unknown
// username and a wrong password produce the same ErrInvalidCredentials
// so callers cannot probe for account existence.
func (s *UserService) Login(ctx context.Context, username, password string) (types.User, error) {
	user, err := s.repo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return types.User{}, ErrInvalidCredentials
	}
	if !auth.CheckPassword(password, user.PasswordHash) {
		return types.User{}, ErrInvalidCredentials
	}
	return user, nil
}

func (s *UserService) GetByID(ctx context.Context, id int) (types.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *UserService) GetByUsername(ctx context.Context, username string) (types.User, error) {
	return s.repo.GetByUsername(ctx, username)
}

// ProfileUpdate carries the optional fields of a profile update; nil
// fields are left unchanged.
type ProfileUpdate struct {
	FullName *string
	Email    *string
	Password *string
}

// UpdateProfile applies a profile update. Accounts are strictly
// self-service: only the account owner may change it.
func (s *UserService) UpdateProfile(ctx context.Context, actorID, targetID int, update ProfileUpdate) (types.User, error) {
	if actorID != targetID {
		return types.User{}, ErrForbidden
	}

	user, err := s.repo.GetByID(ctx, targetID)
	if err != nil {
		return types.User{}, err
	}

	if update.FullName != nil {
		name := strings.TrimSpace(*update.FullName)
		if name == "" {
			return types.User{}, fmt.Errorf("%w: full name cannot be empty", ErrInvalidInput)
		}
		user.FullName = name
	}
	if update.Email != nil {
		email := strings.TrimSpace(*update.Email)
		if email == "" {
			return types.User{}, fmt.Errorf("%w: email cannot be empty", ErrInvalidInput)
		}
		user.Email = email
	}
	if update.Password != nil {
		if err := ValidatePassword(*update.Password); err != nil {
			return types.User{}, err
		}
		hashed, err := auth.HashPassword(*update.Password)
		if err != nil {
			return types.User{}, err
		}
		user.PasswordHash = hashed
	}

	return s.repo.Update(ctx, user)
}

// Delete removes an account. Self-service only; memberships cascade at
// the store level.
func (s *UserService) Delete(ctx context.Context, actorID, targetID int) error {
	if actorID != targetID {
		return ErrForbidden
	}
	return s.repo.Delete(ctx, targetID)
}

// ValidateUsername enforces the username rules: 3-20 characters drawn
// from letters, digits, dots, hyphens, and underscores.
func ValidateUsername(username string) error {
	if len(username) < minUsernameLength || len(username) > maxUsernameLength {
		return fmt.Errorf("%w: username must be %d-%d characters",
			ErrInvalidInput, minUsernameLength, maxUsernameLength)
	}
	for _, r := range username {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '.' || r == '-' || r == '_':
		default:
			return fmt.Errorf("%w: username contains invalid character %q", ErrInvalidInput, r)
		}
	}
	return nil
}

// ValidatePassword enforces the password rules: at least 8 characters
// with an uppercase letter, a lowercase letter, a digit, and a symbol.
func ValidatePassword(password string) error {
	if len(password) < minPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, minPasswordLength)
	}
	var upper, lower, digit, symbol bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(".-!@#$%^&*?_+ ", r):
			symbol = true
		default:
			return fmt.Errorf("%w: password contains invalid character", ErrInvalidInput)
		}
	}
	if !upper || !lower || !digit || !symbol {
		return fmt.Errorf("%w: password needs an uppercase letter, a lowercase letter, a digit, and a symbol", ErrInvalidInput)
	}
	return nil
}
