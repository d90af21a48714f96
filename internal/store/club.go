package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/bounce-app/apiserver/types"
)

// FounderPosition is the position title given to a club's creator.
const FounderPosition = "Owner"

// ClubRepository handles persistence for clubs.
type ClubRepository struct {
	db *sql.DB
}

func NewClubRepository(db *sql.DB) *ClubRepository {
	return &ClubRepository{db: db}
}

func (r *ClubRepository) GetByID(ctx context.Context, id int) (types.Club, error) {
	const query = `
		SELECT id, name, description, website_url, facebook_url, instagram_url, twitter_url, created_at, updated_at
		FROM clubs
		WHERE id = $1`
	return scanClub(r.db.QueryRowContext(ctx, query, id))
}

func (r *ClubRepository) GetByName(ctx context.Context, name string) (types.Club, error) {
	const query = `
		SELECT id, name, description, website_url, facebook_url, instagram_url, twitter_url, created_at, updated_at
		FROM clubs
		WHERE name = $1`
	return scanClub(r.db.QueryRowContext(ctx, query, name))
}

// Create inserts the club and the founder's President membership in a
// single transaction, so a club can never exist without its first
// President.
func (r *ClubRepository) Create(ctx context.Context, club types.Club, founderID int) (types.Club, error) {
	now := time.Now()
	club.CreatedAt = now
	club.UpdatedAt = now

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return types.Club{}, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	const insertClub = `
		INSERT INTO clubs (name, description, website_url, facebook_url, instagram_url, twitter_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`
	if err := tx.QueryRowContext(
		ctx,
		insertClub,
		club.Name,
		club.Description,
		club.WebsiteURL,
		club.FacebookURL,
		club.InstagramURL,
		club.TwitterURL,
		club.CreatedAt,
		club.UpdatedAt,
	).Scan(&club.ID); err != nil {
		return types.Club{}, mapPQError(err)
	}

	const insertFounder = `
		INSERT INTO memberships (user_id, club_id, role, position, created_at)
		VALUES ($1, $2, $3, $4, $5)`
	if _, err := tx.ExecContext(
		ctx,
		insertFounder,
		founderID,
		club.ID,
		types.RolePresident,
		FounderPosition,
		now,
	); err != nil {
		return types.Club{}, fmt.Errorf("insert founder membership: %w", mapPQError(err))
	}

	if err := tx.Commit(); err != nil {
		return types.Club{}, err
	}
	return club, nil
}

func (r *ClubRepository) Update(ctx context.Context, club types.Club) (types.Club, error) {
	club.UpdatedAt = time.Now()

	const query = `
		UPDATE clubs
		SET name = $1,
			description = $2,
			website_url = $3,
			facebook_url = $4,
			instagram_url = $5,
			twitter_url = $6,
			updated_at = $7
		WHERE id = $8`
	result, err := r.db.ExecContext(
		ctx,
		query,
		club.Name,
		club.Description,
		club.WebsiteURL,
		club.FacebookURL,
		club.InstagramURL,
		club.TwitterURL,
		club.UpdatedAt,
		club.ID,
	)
	if err != nil {
		return types.Club{}, mapPQError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.Club{}, err
	}
	if affected == 0 {
		return types.Club{}, ErrNotFound
	}
	return club, nil
}

// Delete removes the club and, via ON DELETE CASCADE, every
// membership in it.
func (r *ClubRepository) Delete(ctx context.Context, id int) error {
	const query = `DELETE FROM clubs WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func scanClub(row *sql.Row) (types.Club, error) {
	var club types.Club
	var website, facebook, instagram, twitter sql.NullString
	err := row.Scan(
		&club.ID,
		&club.Name,
		&club.Description,
		&website,
		&facebook,
		&instagram,
		&twitter,
		&club.CreatedAt,
		&club.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Club{}, ErrNotFound
		}
		return types.Club{}, err
	}
	club.WebsiteURL = website.String
	club.FacebookURL = facebook.String
	club.InstagramURL = instagram.String
	club.TwitterURL = twitter.String
	return club, nil
}
