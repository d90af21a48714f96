package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/bounce-app/apiserver/types"
)

// MembershipRepository handles persistence for memberships.
//
// Update and Delete are compare-and-set operations keyed on the row's
// current role. The caller reads the target's role, runs its
// authorization check against that snapshot, then passes the snapshot
// back as the expected role; if the row changed in between, no rows
// match and the caller sees ErrNotFound rather than committing a
// mutation decided on stale privilege.
type MembershipRepository struct {
	db *sql.DB
}

func NewMembershipRepository(db *sql.DB) *MembershipRepository {
	return &MembershipRepository{db: db}
}

func (r *MembershipRepository) Get(ctx context.Context, clubID, userID int) (types.Membership, error) {
	const query = `
		SELECT user_id, club_id, role, position, created_at
		FROM memberships
		WHERE club_id = $1 AND user_id = $2`
	var m types.Membership
	var position sql.NullString
	err := r.db.QueryRowContext(ctx, query, clubID, userID).Scan(
		&m.UserID,
		&m.ClubID,
		&m.Role,
		&position,
		&m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Membership{}, ErrNotFound
		}
		return types.Membership{}, err
	}
	m.Position = position.String
	return m, nil
}

// List returns the club's memberships joined with member identity. A
// non-zero userID narrows the listing to that single member.
func (r *MembershipRepository) List(ctx context.Context, clubID, userID int) ([]types.MemberRecord, error) {
	query := `
		SELECT m.user_id, m.club_id, m.role, m.position, m.created_at, u.username, u.full_name
		FROM memberships m
		INNER JOIN users u ON u.id = m.user_id
		WHERE m.club_id = $1`
	args := []any{clubID}
	if userID != 0 {
		query += ` AND m.user_id = $2`
		args = append(args, userID)
	}
	query += ` ORDER BY m.created_at, m.user_id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]types.MemberRecord, 0)
	for rows.Next() {
		var rec types.MemberRecord
		var position sql.NullString
		if err := rows.Scan(
			&rec.UserID,
			&rec.ClubID,
			&rec.Role,
			&position,
			&rec.CreatedAt,
			&rec.Username,
			&rec.FullName,
		); err != nil {
			return nil, err
		}
		rec.Position = position.String
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (r *MembershipRepository) Insert(ctx context.Context, m types.Membership) (types.Membership, error) {
	m.CreatedAt = time.Now()

	const query = `
		INSERT INTO memberships (user_id, club_id, role, position, created_at)
		VALUES ($1, $2, $3, $4, $5)`
	if _, err := r.db.ExecContext(
		ctx,
		query,
		m.UserID,
		m.ClubID,
		m.Role,
		m.Position,
		m.CreatedAt,
	); err != nil {
		return types.Membership{}, mapPQError(err)
	}
	return m, nil
}

// Update sets the membership's role and position, provided its current
// role still equals expected. ErrNotFound means either the row is gone
// or its role moved since the caller last read it.
func (r *MembershipRepository) Update(ctx context.Context, m types.Membership, expected types.Role) (types.Membership, error) {
	const query = `
		UPDATE memberships
		SET role = $1, position = $2
		WHERE club_id = $3 AND user_id = $4 AND role = $5`
	result, err := r.db.ExecContext(ctx, query, m.Role, m.Position, m.ClubID, m.UserID, expected)
	if err != nil {
		return types.Membership{}, mapPQError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.Membership{}, err
	}
	if affected == 0 {
		return types.Membership{}, ErrNotFound
	}
	return m, nil
}

// Delete removes the membership, provided its current role still
// equals expected.
func (r *MembershipRepository) Delete(ctx context.Context, clubID, userID int, expected types.Role) error {
	const query = `
		DELETE FROM memberships
		WHERE club_id = $1 AND user_id = $2 AND role = $3`
	result, err := r.db.ExecContext(ctx, query, clubID, userID, expected)
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

// DeleteAllExceptPresidents clears the club's roster while leaving
// every President row in place, so the club always keeps at least one.
func (r *MembershipRepository) DeleteAllExceptPresidents(ctx context.Context, clubID int) (int, error) {
	const query = `
		DELETE FROM memberships
		WHERE club_id = $1 AND role <> $2`
	result, err := r.db.ExecContext(ctx, query, clubID, types.RolePresident)
	if err != nil {
		return 0, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(affected), nil
}
