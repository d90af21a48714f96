package types

import "time"

// Membership is the join record granting a user a role within a
// specific club. A user holds at most one membership per club; the
// (UserID, ClubID) pair is the record's identity.
type Membership struct {
	// UserID identifies the member.
	UserID int `json:"user_id" db:"user_id"`

	// ClubID identifies the club the membership belongs to.
	ClubID int `json:"club_id" db:"club_id"`

	// Role is the member's privilege level within the club.
	Role Role `json:"role" db:"role"`

	// Position is an optional free-text title, e.g. "VP" or "Owner".
	Position string `json:"position,omitempty" db:"position"`

	// CreatedAt is the timestamp when the membership was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// MemberRecord is a membership joined with the member's public user
// fields, as returned by membership listings.
type MemberRecord struct {
	Membership
	Username string `json:"username" db:"username"`
	FullName string `json:"full_name" db:"full_name"`
}
