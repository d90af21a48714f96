package types

import "time"

// Club represents a club that users can hold memberships in.
type Club struct {
	// ID is the unique identifier of the club.
	ID int `json:"id" db:"id"`

	// Name is the unique, human-facing name of the club.
	Name string `json:"name" db:"name"`

	// Description is a free-form description of the club.
	Description string `json:"description" db:"description"`

	// Social links are all optional.
	WebsiteURL   string `json:"website_url,omitempty" db:"website_url"`
	FacebookURL  string `json:"facebook_url,omitempty" db:"facebook_url"`
	InstagramURL string `json:"instagram_url,omitempty" db:"instagram_url"`
	TwitterURL   string `json:"twitter_url,omitempty" db:"twitter_url"`

	// CreatedAt is the timestamp when the club was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the club.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
