package types

import "time"

// Entity kinds images can be attached to.
const (
	ImageEntityUser = "user"
	ImageEntityClub = "club"
)

// Image is the metadata record for an uploaded image. The bytes live
// in object storage under ObjectKey; at most one image exists per
// (entity, entity ID, label), e.g. one "profile" image per user.
type Image struct {
	ID          int       `json:"id" db:"id"`
	EntityType  string    `json:"entity_type" db:"entity_type"`
	EntityID    int       `json:"entity_id" db:"entity_id"`
	Label       string    `json:"label" db:"label"`
	ObjectKey   string    `json:"-" db:"object_key"`
	ContentType string    `json:"content_type" db:"content_type"`
	SizeBytes   int64     `json:"size_bytes" db:"size_bytes"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}
