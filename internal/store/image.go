package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/bounce-app/apiserver/types"
)

// ImageRepository handles persistence for image metadata.
type ImageRepository struct {
	db *sql.DB
}

func NewImageRepository(db *sql.DB) *ImageRepository {
	return &ImageRepository{db: db}
}

func (r *ImageRepository) Get(ctx context.Context, entityType string, entityID int, label string) (types.Image, error) {
	const query = `
		SELECT id, entity_type, entity_id, label, object_key, content_type, size_bytes, created_at, updated_at
		FROM images
		WHERE entity_type = $1 AND entity_id = $2 AND label = $3`
	var img types.Image
	err := r.db.QueryRowContext(ctx, query, entityType, entityID, label).Scan(
		&img.ID,
		&img.EntityType,
		&img.EntityID,
		&img.Label,
		&img.ObjectKey,
		&img.ContentType,
		&img.SizeBytes,
		&img.CreatedAt,
		&img.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Image{}, ErrNotFound
		}
		return types.Image{}, err
	}
	return img, nil
}

// Upsert inserts or replaces the image record for its (entity, label)
// slot and returns the object key the record previously pointed at, so
// the caller can garbage-collect the old object. previousKey is empty
// on a fresh insert.
func (r *ImageRepository) Upsert(ctx context.Context, img types.Image) (saved types.Image, previousKey string, err error) {
	now := time.Now()
	img.CreatedAt = now
	img.UpdatedAt = now

	const query = `
		INSERT INTO images (entity_type, entity_id, label, object_key, content_type, size_bytes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (entity_type, entity_id, label) DO UPDATE
		SET object_key = EXCLUDED.object_key,
			content_type = EXCLUDED.content_type,
			size_bytes = EXCLUDED.size_bytes,
			updated_at = EXCLUDED.updated_at
		RETURNING id, created_at,
			(SELECT object_key FROM images old
			 WHERE old.entity_type = $1 AND old.entity_id = $2 AND old.label = $3)`
	var previous sql.NullString
	if err := r.db.QueryRowContext(
		ctx,
		query,
		img.EntityType,
		img.EntityID,
		img.Label,
		img.ObjectKey,
		img.ContentType,
		img.SizeBytes,
		img.CreatedAt,
		img.UpdatedAt,
	).Scan(&img.ID, &img.CreatedAt, &previous); err != nil {
		return types.Image{}, "", mapPQError(err)
	}
	if previous.String == img.ObjectKey {
		return img, "", nil
	}
	return img, previous.String, nil
}

func (r *ImageRepository) Delete(ctx context.Context, entityType string, entityID int, label string) (types.Image, error) {
	const query = `
		DELETE FROM images
		WHERE entity_type = $1 AND entity_id = $2 AND label = $3
		RETURNING id, entity_type, entity_id, label, object_key, content_type, size_bytes, created_at, updated_at`
	var img types.Image
	err := r.db.QueryRowContext(ctx, query, entityType, entityID, label).Scan(
		&img.ID,
		&img.EntityType,
		&img.EntityID,
		&img.Label,
		&img.ObjectKey,
		&img.ContentType,
		&img.SizeBytes,
		&img.CreatedAt,
		&img.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Image{}, ErrNotFound
		}
		return types.Image{}, err
	}
	return img, nil
}
