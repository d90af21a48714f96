package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/bounce-app/apiserver/internal/media"
	"github.com/bounce-app/apiserver/internal/store"
	"github.com/bounce-app/apiserver/types"
)

// MaxImageBytes caps the size of an uploaded image.
const MaxImageBytes = 8 << 20

var allowedImageTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/gif":  true,
	"image/webp": true,
}

// ImageRepository defines persistence operations for image metadata.
type ImageRepository interface {
	Get(ctx context.Context, entityType string, entityID int, label string) (types.Image, error)
	Upsert(ctx context.Context, img types.Image) (saved types.Image, previousKey string, err error)
	Delete(ctx context.Context, entityType string, entityID int, label string) (types.Image, error)
}

// ImageService stores user and club images: metadata in the image
// repository, bytes in object storage. Uploads to a user are
// self-service only; uploads to a club require Admin or better in that
// club. Reads are public.
type ImageService struct {
	images      ImageRepository
	memberships MembershipRepository
	media       *media.Store
}

func NewImageService(images ImageRepository, memberships MembershipRepository, mediaStore *media.Store) *ImageService {
	return &ImageService{
		images:      images,
		memberships: memberships,
		media:       mediaStore,
	}
}

// Enabled reports whether an object storage backend is configured.
func (s *ImageService) Enabled() bool {
	return s != nil && s.media != nil
}

// Upload stores an image for the given entity under the given label,
// replacing any previous image in that slot.
func (s *ImageService) Upload(ctx context.Context, actorID int, entityType string, entityID int, label string, r io.Reader, size int64, contentType string) (types.Image, error) {
	if !allowedImageTypes[contentType] {
		return types.Image{}, fmt.Errorf("%w: unsupported content type %q", ErrInvalidInput, contentType)
	}
	if size <= 0 || size > MaxImageBytes {
		return types.Image{}, fmt.Errorf("%w: image size must be between 1 byte and %d bytes", ErrInvalidInput, MaxImageBytes)
	}

	if err := s.authorize(ctx, actorID, entityType, entityID); err != nil {
		return types.Image{}, err
	}

	key := media.NewKey(entityType, entityID, label)
	if err := s.media.Put(ctx, key, r, size, contentType); err != nil {
		return types.Image{}, err
	}

	saved, previousKey, err := s.images.Upsert(ctx, types.Image{
		EntityType:  entityType,
		EntityID:    entityID,
		Label:       label,
		ObjectKey:   key,
		ContentType: contentType,
		SizeBytes:   size,
	})
	if err != nil {
		// The metadata write failed; drop the orphaned object.
		if cleanupErr := s.media.Delete(ctx, key); cleanupErr != nil {
			log.Printf("images: cleanup %s: %v", key, cleanupErr)
		}
		return types.Image{}, err
	}

	if previousKey != "" {
		if err := s.media.Delete(ctx, previousKey); err != nil {
			log.Printf("images: delete replaced object %s: %v", previousKey, err)
		}
	}
	return saved, nil
}

// Open streams the image stored for the entity under the label.
func (s *ImageService) Open(ctx context.Context, entityType string, entityID int, label string) (io.ReadCloser, types.Image, error) {
	img, err := s.images.Get(ctx, entityType, entityID, label)
	if err != nil {
		return nil, types.Image{}, err
	}
	reader, err := s.media.Open(ctx, img.ObjectKey)
	if err != nil {
		return nil, types.Image{}, err
	}
	return reader, img, nil
}

// Delete removes the image in the entity's label slot.
func (s *ImageService) Delete(ctx context.Context, actorID int, entityType string, entityID int, label string) error {
	if err := s.authorize(ctx, actorID, entityType, entityID); err != nil {
		return err
	}

	img, err := s.images.Delete(ctx, entityType, entityID, label)
	if err != nil {
		return err
	}
	if err := s.media.Delete(ctx, img.ObjectKey); err != nil {
		log.Printf("images: delete object %s: %v", img.ObjectKey, err)
	}
	return nil
}

func (s *ImageService) authorize(ctx context.Context, actorID int, entityType string, entityID int) error {
	switch entityType {
	case types.ImageEntityUser:
		if actorID != entityID {
			return ErrForbidden
		}
		return nil
	case types.ImageEntityClub:
		membership, err := s.memberships.Get(ctx, entityID, actorID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrForbidden
			}
			return err
		}
		if !membership.Role.AtLeast(types.RoleAdmin) {
			return ErrForbidden
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown entity type %q", ErrInvalidInput, entityType)
	}
}
