package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/bounce-app/apiserver/internal/services"
	"github.com/bounce-app/apiserver/types"
)

const (
	maxImageMultipartMemory = 8 << 20
	formFieldImage          = "image"
)

// ImageHandler provides HTTP handlers for user and club images.
type ImageHandler struct {
	imageService *services.ImageService
}

// NewImageHandler constructs a handler with the provided service.
func NewImageHandler(imageService *services.ImageService) *ImageHandler {
	return &ImageHandler{imageService: imageService}
}

// ImageRouter registers image routes on the given router. Reads are
// public; uploads and deletes require authentication.
func ImageRouter(r chi.Router, imageService *services.ImageService, authMiddleware func(http.Handler) http.Handler) {
	handler := NewImageHandler(imageService)

	r.Route("/{entityType}/{entityID}/{label}", func(r chi.Router) {
		r.Get("/", handler.Get)
		r.With(authMiddleware).Post("/", handler.Upload)
		r.With(authMiddleware).Delete("/", handler.Delete)
	})
}

// Upload stores the multipart "image" file for the entity.
func (h *ImageHandler) Upload(w http.ResponseWriter, r *http.Request) {
	actorID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	entityType, entityID, label, err := parseImagePath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := r.ParseMultipartForm(maxImageMultipartMemory); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile(formFieldImage)
	if err != nil {
		writeError(w, http.StatusBadRequest, "image file is required")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	img, err := h.imageService.Upload(r.Context(), actorID, entityType, entityID, label, file, header.Size, contentType)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, img)
}

// Get streams the stored image.
func (h *ImageHandler) Get(w http.ResponseWriter, r *http.Request) {
	entityType, entityID, label, err := parseImagePath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	reader, img, err := h.imageService.Open(r.Context(), entityType, entityID, label)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	defer reader.Close()

	w.Header().Set("Content-Type", img.ContentType)
	w.Header().Set("Content-Length", strconv.FormatInt(img.SizeBytes, 10))
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, reader)
}

// Delete removes the stored image.
func (h *ImageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actorID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	entityType, entityID, label, err := parseImagePath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.imageService.Delete(r.Context(), actorID, entityType, entityID, label); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func parseImagePath(r *http.Request) (entityType string, entityID int, label string, err error) {
	entityType = chi.URLParam(r, "entityType")
	if entityType != types.ImageEntityUser && entityType != types.ImageEntityClub {
		return "", 0, "", fmt.Errorf("invalid entity type %q", entityType)
	}

	entityID, err = strconv.Atoi(chi.URLParam(r, "entityID"))
	if err != nil || entityID < 1 {
		return "", 0, "", errors.New("invalid entity id")
	}

	label = strings.TrimSpace(chi.URLParam(r, "label"))
	if label == "" {
		return "", 0, "", errors.New("invalid label")
	}
	return entityType, entityID, label, nil
}
