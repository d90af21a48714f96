package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/bounce-app/apiserver/internal/services"
	"github.com/bounce-app/apiserver/internal/store"
	"github.com/bounce-app/apiserver/types"
)

// ClubHandler provides HTTP handlers for clubs.
type ClubHandler struct {
	clubService *services.ClubService
}

// NewClubHandler constructs a handler with the provided service.
func NewClubHandler(clubService *services.ClubService) *ClubHandler {
	return &ClubHandler{clubService: clubService}
}

// ClubRouter registers club routes, including the nested membership
// routes, on the given router.
func ClubRouter(
	r chi.Router,
	clubService *services.ClubService,
	membershipService *services.MembershipService,
	authMiddleware func(http.Handler) http.Handler,
) {
	handler := NewClubHandler(clubService)

	r.With(authMiddleware).Post("/", handler.Create)
	r.Route("/{clubName}", func(r chi.Router) {
		r.Get("/", handler.Get)
		r.With(authMiddleware).Put("/", handler.Update)
		r.With(authMiddleware).Delete("/", handler.Delete)
		r.Route("/members", func(r chi.Router) {
			MembershipRouter(r, membershipService, authMiddleware)
		})
	})
}

// Create makes a new club; the authenticated caller becomes its first
// President.
func (h *ClubHandler) Create(w http.ResponseWriter, r *http.Request) {
	actorID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req ClubRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	club, err := h.clubService.Create(r.Context(), actorID, types.Club{
		Name:         req.Name,
		Description:  req.Description,
		WebsiteURL:   req.WebsiteURL,
		FacebookURL:  req.FacebookURL,
		InstagramURL: req.InstagramURL,
		TwitterURL:   req.TwitterURL,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, club)
}

// Get returns the club with the given name.
func (h *ClubHandler) Get(w http.ResponseWriter, r *http.Request) {
	name, err := parseClubName(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	club, err := h.clubService.GetByName(r.Context(), name)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "no such club")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to fetch club")
		return
	}

	writeJSON(w, http.StatusOK, club)
}

// Update edits the club. Requires Admin or better in the club.
func (h *ClubHandler) Update(w http.ResponseWriter, r *http.Request) {
	actorID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	name, err := parseClubName(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req UpdateClubRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	club, err := h.clubService.Update(r.Context(), actorID, name, services.ClubUpdate{
		Name:         req.Name,
		Description:  req.Description,
		WebsiteURL:   req.WebsiteURL,
		FacebookURL:  req.FacebookURL,
		InstagramURL: req.InstagramURL,
		TwitterURL:   req.TwitterURL,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, club)
}

// Delete removes the club. Presidents only.
func (h *ClubHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actorID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	name, err := parseClubName(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.clubService.Delete(r.Context(), actorID, name); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type ClubRequest struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	WebsiteURL   string `json:"website_url"`
	FacebookURL  string `json:"facebook_url"`
	InstagramURL string `json:"instagram_url"`
	TwitterURL   string `json:"twitter_url"`
}

type UpdateClubRequest struct {
	Name         *string `json:"name"`
	Description  *string `json:"description"`
	WebsiteURL   *string `json:"website_url"`
	FacebookURL  *string `json:"facebook_url"`
	InstagramURL *string `json:"instagram_url"`
	TwitterURL   *string `json:"twitter_url"`
}

func parseClubName(r *http.Request) (string, error) {
	name := strings.TrimSpace(chi.URLParam(r, "clubName"))
	if name == "" {
		return "", errors.New("invalid club name")
	}
	return name, nil
}
