package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/bounce-app/apiserver/internal/services"
	"github.com/bounce-app/apiserver/types"
)

// MembershipHandler provides HTTP handlers for a club's memberships.
type MembershipHandler struct {
	membershipService *services.MembershipService
}

// NewMembershipHandler constructs a handler with the provided service.
func NewMembershipHandler(membershipService *services.MembershipService) *MembershipHandler {
	return &MembershipHandler{membershipService: membershipService}
}

// MembershipRouter registers membership routes. It is mounted under
// /clubs/{clubName}/members; every route requires authentication since
// even reads are limited to club members.
func MembershipRouter(r chi.Router, membershipService *services.MembershipService, authMiddleware func(http.Handler) http.Handler) {
	handler := NewMembershipHandler(membershipService)

	r.Use(authMiddleware)
	r.Get("/", handler.List)
	r.Post("/", handler.Create)
	r.Delete("/", handler.RemoveAll)
	r.Route("/{userID}", func(r chi.Router) {
		r.Put("/", handler.Update)
		r.Delete("/", handler.Remove)
	})
}

// List returns the club's roster, optionally narrowed with ?user_id=.
func (h *MembershipHandler) List(w http.ResponseWriter, r *http.Request) {
	actorID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	clubName, err := parseClubName(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	filterUserID := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("user_id")); raw != "" {
		filterUserID, err = strconv.Atoi(raw)
		if err != nil || filterUserID < 1 {
			writeError(w, http.StatusBadRequest, "invalid user_id")
			return
		}
	}

	records, err := h.membershipService.List(r.Context(), actorID, clubName, filterUserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, records)
}

// Create adds a member to the club.
func (h *MembershipHandler) Create(w http.ResponseWriter, r *http.Request) {
	actorID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	clubName, err := parseClubName(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req MembershipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	role, err := types.ParseRole(req.Role)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	membership, err := h.membershipService.Create(r.Context(), actorID, clubName, req.UserID, role, req.Position)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, membership)
}

// Update changes a member's role or position.
func (h *MembershipHandler) Update(w http.ResponseWriter, r *http.Request) {
	actorID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	clubName, err := parseClubName(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	targetID, err := parseUserID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req UpdateMembershipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	role, err := types.ParseRole(req.Role)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	membership, err := h.membershipService.Update(r.Context(), actorID, clubName, targetID, role, req.Position)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, membership)
}

// Remove deletes a single membership.
func (h *MembershipHandler) Remove(w http.ResponseWriter, r *http.Request) {
	actorID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	clubName, err := parseClubName(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	targetID, err := parseUserID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.membershipService.Remove(r.Context(), actorID, clubName, targetID); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// RemoveAll clears the club's roster except its Presidents.
func (h *MembershipHandler) RemoveAll(w http.ResponseWriter, r *http.Request) {
	actorID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	clubName, err := parseClubName(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	removed, err := h.membershipService.RemoveAll(r.Context(), actorID, clubName)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, RemoveAllResponse{Removed: removed})
}

type MembershipRequest struct {
	UserID   int    `json:"user_id"`
	Role     string `json:"role"`
	Position string `json:"position"`
}

type UpdateMembershipRequest struct {
	Role     string `json:"role"`
	Position string `json:"position"`
}

type RemoveAllResponse struct {
	Removed int `json:"removed"`
}
