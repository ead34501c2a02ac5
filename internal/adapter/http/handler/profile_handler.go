package handler

import (
	"context"
	"net/http"

	"github.com/iho/walletledger/internal/adapter/http/dto"
	"github.com/iho/walletledger/internal/domain"
	"github.com/iho/walletledger/internal/usecase"
)

// ProfileService defines the behavior needed by ProfileHandler.
type ProfileService interface {
	GetProfile(ctx context.Context, userID string) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID string, input usecase.UpdateProfileInput) (*domain.User, error)
}

// ProfileHandler serves the caller's profile.
type ProfileHandler struct {
	profiles ProfileService
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(profiles ProfileService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// Get returns the caller's profile.
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, err := h.profiles.GetProfile(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeOK(w, http.StatusOK, dto.ProfileFromDomain(user))
}

// Update patches the caller's profile, creating it on first use.
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateProfileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	user, err := h.profiles.UpdateProfile(r.Context(), userID(r), req.ToUseCaseInput())
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeOK(w, http.StatusOK, dto.ProfileFromDomain(user))
}
