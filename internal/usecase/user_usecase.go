package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/walletledger/internal/domain"
)

// Profile limits.
const (
	MaxUserNameLength = 100
)

// ErrInvalidUserName is returned for blank or oversized profile names.
var ErrInvalidUserName = fmt.Errorf("%w: name must be 1-%d characters", domain.ErrValidation, MaxUserNameLength)

// UserUseCase handles profile operations
type UserUseCase struct {
	userRepo UserRepository
	uploader AssetUploader
}

// NewUserUseCase creates a new user use case
func NewUserUseCase(userRepo UserRepository, uploader AssetUploader) *UserUseCase {
	return &UserUseCase{
		userRepo: userRepo,
		uploader: uploader,
	}
}

// UpdateProfileInput represents a profile patch; nil fields are kept.
type UpdateProfileInput struct {
	Name  *string
	Email *string
	Image *string
}

// GetProfile retrieves the profile of userID.
func (uc *UserUseCase) GetProfile(ctx context.Context, userID string) (*domain.User, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, domain.ErrUserIDRequired
	}

	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, domain.Upstream(err)
	}

	return user, nil
}

// UpdateProfile merges input into the profile, uploading a local image into
// the users folder first. The profile is created on first update.
func (uc *UserUseCase) UpdateProfile(ctx context.Context, userID string, input UpdateProfileInput) (*domain.User, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, domain.ErrUserIDRequired
	}

	now := time.Now().UTC()

	user, err := uc.userRepo.GetByID(ctx, userID)
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		user = &domain.User{ID: userID, CreatedAt: now}
	case err != nil:
		return nil, domain.Upstream(err)
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" || len(name) > MaxUserNameLength {
			return nil, ErrInvalidUserName
		}
		user.Name = name
	}

	if input.Email != nil {
		user.Email = strings.TrimSpace(*input.Email)
	}

	if input.Image != nil {
		resolved, err := resolveImage(ctx, uc.uploader, *input.Image, UserImageFolder)
		if err != nil {
			return nil, err
		}
		user.Image = resolved
	}

	user.UpdatedAt = now

	if err := uc.userRepo.Upsert(ctx, user); err != nil {
		return nil, domain.Upstream(err)
	}

	zerolog.Ctx(ctx).Info().Str("user_id", user.ID).Msg("profile updated")

	return user, nil
}
