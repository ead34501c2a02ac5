package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/walletledger/internal/adapter/http/dto"
	"github.com/iho/walletledger/internal/domain"
	"github.com/iho/walletledger/internal/usecase"
)

type stubProfileService struct {
	getFn    func(ctx context.Context, userID string) (*domain.User, error)
	updateFn func(ctx context.Context, userID string, input usecase.UpdateProfileInput) (*domain.User, error)
}

func (s *stubProfileService) GetProfile(ctx context.Context, userID string) (*domain.User, error) {
	return s.getFn(ctx, userID)
}

func (s *stubProfileService) UpdateProfile(ctx context.Context, userID string, input usecase.UpdateProfileInput) (*domain.User, error) {
	return s.updateFn(ctx, userID, input)
}

func TestProfileHandlerGet(t *testing.T) {
	svc := &stubProfileService{
		getFn: func(_ context.Context, userID string) (*domain.User, error) {
			return &domain.User{ID: userID, Name: "Ada", Email: "ada@example.com"}, nil
		},
	}
	h := NewProfileHandler(svc)

	rec := httptest.NewRecorder()
	h.Get(rec, newRequest(http.MethodGet, "/api/v1/profile", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var profile dto.ProfileResponse
	decodeEnvelope(t, rec, &profile)
	assert.Equal(t, testUser, profile.ID)
	assert.Equal(t, "Ada", profile.Name)
}

func TestProfileHandlerGetMissing(t *testing.T) {
	svc := &stubProfileService{
		getFn: func(context.Context, string) (*domain.User, error) {
			return nil, domain.ErrUserNotFound
		},
	}
	h := NewProfileHandler(svc)

	rec := httptest.NewRecorder()
	h.Get(rec, newRequest(http.MethodGet, "/api/v1/profile", nil))

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProfileHandlerUpdate(t *testing.T) {
	svc := &stubProfileService{
		updateFn: func(_ context.Context, userID string, input usecase.UpdateProfileInput) (*domain.User, error) {
			require.NotNil(t, input.Name)
			assert.Nil(t, input.Email)
			return &domain.User{ID: userID, Name: *input.Name}, nil
		},
	}
	h := NewProfileHandler(svc)

	rec := httptest.NewRecorder()
	h.Update(rec, newRequest(http.MethodPatch, "/api/v1/profile", strings.NewReader(`{"name":"Grace"}`)))

	require.Equal(t, http.StatusOK, rec.Code)
	var profile dto.ProfileResponse
	decodeEnvelope(t, rec, &profile)
	assert.Equal(t, "Grace", profile.Name)
}
