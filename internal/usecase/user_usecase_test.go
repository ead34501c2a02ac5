package usecase_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/iho/walletledger/internal/domain"
	"github.com/iho/walletledger/internal/usecase"
	"github.com/iho/walletledger/internal/usecase/mocks"
)

func TestUserUseCase_UpdateProfileCreatesOnFirstUpdate(t *testing.T) {
	repo := mocks.NewMockUserRepository()
	uc := usecase.NewUserUseCase(repo, nil)

	user, err := uc.UpdateProfile(context.Background(), testUser, usecase.UpdateProfileInput{
		Name:  strPtr("  Ada  "),
		Email: strPtr("ada@example.com"),
	})

	require.NoError(t, err)
	assert.Equal(t, "Ada", user.Name)
	assert.False(t, user.CreatedAt.IsZero())

	stored, err := uc.GetProfile(context.Background(), testUser)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", stored.Email)
}

func TestUserUseCase_UpdateProfileMerges(t *testing.T) {
	ctrl := gomock.NewController(t)
	uploader := mocks.NewMockAssetUploader(ctrl)
	repo := mocks.NewMockUserRepository()
	require.NoError(t, repo.Upsert(context.Background(), &domain.User{ID: testUser, Name: "Ada", Email: "ada@example.com"}))

	uploader.EXPECT().
		Upload(gomock.Any(), testImageURI, usecase.UserImageFolder).
		Return("https://res.cloudinary.com/demo/users/me.jpg", nil)

	uc := usecase.NewUserUseCase(repo, uploader)

	user, err := uc.UpdateProfile(context.Background(), testUser, usecase.UpdateProfileInput{Image: strPtr(testImageURI)})

	require.NoError(t, err)
	assert.Equal(t, "Ada", user.Name)
	assert.Equal(t, "ada@example.com", user.Email)
	assert.Equal(t, "https://res.cloudinary.com/demo/users/me.jpg", user.Image)
}

func TestUserUseCase_UpdateProfileErrors(t *testing.T) {
	tests := []struct {
		name    string
		userID  string
		input   usecase.UpdateProfileInput
		setup   func(*mocks.MockUserRepository)
		wantErr error
	}{
		{
			name:    "missing user",
			input:   usecase.UpdateProfileInput{Name: strPtr("Ada")},
			wantErr: domain.ErrUserIDRequired,
		},
		{
			name:    "blank name",
			userID:  testUser,
			input:   usecase.UpdateProfileInput{Name: strPtr(" ")},
			wantErr: usecase.ErrInvalidUserName,
		},
		{
			name:    "name too long",
			userID:  testUser,
			input:   usecase.UpdateProfileInput{Name: strPtr(strings.Repeat("a", usecase.MaxUserNameLength+1))},
			wantErr: usecase.ErrInvalidUserName,
		},
		{
			name:   "store failure",
			userID: testUser,
			input:  usecase.UpdateProfileInput{Name: strPtr("Ada")},
			setup: func(repo *mocks.MockUserRepository) {
				repo.UpsertFunc = func(ctx context.Context, user *domain.User) error {
					return errors.New("connection refused")
				}
			},
			wantErr: domain.ErrUpstream,
		},
		{
			name:    "image upload not configured",
			userID:  testUser,
			input:   usecase.UpdateProfileInput{Image: strPtr(testImageURI)},
			wantErr: domain.ErrUpstream,
		},
		{
			name:    "server path image",
			userID:  testUser,
			input:   usecase.UpdateProfileInput{Image: strPtr("/etc/ssl/private/key.png")},
			wantErr: domain.ErrUnsupportedImage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := mocks.NewMockUserRepository()
			if tt.setup != nil {
				tt.setup(repo)
			}
			uc := usecase.NewUserUseCase(repo, nil)

			_, err := uc.UpdateProfile(context.Background(), tt.userID, tt.input)

			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestUserUseCase_GetProfileNotFound(t *testing.T) {
	uc := usecase.NewUserUseCase(mocks.NewMockUserRepository(), nil)

	_, err := uc.GetProfile(context.Background(), "nobody")

	require.ErrorIs(t, err, domain.ErrUserNotFound)
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
}
