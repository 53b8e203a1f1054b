package services

import (
	"context"
	"mime/multipart"
	"testing"

	"rentshare_backend/internal/auth"
	"rentshare_backend/internal/models"
	"rentshare_backend/internal/services/dto"
	"rentshare_backend/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetUser_AverageRating(t *testing.T) {
	f := newFixture()
	user := f.m.addUser("user1@gmail.com", "")
	reviewer := f.m.addUser("user2@gmail.com", "")

	resp, err := f.users.GetUser(nil, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, resp.AverageRating)

	_, err = f.reviews.CreateReview(nil, reviewer.ID, &dto.CreateReviewRequest{UserID: user.ID, Rating: 4})
	require.NoError(t, err)
	_, err = f.reviews.CreateReview(nil, reviewer.ID, &dto.CreateReviewRequest{UserID: user.ID, Rating: 5})
	require.NoError(t, err)

	resp, err = f.users.GetUser(nil, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 4.5, resp.AverageRating)

	third := f.m.addUser("user3@gmail.com", "")
	_, err = f.reviews.CreateReview(nil, third.ID, &dto.CreateReviewRequest{UserID: user.ID, Rating: 4})
	require.NoError(t, err)

	resp, err = f.users.GetUser(nil, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 4.33, resp.AverageRating)
}

func TestGetUser_NotFound(t *testing.T) {
	f := newFixture()
	_, err := f.users.GetUser(nil, "nope")
	assert.Equal(t, apperrors.ErrUserNotFound, err)
}

func TestUpdateMe(t *testing.T) {
	f := newFixture()
	user := f.m.addUser("user1@gmail.com", "91234567")
	user.AvatarKey = "avatars/old.jpg"
	f.m.refreshTokens["jti-1"] = newRefreshToken(user.ID, "jti-1")

	username := "renamed"
	password := "anotherpassword"
	resp, err := f.users.UpdateMe(context.Background(), nil, user.ID, &dto.UpdateUserRequest{
		Username:    &username,
		NewPassword: &password,
		Avatar:      &multipart.FileHeader{Filename: "me.png"},
	})
	require.NoError(t, err)

	assert.Equal(t, "renamed", resp.Username)
	assert.Equal(t, "91234567", resp.PhoneNumber)
	require.NotNil(t, resp.Avatar)
	assert.True(t, auth.CheckPasswordHash(password, f.m.users[user.ID].PasswordHash))
	assert.Empty(t, f.m.refreshTokens)
	assert.Equal(t, []string{"avatars/old.jpg"}, f.media.deleted)
}

func TestCreateReview_Rules(t *testing.T) {
	f := newFixture()
	user := f.m.addUser("user1@gmail.com", "")
	reviewer := f.m.addUser("user2@gmail.com", "")

	_, err := f.reviews.CreateReview(nil, user.ID, &dto.CreateReviewRequest{UserID: user.ID, Rating: 5})
	assert.Equal(t, apperrors.ErrSelfReview, err)

	_, err = f.reviews.CreateReview(nil, reviewer.ID, &dto.CreateReviewRequest{UserID: user.ID, Rating: 6})
	assert.Equal(t, apperrors.CodeValidationFailed, requireAppError(t, err).Code)

	resp, err := f.reviews.CreateReview(nil, reviewer.ID, &dto.CreateReviewRequest{UserID: user.ID, Rating: 5, Description: "Friendly"})
	require.NoError(t, err)
	assert.Equal(t, reviewer.ID, resp.Reviewer.ID)
	assert.Equal(t, 5.0, resp.User.AverageRating)
	assert.Equal(t, 0.0, resp.Reviewer.AverageRating)

	list, err := f.reviews.ListUserReviews(nil, user.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Friendly", list[0].Description)
}

func TestListUsers_RoleFilter(t *testing.T) {
	f := newFixture()
	f.m.addUser("user1@gmail.com", "")
	admin := f.m.addUser("admin@gmail.com", "")
	admin.Role = models.UserRoleAdmin

	resp, err := f.users.ListUsers(nil, &dto.AdminUserFilter{Role: models.UserRoleAdmin}, 1, 20)
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, admin.ID, resp.Results[0].ID)
}
