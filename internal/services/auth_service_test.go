package services

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"rentshare_backend/internal/auth"
	"rentshare_backend/internal/services/dto"
	"rentshare_backend/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResetPassword_Branches(t *testing.T) {
	f := newFixture()
	f.m.addUser("user1@gmail.com", "91234567")
	f.m.addUser("user2@gmail.com", "98765432")

	tests := []struct {
		name  string
		email string
		phone string
		want  string
	}{
		{"neither found", "nobody@gmail.com", "00000000", "Both email and phone number not found"},
		{"email found, phone missing", "user1@gmail.com", "00000000", "Phone number not found"},
		{"phone found, email missing", "nobody@gmail.com", "91234567", "Email not found"},
		{"both found on different accounts", "user1@gmail.com", "98765432", "Phone number not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.auth.ResetPassword(context.Background(), nil, &dto.ResetPasswordRequest{
				Email:       tt.email,
				PhoneNumber: tt.phone,
				NewPassword: "newpassword",
			})
			requireDetails(t, err, apperrors.NonFieldKey, tt.want)
		})
	}
}

func TestResetPassword_Success(t *testing.T) {
	f := newFixture()
	user := f.m.addUser("user1@gmail.com", "91234567")
	f.m.refreshTokens["jti-1"] = newRefreshToken(user.ID, "jti-1")

	err := f.auth.ResetPassword(context.Background(), nil, &dto.ResetPasswordRequest{
		Email:       "USER1@gmail.com",
		PhoneNumber: "91234567",
		NewPassword: "brandnewpassword",
	})
	require.NoError(t, err)

	assert.True(t, auth.CheckPasswordHash("brandnewpassword", f.m.users[user.ID].PasswordHash))
	assert.Empty(t, f.m.refreshTokens)
}

func TestResetPassword_SharedPhone(t *testing.T) {
	f := newFixture()
	first := f.m.addUser("a@gmail.com", "91234567")
	second := f.m.addUser("b@gmail.com", "91234567")

	// map order in the fake repo varies, so repeat to hit both lookup orders
	for i := 0; i < 20; i++ {
		for _, u := range []struct {
			email string
			id    string
		}{{"a@gmail.com", first.ID}, {"b@gmail.com", second.ID}} {
			err := f.auth.ResetPassword(context.Background(), nil, &dto.ResetPasswordRequest{
				Email:       u.email,
				PhoneNumber: "91234567",
				NewPassword: "brandnewpassword",
			})
			require.NoError(t, err, u.email)
			assert.True(t, auth.CheckPasswordHash("brandnewpassword", f.m.users[u.id].PasswordHash))
		}
	}
}

func TestLogin_Errors(t *testing.T) {
	f := newFixture()
	user := f.m.addUser("user1@gmail.com", "91234567")
	hash, err := auth.HashPassword("password")
	require.NoError(t, err)
	user.PasswordHash = hash

	_, err = f.auth.Login(nil, &dto.TokenRequest{Email: "missing@gmail.com", Password: "password"})
	requireDetails(t, err, "email", "No account found with this email address")

	_, err = f.auth.Login(nil, &dto.TokenRequest{Email: "user1@gmail.com", Password: "wrong"})
	requireDetails(t, err, "password", "Incorrect password")
}

func TestLoginRefreshLogout(t *testing.T) {
	auth.Configure("service-test-secret", time.Minute, time.Hour)
	f := newFixture()
	user := f.m.addUser("user1@gmail.com", "91234567")
	hash, err := auth.HashPassword("password")
	require.NoError(t, err)
	user.PasswordHash = hash

	tokens, err := f.auth.Login(nil, &dto.TokenRequest{Email: "user1@gmail.com", Password: "password"})
	require.NoError(t, err)
	assert.NotEmpty(t, tokens.Access)
	assert.Equal(t, user.ID, tokens.User.ID)
	assert.Equal(t, 0.0, tokens.User.AverageRating)
	require.Len(t, f.m.refreshTokens, 1)

	rotated, err := f.auth.Refresh(nil, &dto.RefreshRequest{Refresh: tokens.Refresh})
	require.NoError(t, err)
	require.Len(t, f.m.refreshTokens, 1)

	// the old refresh token was revoked by the rotation
	_, err = f.auth.Refresh(nil, &dto.RefreshRequest{Refresh: tokens.Refresh})
	assert.Equal(t, http.StatusUnauthorized, requireAppError(t, err).HTTPCode)

	require.NoError(t, f.auth.Logout(nil, rotated.Refresh))
	assert.Empty(t, f.m.refreshTokens)
	require.NoError(t, f.auth.Logout(nil, rotated.Refresh))
}

func TestRegister_DuplicateEmail(t *testing.T) {
	f := newFixture()
	f.m.addUser("user1@gmail.com", "91234567")

	_, err := f.auth.Register(context.Background(), nil, &dto.RegisterRequest{
		Email:    "User1@gmail.com",
		Username: "someone",
		Password: "password",
	})
	assert.Equal(t, apperrors.CodeAlreadyExists, requireAppError(t, err).Code)

	resp, err := f.auth.Register(context.Background(), nil, &dto.RegisterRequest{
		Email:    "user3@gmail.com",
		Username: "user3",
		Password: "password",
	})
	require.NoError(t, err)
	assert.Equal(t, "user3", resp.Username)
	assert.Nil(t, resp.Avatar)
}

func TestPasswordLimits(t *testing.T) {
	f := newFixture()
	user := f.m.addUser("user1@gmail.com", "91234567")
	tooLong := strings.Repeat("p", 100)

	_, err := f.auth.Register(context.Background(), nil, &dto.RegisterRequest{
		Email:    "user2@gmail.com",
		Username: "user2",
		Password: tooLong,
	})
	requireDetails(t, err, "password", "Ensure this field has no more than 72 bytes")

	err = f.auth.ResetPassword(context.Background(), nil, &dto.ResetPasswordRequest{
		Email:       "user1@gmail.com",
		PhoneNumber: "91234567",
		NewPassword: tooLong,
	})
	requireDetails(t, err, "new_password", "Ensure this field has no more than 72 bytes")

	err = f.auth.ResetPassword(context.Background(), nil, &dto.ResetPasswordRequest{
		Email:       "user1@gmail.com",
		PhoneNumber: "91234567",
		NewPassword: "short",
	})
	requireDetails(t, err, "new_password", "Ensure this field has at least 8 characters")

	_, err = f.users.UpdateMe(context.Background(), nil, user.ID, &dto.UpdateUserRequest{NewPassword: &tooLong})
	requireDetails(t, err, "new_password", "Ensure this field has no more than 72 bytes")
}

func TestResetPassword_UnknownAccountWithShortPassword(t *testing.T) {
	f := newFixture()

	err := f.auth.ResetPassword(context.Background(), nil, &dto.ResetPasswordRequest{
		Email:       "nobody@gmail.com",
		PhoneNumber: "00000000",
		NewPassword: "short",
	})
	requireDetails(t, err, apperrors.NonFieldKey, "Both email and phone number not found")
}
