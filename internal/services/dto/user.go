package dto

import (
	"math"
	"mime/multipart"
	"time"

	"rentshare_backend/internal/models"
)

type RegisterRequest struct {
	Email       string                `json:"email" form:"email" validate:"required,email,max=254"`
	Username    string                `json:"username" form:"username" validate:"required,max=150"`
	PhoneNumber string                `json:"phone_number" form:"phone_number" validate:"omitempty,max=15,numeric"`
	Password    string                `json:"password" form:"password" validate:"required,min=8,password-bytes"`
	Biography   string                `json:"biography" form:"biography" validate:"max=2000"`
	Avatar      *multipart.FileHeader `json:"-" form:"avatar"`
}

// UpdateUserRequest is a partial update; nil fields are left untouched.
type UpdateUserRequest struct {
	Username    *string               `json:"username" form:"username" validate:"omitempty,min=1,max=150"`
	PhoneNumber *string               `json:"phone_number" form:"phone_number" validate:"omitempty,max=15,numeric"`
	Biography   *string               `json:"biography" form:"biography" validate:"omitempty,max=2000"`
	NewPassword *string               `json:"new_password" form:"new_password" validate:"omitempty,min=8,password-bytes"`
	Avatar      *multipart.FileHeader `json:"-" form:"avatar"`
}

type AdminUserFilter struct {
	Role   models.UserRole `form:"role" validate:"omitempty,is-user-role"`
	Search string          `form:"search" validate:"max=100"`
}

type UserResponse struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	Username      string    `json:"username"`
	PhoneNumber   string    `json:"phone_number"`
	Avatar        *string   `json:"avatar"`
	Biography     string    `json:"biography"`
	AverageRating float64   `json:"average_rating"`
	CreatedAt     time.Time `json:"created_at"`
}

// UserBrief is the compact user shape nested in offers.
type UserBrief struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// NewUserResponse rounds averageRating to two decimals.
func NewUserResponse(u *models.User, averageRating float64) *UserResponse {
	resp := &UserResponse{
		ID:            u.ID,
		Email:         u.Email,
		Username:      u.Username,
		PhoneNumber:   u.PhoneNumber,
		Biography:     u.Biography,
		AverageRating: math.Round(averageRating*100) / 100,
		CreatedAt:     u.CreatedAt,
	}
	if u.Avatar != "" {
		avatar := u.Avatar
		resp.Avatar = &avatar
	}
	return resp
}

func NewUserBrief(u *models.User) UserBrief {
	return UserBrief{ID: u.ID, Username: u.Username, Email: u.Email}
}
