package dto

import (
	"time"

	"rentshare_backend/internal/models"
)

type CreateReviewRequest struct {
	UserID      string `json:"user_id" validate:"required,uuid"`
	Rating      int    `json:"rating" validate:"required,min=1,max=5"`
	Description string `json:"description" validate:"max=2000"`
}

type ReviewResponse struct {
	ID          string        `json:"id"`
	Reviewer    *UserResponse `json:"reviewer"`
	User        *UserResponse `json:"user"`
	Rating      int           `json:"rating"`
	Description string        `json:"description"`
	CreatedAt   time.Time     `json:"created_at"`
}

// NewReviewResponse takes the average ratings of both parties keyed by user id.
func NewReviewResponse(r *models.Review, ratings map[string]float64) *ReviewResponse {
	return &ReviewResponse{
		ID:          r.ID,
		Reviewer:    NewUserResponse(&r.Reviewer, ratings[r.ReviewerID]),
		User:        NewUserResponse(&r.User, ratings[r.UserID]),
		Rating:      r.Rating,
		Description: r.Description,
		CreatedAt:   r.CreatedAt,
	}
}
