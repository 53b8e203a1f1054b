package services

import (
	"errors"

	"rentshare_backend/internal/models"
	"rentshare_backend/internal/repositories"
	"rentshare_backend/internal/services/dto"
	"rentshare_backend/pkg/apperrors"

	"gorm.io/gorm"
)

type ReviewService interface {
	CreateReview(db *gorm.DB, reviewerID string, req *dto.CreateReviewRequest) (*dto.ReviewResponse, error)
	ListUserReviews(db *gorm.DB, userID string) ([]dto.ReviewResponse, error)
}

type ReviewServiceImpl struct {
	reviewRepo repositories.ReviewRepository
	userRepo   repositories.UserRepository
}

func NewReviewService(reviewRepo repositories.ReviewRepository, userRepo repositories.UserRepository) ReviewService {
	return &ReviewServiceImpl{
		reviewRepo: reviewRepo,
		userRepo:   userRepo,
	}
}

func (s *ReviewServiceImpl) CreateReview(db *gorm.DB, reviewerID string, req *dto.CreateReviewRequest) (*dto.ReviewResponse, error) {
	if req.UserID == reviewerID {
		return nil, apperrors.ErrSelfReview
	}
	if req.Rating < 1 || req.Rating > 5 {
		return nil, apperrors.FieldError("rating", "Ensure this value is between 1 and 5")
	}

	if _, err := s.userRepo.FindByID(db, req.UserID); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.FieldError("user_id", "User does not exist")
		}
		return nil, apperrors.InternalError(err)
	}

	review := &models.Review{
		ReviewerID:  reviewerID,
		UserID:      req.UserID,
		Rating:      req.Rating,
		Description: req.Description,
	}
	if err := s.reviewRepo.Create(db, review); err != nil {
		return nil, apperrors.InternalError(err)
	}

	ratings, err := s.reviewRepo.AverageRatings(db, []string{review.ReviewerID, review.UserID})
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return dto.NewReviewResponse(review, ratings), nil
}

func (s *ReviewServiceImpl) ListUserReviews(db *gorm.DB, userID string) ([]dto.ReviewResponse, error) {
	if !validUUID(userID) {
		return nil, apperrors.ErrUserNotFound
	}
	if _, err := s.userRepo.FindByID(db, userID); err != nil {
		return nil, handleRepoError(err)
	}

	reviews, err := s.reviewRepo.FindByUser(db, userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	ids := []string{userID}
	for i := range reviews {
		ids = append(ids, reviews[i].ReviewerID)
	}
	ratings, err := s.reviewRepo.AverageRatings(db, ids)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	items := make([]dto.ReviewResponse, 0, len(reviews))
	for i := range reviews {
		items = append(items, *dto.NewReviewResponse(&reviews[i], ratings))
	}
	return items, nil
}
