package repositories

import (
	"rentshare_backend/internal/models"

	"gorm.io/gorm"
)

type ReviewRepository interface {
	Create(db *gorm.DB, review *models.Review) error
	FindByUser(db *gorm.DB, userID string) ([]models.Review, error)
	// AverageRating is 0 for a user without reviews.
	AverageRating(db *gorm.DB, userID string) (float64, error)
	AverageRatings(db *gorm.DB, userIDs []string) (map[string]float64, error)
}

type ReviewRepositoryImpl struct{}

func NewReviewRepository() ReviewRepository {
	return &ReviewRepositoryImpl{}
}

func (r *ReviewRepositoryImpl) Create(db *gorm.DB, review *models.Review) error {
	if err := db.Omit("Reviewer", "User").Create(review).Error; err != nil {
		return err
	}
	return db.Preload("Reviewer").Preload("User").First(review, "id = ?", review.ID).Error
}

func (r *ReviewRepositoryImpl) FindByUser(db *gorm.DB, userID string) ([]models.Review, error) {
	var reviews []models.Review
	err := db.Preload("Reviewer").Preload("User").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&reviews).Error
	return reviews, err
}

func (r *ReviewRepositoryImpl) AverageRating(db *gorm.DB, userID string) (float64, error) {
	var avg float64
	err := db.Model(&models.Review{}).
		Select("COALESCE(AVG(rating), 0)").
		Where("user_id = ?", userID).
		Scan(&avg).Error
	return avg, err
}

// AverageRatings omits users without reviews; callers treat a missing key as 0.
func (r *ReviewRepositoryImpl) AverageRatings(db *gorm.DB, userIDs []string) (map[string]float64, error) {
	result := make(map[string]float64, len(userIDs))
	if len(userIDs) == 0 {
		return result, nil
	}

	var rows []struct {
		UserID string
		Avg    float64
	}
	err := db.Model(&models.Review{}).
		Select("user_id, AVG(rating) AS avg").
		Where("user_id IN ?", userIDs).
		Group("user_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		result[row.UserID] = row.Avg
	}
	return result, nil
}
