package repositories

import (
	"errors"
	"time"

	"rentshare_backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrOfferNotFound = errors.New("offer not found")

type OfferRepository interface {
	Create(db *gorm.DB, offer *models.Offer) error
	FindByID(db *gorm.DB, id string) (*models.Offer, error)
	// FindByIDForUpdate must run inside a transaction.
	FindByIDForUpdate(db *gorm.DB, id string) (*models.Offer, error)
	UpdateStatus(db *gorm.DB, offerID string, status models.OfferStatus) error
	FindByOfferer(db *gorm.DB, userID string, page, pageSize int) ([]models.Offer, int64, error)
	FindReceived(db *gorm.DB, ownerID string, status models.OfferStatus, page, pageSize int) ([]models.Offer, int64, error)
	FindByListing(db *gorm.DB, listingID string) ([]models.Offer, error)
	RejectExpiredPending(db *gorm.DB, now time.Time) (int64, error)
}

type OfferRepositoryImpl struct{}

func NewOfferRepository() OfferRepository {
	return &OfferRepositoryImpl{}
}

func withOfferRelations(db *gorm.DB) *gorm.DB {
	return db.Preload("OfferedBy").Preload("Listing")
}

func (r *OfferRepositoryImpl) Create(db *gorm.DB, offer *models.Offer) error {
	return db.Omit("OfferedBy", "Listing").Create(offer).Error
}

func (r *OfferRepositoryImpl) FindByID(db *gorm.DB, id string) (*models.Offer, error) {
	var offer models.Offer
	if err := withOfferRelations(db).First(&offer, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOfferNotFound
		}
		return nil, err
	}
	return &offer, nil
}

// FindByIDForUpdate locks the offer row; relations are loaded with plain selects afterwards.
func (r *OfferRepositoryImpl) FindByIDForUpdate(db *gorm.DB, id string) (*models.Offer, error) {
	var offer models.Offer
	err := db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&offer, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOfferNotFound
		}
		return nil, err
	}
	if err := db.First(&offer.Listing, "id = ?", offer.ListingID).Error; err != nil {
		return nil, err
	}
	if err := db.First(&offer.OfferedBy, "id = ?", offer.OfferedByID).Error; err != nil {
		return nil, err
	}
	return &offer, nil
}

func (r *OfferRepositoryImpl) UpdateStatus(db *gorm.DB, offerID string, status models.OfferStatus) error {
	result := db.Model(&models.Offer{}).Where("id = ?", offerID).Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrOfferNotFound
	}
	return nil
}

func (r *OfferRepositoryImpl) FindByOfferer(db *gorm.DB, userID string, page, pageSize int) ([]models.Offer, int64, error) {
	query := db.Model(&models.Offer{}).Where("offered_by_id = ?", userID)
	return r.paged(query, page, pageSize)
}

func (r *OfferRepositoryImpl) FindReceived(db *gorm.DB, ownerID string, status models.OfferStatus, page, pageSize int) ([]models.Offer, int64, error) {
	query := db.Model(&models.Offer{}).
		Where("listing_id IN (?)", db.Model(&models.Listing{}).Select("id").Where("uploaded_by_id = ?", ownerID))
	if status != "" {
		query = query.Where("status = ?", status)
	}
	return r.paged(query, page, pageSize)
}

func (r *OfferRepositoryImpl) paged(query *gorm.DB, page, pageSize int) ([]models.Offer, int64, error) {
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var offers []models.Offer
	err := withOfferRelations(query).
		Order("created_at DESC").
		Scopes(Paginate(page, pageSize)).
		Find(&offers).Error
	return offers, total, err
}

// FindByListing returns offers ordered by schedule, as a calendar feed.
func (r *OfferRepositoryImpl) FindByListing(db *gorm.DB, listingID string) ([]models.Offer, error) {
	var offers []models.Offer
	err := withOfferRelations(db).
		Where("listing_id = ?", listingID).
		Order("scheduled_start ASC").
		Find(&offers).Error
	return offers, err
}

// RejectExpiredPending rejects pending offers whose window already ended.
func (r *OfferRepositoryImpl) RejectExpiredPending(db *gorm.DB, now time.Time) (int64, error) {
	result := db.Model(&models.Offer{}).
		Where("status = ? AND scheduled_end < ?", models.OfferStatusPending, now).
		Update("status", models.OfferStatusRejected)
	return result.RowsAffected, result.Error
}
