package repositories

import (
	"errors"

	"rentshare_backend/internal/models"

	"gorm.io/gorm"
)

var ErrTransactionNotFound = errors.New("transaction not found")

type TransactionRepository interface {
	Create(db *gorm.DB, txn *models.Transaction) error
	FindByID(db *gorm.DB, id string) (*models.Transaction, error)
	FindByUser(db *gorm.DB, userID string, page, pageSize int) ([]models.Transaction, int64, error)
	ExistsForOffer(db *gorm.DB, offerID string) (bool, error)
	UpdateStatus(db *gorm.DB, id string, status models.TransactionStatus) error
}

type TransactionRepositoryImpl struct{}

func NewTransactionRepository() TransactionRepository {
	return &TransactionRepositoryImpl{}
}

func withTransactionRelations(db *gorm.DB) *gorm.DB {
	return db.Preload("User").Preload("Offer.OfferedBy").Preload("Offer.Listing")
}

func (r *TransactionRepositoryImpl) Create(db *gorm.DB, txn *models.Transaction) error {
	return db.Omit("User", "Offer").Create(txn).Error
}

func (r *TransactionRepositoryImpl) FindByID(db *gorm.DB, id string) (*models.Transaction, error) {
	var txn models.Transaction
	if err := withTransactionRelations(db).First(&txn, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	return &txn, nil
}

func (r *TransactionRepositoryImpl) FindByUser(db *gorm.DB, userID string, page, pageSize int) ([]models.Transaction, int64, error) {
	query := db.Model(&models.Transaction{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var txns []models.Transaction
	err := withTransactionRelations(query).
		Order("created_at DESC").
		Scopes(Paginate(page, pageSize)).
		Find(&txns).Error
	return txns, total, err
}

func (r *TransactionRepositoryImpl) ExistsForOffer(db *gorm.DB, offerID string) (bool, error) {
	var count int64
	err := db.Model(&models.Transaction{}).Where("offer_id = ?", offerID).Count(&count).Error
	return count > 0, err
}

func (r *TransactionRepositoryImpl) UpdateStatus(db *gorm.DB, id string, status models.TransactionStatus) error {
	result := db.Model(&models.Transaction{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTransactionNotFound
	}
	return nil
}
