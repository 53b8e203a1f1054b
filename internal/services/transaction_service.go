package services

import (
	"context"
	"errors"

	"rentshare_backend/internal/auth"
	"rentshare_backend/internal/logger"
	"rentshare_backend/internal/models"
	"rentshare_backend/internal/repositories"
	"rentshare_backend/internal/services/dto"
	"rentshare_backend/pkg/apperrors"

	"gorm.io/gorm"
)

const msgOfferDoesNotExist = "Offer does not exist"

type TransactionService interface {
	CreateTransaction(ctx context.Context, db *gorm.DB, userID string, req *dto.CreateTransactionRequest) (*dto.TransactionResponse, error)
	GetTransaction(db *gorm.DB, userID, role, transactionID string) (*dto.TransactionResponse, error)
	ListMyTransactions(db *gorm.DB, userID string, page, pageSize int) (*dto.ListResponse[dto.TransactionResponse], error)
	CompleteTransaction(ctx context.Context, db *gorm.DB, userID, transactionID string) (*dto.TransactionResponse, error)
}

type TransactionServiceImpl struct {
	transactionRepo repositories.TransactionRepository
	offerRepo       repositories.OfferRepository
	reviewRepo      repositories.ReviewRepository
	inTx            Transactor
}

func NewTransactionService(
	transactionRepo repositories.TransactionRepository,
	offerRepo repositories.OfferRepository,
	reviewRepo repositories.ReviewRepository,
) TransactionService {
	return &TransactionServiceImpl{
		transactionRepo: transactionRepo,
		offerRepo:       offerRepo,
		reviewRepo:      reviewRepo,
		inTx:            GormTransactor,
	}
}

// CreateTransaction records payment for an accepted offer. The offer row is
// locked and moved to paid in the same database transaction as the insert.
func (s *TransactionServiceImpl) CreateTransaction(ctx context.Context, db *gorm.DB, userID string, req *dto.CreateTransactionRequest) (*dto.TransactionResponse, error) {
	if !validUUID(req.OfferID) {
		return nil, apperrors.FieldError("offer_id", msgOfferDoesNotExist)
	}
	status := req.Status
	if status == "" {
		status = models.TransactionStatusPending
	}

	txn := &models.Transaction{
		UserID:    userID,
		OfferID:   req.OfferID,
		Amount:    req.Amount.Float64(),
		Status:    status,
		PaymentID: req.PaymentID,
	}

	err := s.inTx(db, func(tx *gorm.DB) error {
		offer, err := s.offerRepo.FindByIDForUpdate(tx, req.OfferID)
		if err != nil {
			if errors.Is(err, repositories.ErrOfferNotFound) {
				return apperrors.FieldError("offer_id", msgOfferDoesNotExist)
			}
			return err
		}
		if offer.OfferedByID != userID {
			return apperrors.NewForbiddenError("Only the user who made the offer can pay for it")
		}

		exists, err := s.transactionRepo.ExistsForOffer(tx, offer.ID)
		if err != nil {
			return err
		}
		if exists {
			return apperrors.ErrInvalidStatus("offer", "This offer has already been paid")
		}

		if err := offer.MarkPaid(); err != nil {
			return apperrors.ErrInvalidStatus("offer", "Only accepted offers can be paid")
		}
		if err := s.offerRepo.UpdateStatus(tx, offer.ID, offer.Status); err != nil {
			return err
		}
		return s.transactionRepo.Create(tx, txn)
	})
	if err != nil {
		return nil, handleRepoError(err)
	}

	logger.CtxInfo(ctx, "transaction recorded", "transaction_id", txn.ID, "offer_id", txn.OfferID)
	return s.load(db, txn.ID)
}

// GetTransaction is visible to the payer, the listing owner and admins.
func (s *TransactionServiceImpl) GetTransaction(db *gorm.DB, userID, role, transactionID string) (*dto.TransactionResponse, error) {
	if !validUUID(transactionID) {
		return nil, apperrors.ErrTransactionNotFound
	}
	txn, err := s.transactionRepo.FindByID(db, transactionID)
	if err != nil {
		return nil, handleRepoError(err)
	}
	if txn.UserID != userID && !auth.IsOwnerOrAdmin(userID, role, txn.Offer.Listing.UploadedByID) {
		return nil, apperrors.ErrInsufficientPermissions
	}
	return s.respond(db, txn)
}

func (s *TransactionServiceImpl) ListMyTransactions(db *gorm.DB, userID string, page, pageSize int) (*dto.ListResponse[dto.TransactionResponse], error) {
	page, pageSize = repositories.NormalizePage(page, pageSize)
	txns, total, err := s.transactionRepo.FindByUser(db, userID, page, pageSize)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	rating, err := s.reviewRepo.AverageRating(db, userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	items := make([]dto.TransactionResponse, 0, len(txns))
	for i := range txns {
		items = append(items, *dto.NewTransactionResponse(&txns[i], rating))
	}
	return dto.NewListResponse(items, total, page, pageSize), nil
}

// CompleteTransaction moves a pending payment to completed; only the payer may do it.
func (s *TransactionServiceImpl) CompleteTransaction(ctx context.Context, db *gorm.DB, userID, transactionID string) (*dto.TransactionResponse, error) {
	if !validUUID(transactionID) {
		return nil, apperrors.ErrTransactionNotFound
	}

	err := s.inTx(db, func(tx *gorm.DB) error {
		txn, err := s.transactionRepo.FindByID(tx, transactionID)
		if err != nil {
			return err
		}
		if txn.UserID != userID {
			return apperrors.ErrInsufficientPermissions
		}
		if !txn.Complete() {
			return apperrors.ErrInvalidStatus("transaction", "Only pending transactions can be completed")
		}
		return s.transactionRepo.UpdateStatus(tx, txn.ID, txn.Status)
	})
	if err != nil {
		return nil, handleRepoError(err)
	}

	logger.CtxInfo(ctx, "transaction completed", "transaction_id", transactionID)
	return s.load(db, transactionID)
}

func (s *TransactionServiceImpl) load(db *gorm.DB, transactionID string) (*dto.TransactionResponse, error) {
	txn, err := s.transactionRepo.FindByID(db, transactionID)
	if err != nil {
		return nil, handleRepoError(err)
	}
	return s.respond(db, txn)
}

func (s *TransactionServiceImpl) respond(db *gorm.DB, txn *models.Transaction) (*dto.TransactionResponse, error) {
	rating, err := s.reviewRepo.AverageRating(db, txn.UserID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return dto.NewTransactionResponse(txn, rating), nil
}
