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

const (
	msgListingDoesNotExist = "Listing does not exist"
	msgEndBeforeStart      = "End time must be after start time"
	msgNoRateForTimeUnit   = "Listing has no rate for this time unit"
)

type OfferService interface {
	CreateOffer(db *gorm.DB, userID string, req *dto.CreateOfferRequest) (*dto.OfferResponse, error)
	GetOffer(db *gorm.DB, userID, role, offerID string) (*dto.OfferResponse, error)
	ListMyOffers(db *gorm.DB, userID string, page, pageSize int) (*dto.ListResponse[dto.OfferResponse], error)
	ListReceivedOffers(db *gorm.DB, userID string, status models.OfferStatus, page, pageSize int) (*dto.ListResponse[dto.OfferResponse], error)
	ListListingOffers(db *gorm.DB, userID, role, listingID string) ([]dto.OfferResponse, error)
	AcceptOffer(ctx context.Context, db *gorm.DB, userID, offerID string) (*dto.OfferResponse, error)
	RejectOffer(ctx context.Context, db *gorm.DB, userID, offerID string) (*dto.OfferResponse, error)
}

type OfferServiceImpl struct {
	offerRepo   repositories.OfferRepository
	listingRepo repositories.ListingRepository
	inTx        Transactor
}

func NewOfferService(offerRepo repositories.OfferRepository, listingRepo repositories.ListingRepository) OfferService {
	return &OfferServiceImpl{
		offerRepo:   offerRepo,
		listingRepo: listingRepo,
		inTx:        GormTransactor,
	}
}

// CreateOffer checks the listing first (field error on listing_id), then the
// scheduling window (object level error).
func (s *OfferServiceImpl) CreateOffer(db *gorm.DB, userID string, req *dto.CreateOfferRequest) (*dto.OfferResponse, error) {
	if !validUUID(req.ListingID) {
		return nil, apperrors.FieldError("listing_id", msgListingDoesNotExist)
	}
	listing, err := s.listingRepo.FindByID(db, req.ListingID)
	if err != nil {
		if errors.Is(err, repositories.ErrListingNotFound) {
			return nil, apperrors.FieldError("listing_id", msgListingDoesNotExist)
		}
		return nil, apperrors.InternalError(err)
	}

	if !req.ScheduledEnd.After(req.ScheduledStart) {
		return nil, apperrors.NonFieldError(msgEndBeforeStart)
	}

	if listing.UploadedByID == userID {
		return nil, apperrors.ErrOwnListingOffer
	}

	// a listing without rates accepts any time unit
	if len(listing.Rates) > 0 && !listing.HasRate(req.TimeUnit) {
		return nil, apperrors.FieldError("time_unit", msgNoRateForTimeUnit)
	}

	offer := &models.Offer{
		OfferedByID:    userID,
		ListingID:      listing.ID,
		Price:          req.Price.Float64(),
		Status:         models.OfferStatusPending,
		ScheduledStart: req.ScheduledStart,
		ScheduledEnd:   req.ScheduledEnd,
		TimeUnit:       req.TimeUnit,
		TimeDelta:      req.TimeDelta,
	}
	if err := s.offerRepo.Create(db, offer); err != nil {
		return nil, apperrors.InternalError(err)
	}

	return s.loadOffer(db, offer.ID)
}

// GetOffer is visible to the offerer, the listing owner and admins.
func (s *OfferServiceImpl) GetOffer(db *gorm.DB, userID, role, offerID string) (*dto.OfferResponse, error) {
	if !validUUID(offerID) {
		return nil, apperrors.ErrOfferNotFound
	}
	offer, err := s.offerRepo.FindByID(db, offerID)
	if err != nil {
		return nil, handleRepoError(err)
	}
	if offer.OfferedByID != userID && !auth.IsOwnerOrAdmin(userID, role, offer.Listing.UploadedByID) {
		return nil, apperrors.ErrInsufficientPermissions
	}
	return dto.NewOfferResponse(offer), nil
}

func (s *OfferServiceImpl) ListMyOffers(db *gorm.DB, userID string, page, pageSize int) (*dto.ListResponse[dto.OfferResponse], error) {
	page, pageSize = repositories.NormalizePage(page, pageSize)
	offers, total, err := s.offerRepo.FindByOfferer(db, userID, page, pageSize)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return dto.NewListResponse(offerResponses(offers), total, page, pageSize), nil
}

func (s *OfferServiceImpl) ListReceivedOffers(db *gorm.DB, userID string, status models.OfferStatus, page, pageSize int) (*dto.ListResponse[dto.OfferResponse], error) {
	page, pageSize = repositories.NormalizePage(page, pageSize)
	offers, total, err := s.offerRepo.FindReceived(db, userID, status, page, pageSize)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return dto.NewListResponse(offerResponses(offers), total, page, pageSize), nil
}

// ListListingOffers feeds the owner's booking calendar.
func (s *OfferServiceImpl) ListListingOffers(db *gorm.DB, userID, role, listingID string) ([]dto.OfferResponse, error) {
	if !validUUID(listingID) {
		return nil, apperrors.ErrListingNotFound
	}
	listing, err := s.listingRepo.FindByID(db, listingID)
	if err != nil {
		return nil, handleRepoError(err)
	}
	if !auth.IsOwnerOrAdmin(userID, role, listing.UploadedByID) {
		return nil, apperrors.ErrNotListingOwner
	}

	offers, err := s.offerRepo.FindByListing(db, listing.ID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return offerResponses(offers), nil
}

func (s *OfferServiceImpl) AcceptOffer(ctx context.Context, db *gorm.DB, userID, offerID string) (*dto.OfferResponse, error) {
	return s.transition(ctx, db, userID, offerID, (*models.Offer).Accept, "Only pending offers can be accepted")
}

func (s *OfferServiceImpl) RejectOffer(ctx context.Context, db *gorm.DB, userID, offerID string) (*dto.OfferResponse, error) {
	return s.transition(ctx, db, userID, offerID, (*models.Offer).Reject, "Only pending offers can be rejected")
}

// transition locks the offer row so concurrent accept/reject calls serialise;
// the loser sees the new status and fails with INVALID_STATUS.
func (s *OfferServiceImpl) transition(ctx context.Context, db *gorm.DB, userID, offerID string, apply func(*models.Offer) error, invalidMsg string) (*dto.OfferResponse, error) {
	if !validUUID(offerID) {
		return nil, apperrors.ErrOfferNotFound
	}

	var from, to models.OfferStatus
	err := s.inTx(db, func(tx *gorm.DB) error {
		offer, err := s.offerRepo.FindByIDForUpdate(tx, offerID)
		if err != nil {
			return err
		}
		if offer.Listing.UploadedByID != userID {
			return apperrors.ErrNotListingOwner
		}

		from = offer.Status
		if err := apply(offer); err != nil {
			return apperrors.ErrInvalidStatus("offer", invalidMsg)
		}
		to = offer.Status
		return s.offerRepo.UpdateStatus(tx, offer.ID, offer.Status)
	})
	if err != nil {
		return nil, handleRepoError(err)
	}

	logger.CtxInfo(ctx, "offer status changed", "offer_id", offerID, "from", from, "to", to)
	return s.loadOffer(db, offerID)
}

func (s *OfferServiceImpl) loadOffer(db *gorm.DB, offerID string) (*dto.OfferResponse, error) {
	offer, err := s.offerRepo.FindByID(db, offerID)
	if err != nil {
		return nil, handleRepoError(err)
	}
	return dto.NewOfferResponse(offer), nil
}

func offerResponses(offers []models.Offer) []dto.OfferResponse {
	items := make([]dto.OfferResponse, 0, len(offers))
	for i := range offers {
		items = append(items, *dto.NewOfferResponse(&offers[i]))
	}
	return items
}
