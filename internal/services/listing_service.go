package services

import (
	"context"
	"mime/multipart"

	"rentshare_backend/internal/auth"
	"rentshare_backend/internal/geo"
	"rentshare_backend/internal/logger"
	"rentshare_backend/internal/models"
	"rentshare_backend/internal/repositories"
	"rentshare_backend/internal/services/dto"
	"rentshare_backend/pkg/apperrors"

	"gorm.io/gorm"
)

const (
	defaultNearbyRadiusKm = 10.0
	defaultNearbyLimit    = 20
)

// GeoIndex keeps listing locations searchable by distance. Implemented by geo.ListingLocator.
type GeoIndex interface {
	Index(ctx context.Context, listingID string, points []geo.Point) error
	Remove(ctx context.Context, listingID string) error
	Nearby(ctx context.Context, lat, lng, radiusKm float64, limit int) ([]geo.NearbyListing, error)
}

type ListingService interface {
	CreateListing(ctx context.Context, db *gorm.DB, userID string, req *dto.CreateListingRequest) (*dto.ListingResponse, error)
	UpdateListing(ctx context.Context, db *gorm.DB, userID, listingID string, req *dto.UpdateListingRequest) (*dto.ListingResponse, error)
	DeleteListing(ctx context.Context, db *gorm.DB, userID, role, listingID string) error
	GetListing(db *gorm.DB, listingID string) (*dto.ListingResponse, error)
	ListListings(db *gorm.DB, filter *dto.ListingFilter, page, pageSize int) (*dto.ListResponse[dto.ListingResponse], error)
	ListUserListings(db *gorm.DB, userID string, page, pageSize int) (*dto.ListResponse[dto.ListingResponse], error)
	FindNearby(ctx context.Context, db *gorm.DB, q *dto.NearbyQuery) ([]dto.NearbyListingResponse, error)
}

type ListingServiceImpl struct {
	listingRepo repositories.ListingRepository
	userRepo    repositories.UserRepository
	media       MediaService
	geoIndex    GeoIndex // nil when redis is disabled
	inTx        Transactor
}

func NewListingService(
	listingRepo repositories.ListingRepository,
	userRepo repositories.UserRepository,
	media MediaService,
	geoIndex GeoIndex,
) ListingService {
	return &ListingServiceImpl{
		listingRepo: listingRepo,
		userRepo:    userRepo,
		media:       media,
		geoIndex:    geoIndex,
		inTx:        GormTransactor,
	}
}

// CreateListing stores the photos first, then writes the listing and all of its
// rows in one transaction. Stored files are removed if the transaction fails.
func (s *ListingServiceImpl) CreateListing(ctx context.Context, db *gorm.DB, userID string, req *dto.CreateListingRequest) (*dto.ListingResponse, error) {
	rates, err := buildRates(req.Rates)
	if err != nil {
		return nil, err
	}

	photos, storedKeys, err := s.storePhotos(ctx, req.Photos)
	if err != nil {
		return nil, err
	}

	listing := &models.Listing{
		UploadedByID: userID,
		Title:        req.Title,
		Description:  req.Description,
		Category:     req.Category,
		ListingType:  req.ListingType,
		Photos:       photos,
		Rates:        rates,
		Locations:    buildLocations(req.Locations),
	}

	err = s.inTx(db, func(tx *gorm.DB) error {
		return s.listingRepo.Create(tx, listing)
	})
	if err != nil {
		s.media.Delete(ctx, storedKeys)
		return nil, handleRepoError(err)
	}

	logger.CtxInfo(ctx, "listing created", "listing_id", listing.ID, "photos", len(photos))
	s.syncGeoIndex(ctx, listing.ID, listing.Locations)

	return s.GetListing(db, listing.ID)
}

// UpdateListing changes scalar fields; photos, rates and locations are replaced
// only when a non-empty set is submitted.
func (s *ListingServiceImpl) UpdateListing(ctx context.Context, db *gorm.DB, userID, listingID string, req *dto.UpdateListingRequest) (*dto.ListingResponse, error) {
	listing, err := s.findListing(db, listingID)
	if err != nil {
		return nil, err
	}
	if listing.UploadedByID != userID {
		return nil, apperrors.ErrNotListingOwner
	}

	if req.Title != nil {
		listing.Title = *req.Title
	}
	if req.Description != nil {
		listing.Description = *req.Description
	}
	if req.Category != nil {
		listing.Category = *req.Category
	}
	if req.ListingType != nil {
		listing.ListingType = *req.ListingType
	}

	rates, err := buildRates(req.Rates)
	if err != nil {
		return nil, err
	}
	locations := buildLocations(req.Locations)

	photos, storedKeys, err := s.storePhotos(ctx, req.Photos)
	if err != nil {
		return nil, err
	}

	var replaced []models.ListingPhoto
	err = s.inTx(db, func(tx *gorm.DB) error {
		if err := s.listingRepo.Update(tx, listing); err != nil {
			return err
		}
		if len(photos) > 0 {
			old, err := s.listingRepo.ReplacePhotos(tx, listing.ID, photos)
			if err != nil {
				return err
			}
			replaced = old
		}
		if len(rates) > 0 {
			if err := s.listingRepo.ReplaceRates(tx, listing.ID, rates); err != nil {
				return err
			}
		}
		if len(locations) > 0 {
			return s.listingRepo.ReplaceLocations(tx, listing.ID, locations)
		}
		return nil
	})
	if err != nil {
		s.media.Delete(ctx, storedKeys)
		return nil, handleRepoError(err)
	}

	s.media.Delete(ctx, photoKeys(replaced))
	if len(locations) > 0 {
		s.syncGeoIndex(ctx, listing.ID, locations)
	}

	return s.GetListing(db, listing.ID)
}

// DeleteListing is allowed for the owner and admins. Children cascade in the
// database; stored files and the geo entry are removed after commit.
func (s *ListingServiceImpl) DeleteListing(ctx context.Context, db *gorm.DB, userID, role, listingID string) error {
	listing, err := s.findListing(db, listingID)
	if err != nil {
		return err
	}
	if !auth.IsOwnerOrAdmin(userID, role, listing.UploadedByID) {
		return apperrors.ErrNotListingOwner
	}

	err = s.inTx(db, func(tx *gorm.DB) error {
		return s.listingRepo.Delete(tx, listing.ID)
	})
	if err != nil {
		return handleRepoError(err)
	}

	s.media.Delete(ctx, photoKeys(listing.Photos))
	if s.geoIndex != nil {
		if err := s.geoIndex.Remove(ctx, listing.ID); err != nil {
			logger.CtxWithError(ctx, "failed to remove listing from geo index", err, "listing_id", listing.ID)
		}
	}
	logger.CtxInfo(ctx, "listing deleted", "listing_id", listing.ID, "by", userID)
	return nil
}

func (s *ListingServiceImpl) GetListing(db *gorm.DB, listingID string) (*dto.ListingResponse, error) {
	listing, err := s.findListing(db, listingID)
	if err != nil {
		return nil, err
	}
	return dto.NewListingResponse(listing), nil
}

func (s *ListingServiceImpl) ListListings(db *gorm.DB, filter *dto.ListingFilter, page, pageSize int) (*dto.ListResponse[dto.ListingResponse], error) {
	if filter.UploadedBy != "" && !validUUID(filter.UploadedBy) {
		return nil, apperrors.FieldError("uploaded_by", "Must be a valid UUID")
	}
	return s.list(db, repositories.ListingFilter{
		Category:     filter.Category,
		ListingType:  filter.ListingType,
		Search:       filter.Query,
		UploadedByID: filter.UploadedBy,
		Page:         page,
		PageSize:     pageSize,
	})
}

func (s *ListingServiceImpl) ListUserListings(db *gorm.DB, userID string, page, pageSize int) (*dto.ListResponse[dto.ListingResponse], error) {
	if !validUUID(userID) {
		return nil, apperrors.ErrUserNotFound
	}
	if _, err := s.userRepo.FindByID(db, userID); err != nil {
		return nil, handleRepoError(err)
	}
	return s.list(db, repositories.ListingFilter{UploadedByID: userID, Page: page, PageSize: pageSize})
}

func (s *ListingServiceImpl) list(db *gorm.DB, filter repositories.ListingFilter) (*dto.ListResponse[dto.ListingResponse], error) {
	filter.Page, filter.PageSize = repositories.NormalizePage(filter.Page, filter.PageSize)
	listings, total, err := s.listingRepo.FindWithFilter(db, filter)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	items := make([]dto.ListingResponse, 0, len(listings))
	for i := range listings {
		items = append(items, *dto.NewListingResponse(&listings[i]))
	}
	return dto.NewListResponse(items, total, filter.Page, filter.PageSize), nil
}

// FindNearby returns listings nearest first. The redis index is used when
// available; on a redis failure the SQL query answers instead.
func (s *ListingServiceImpl) FindNearby(ctx context.Context, db *gorm.DB, q *dto.NearbyQuery) ([]dto.NearbyListingResponse, error) {
	lat, lng := *q.Lat, *q.Lng
	radius := q.RadiusKm
	if radius <= 0 {
		radius = defaultNearbyRadiusKm
	}
	limit := q.Limit
	if limit <= 0 {
		limit = defaultNearbyLimit
	}

	hits, err := s.nearbyIDs(ctx, db, lat, lng, radius, limit)
	if err != nil {
		return nil, err
	}
	if len(hits) == 0 {
		return []dto.NearbyListingResponse{}, nil
	}

	ids := make([]string, len(hits))
	for i, h := range hits {
		ids[i] = h.ListingID
	}
	listings, err := s.listingRepo.FindByIDs(db, ids)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	byID := make(map[string]*models.Listing, len(listings))
	for i := range listings {
		byID[listings[i].ID] = &listings[i]
	}

	result := make([]dto.NearbyListingResponse, 0, len(hits))
	for _, h := range hits {
		listing, ok := byID[h.ListingID]
		if !ok {
			// stale index entry
			continue
		}
		result = append(result, dto.NearbyListingResponse{
			ListingResponse: *dto.NewListingResponse(listing),
			DistanceKm:      h.DistanceKm,
		})
	}
	return result, nil
}

func (s *ListingServiceImpl) nearbyIDs(ctx context.Context, db *gorm.DB, lat, lng, radius float64, limit int) ([]repositories.NearbyListing, error) {
	if s.geoIndex != nil {
		hits, err := s.geoIndex.Nearby(ctx, lat, lng, radius, limit)
		if err == nil {
			out := make([]repositories.NearbyListing, len(hits))
			for i, h := range hits {
				out[i] = repositories.NearbyListing{ListingID: h.ListingID, DistanceKm: h.DistanceKm}
			}
			return out, nil
		}
		logger.CtxWithError(ctx, "geo index search failed, using database", err)
	}

	hits, err := s.listingRepo.FindNearby(db, lat, lng, radius, limit)
	if err != nil {
		return nil, apperrors.ErrNearbyUnavailable.WithError(err)
	}
	return hits, nil
}

func (s *ListingServiceImpl) findListing(db *gorm.DB, listingID string) (*models.Listing, error) {
	if !validUUID(listingID) {
		return nil, apperrors.ErrListingNotFound
	}
	listing, err := s.listingRepo.FindByID(db, listingID)
	if err != nil {
		return nil, handleRepoError(err)
	}
	return listing, nil
}

// storePhotos validates every file before writing any of them.
func (s *ListingServiceImpl) storePhotos(ctx context.Context, files []*multipart.FileHeader) ([]models.ListingPhoto, []string, error) {
	for _, f := range files {
		if err := s.media.ValidateImage(f); err != nil {
			return nil, nil, err
		}
	}

	photos := make([]models.ListingPhoto, 0, len(files))
	var keys []string
	for _, f := range files {
		photo, err := s.media.StoreListingPhoto(ctx, f)
		if err != nil {
			s.media.Delete(ctx, keys)
			return nil, nil, err
		}
		photos = append(photos, *photo)
		keys = append(keys, photo.StorageKeys()...)
	}
	return photos, keys, nil
}

func (s *ListingServiceImpl) syncGeoIndex(ctx context.Context, listingID string, locations []models.ListingLocation) {
	if s.geoIndex == nil {
		return
	}
	points := make([]geo.Point, len(locations))
	for i, loc := range locations {
		points[i] = geo.Point{Latitude: loc.Latitude, Longitude: loc.Longitude}
	}
	if err := s.geoIndex.Index(ctx, listingID, points); err != nil {
		logger.CtxWithError(ctx, "failed to index listing locations", err, "listing_id", listingID)
	}
}

// buildRates rejects a second rate for the same time unit.
func buildRates(in []dto.RateInput) ([]models.ListingRate, error) {
	rates := make([]models.ListingRate, 0, len(in))
	seen := make(map[models.TimeUnit]bool, len(in))
	for _, r := range in {
		if seen[r.TimeUnit] {
			return nil, apperrors.FieldError("rates", "Only one rate per time unit is allowed")
		}
		seen[r.TimeUnit] = true
		rates = append(rates, models.ListingRate{TimeUnit: r.TimeUnit, Rate: r.Rate.Float64()})
	}
	return rates, nil
}

func buildLocations(in []dto.LocationInput) []models.ListingLocation {
	locations := make([]models.ListingLocation, 0, len(in))
	for _, l := range in {
		locations = append(locations, models.ListingLocation{
			Latitude:  float64(l.Latitude),
			Longitude: float64(l.Longitude),
			Query:     l.Query,
			Notes:     l.Notes,
		})
	}
	return locations
}

func photoKeys(photos []models.ListingPhoto) []string {
	var keys []string
	for i := range photos {
		keys = append(keys, photos[i].StorageKeys()...)
	}
	return keys
}
