package repositories

import (
	"errors"
	"strings"

	"rentshare_backend/internal/models"

	"gorm.io/gorm"
)

var ErrListingNotFound = errors.New("listing not found")

type ListingRepository interface {
	Create(db *gorm.DB, listing *models.Listing) error
	FindByID(db *gorm.DB, id string) (*models.Listing, error)
	FindByIDs(db *gorm.DB, ids []string) ([]models.Listing, error)
	FindWithFilter(db *gorm.DB, filter ListingFilter) ([]models.Listing, int64, error)
	Update(db *gorm.DB, listing *models.Listing) error
	ReplacePhotos(db *gorm.DB, listingID string, photos []models.ListingPhoto) ([]models.ListingPhoto, error)
	ReplaceRates(db *gorm.DB, listingID string, rates []models.ListingRate) error
	ReplaceLocations(db *gorm.DB, listingID string, locations []models.ListingLocation) error
	Delete(db *gorm.DB, id string) error
	FindNearby(db *gorm.DB, lat, lng, radiusKm float64, limit int) ([]NearbyListing, error)
}

type ListingFilter struct {
	Category     models.Category
	ListingType  models.ListingType
	Search       string
	UploadedByID string
	Page         int
	PageSize     int
}

// NearbyListing is one listing with the distance to its closest location.
type NearbyListing struct {
	ListingID  string
	DistanceKm float64
}

type ListingRepositoryImpl struct{}

func NewListingRepository() ListingRepository {
	return &ListingRepositoryImpl{}
}

func withListingRelations(db *gorm.DB) *gorm.DB {
	return db.Preload("UploadedBy").
		Preload("Photos", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Rates").
		Preload("Locations")
}

// Create inserts the listing together with its photos, rates and locations.
func (r *ListingRepositoryImpl) Create(db *gorm.DB, listing *models.Listing) error {
	return db.Omit("UploadedBy").Create(listing).Error
}

func (r *ListingRepositoryImpl) FindByID(db *gorm.DB, id string) (*models.Listing, error) {
	var listing models.Listing
	if err := withListingRelations(db).First(&listing, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, err
	}
	return &listing, nil
}

// FindByIDs keeps the order of ids.
func (r *ListingRepositoryImpl) FindByIDs(db *gorm.DB, ids []string) ([]models.Listing, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var listings []models.Listing
	if err := withListingRelations(db).Where("id IN ?", ids).Find(&listings).Error; err != nil {
		return nil, err
	}

	byID := make(map[string]models.Listing, len(listings))
	for _, l := range listings {
		byID[l.ID] = l
	}
	ordered := make([]models.Listing, 0, len(listings))
	for _, id := range ids {
		if l, ok := byID[id]; ok {
			ordered = append(ordered, l)
		}
	}
	return ordered, nil
}

func (r *ListingRepositoryImpl) FindWithFilter(db *gorm.DB, filter ListingFilter) ([]models.Listing, int64, error) {
	query := db.Model(&models.Listing{})
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.ListingType != "" {
		query = query.Where("listing_type = ?", filter.ListingType)
	}
	if filter.UploadedByID != "" {
		query = query.Where("uploaded_by_id = ?", filter.UploadedByID)
	}
	if filter.Search != "" {
		like := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var listings []models.Listing
	err := withListingRelations(query).
		Order("created_at DESC").
		Scopes(Paginate(filter.Page, filter.PageSize)).
		Find(&listings).Error
	return listings, total, err
}

func (r *ListingRepositoryImpl) Update(db *gorm.DB, listing *models.Listing) error {
	result := db.Model(&models.Listing{}).Where("id = ?", listing.ID).Updates(map[string]interface{}{
		"title":        listing.Title,
		"description":  listing.Description,
		"category":     listing.Category,
		"listing_type": listing.ListingType,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrListingNotFound
	}
	return nil
}

// ReplacePhotos swaps the photo set and returns the removed rows so their files can be deleted after commit.
func (r *ListingRepositoryImpl) ReplacePhotos(db *gorm.DB, listingID string, photos []models.ListingPhoto) ([]models.ListingPhoto, error) {
	var old []models.ListingPhoto
	if err := db.Where("listing_id = ?", listingID).Find(&old).Error; err != nil {
		return nil, err
	}
	if err := db.Where("listing_id = ?", listingID).Delete(&models.ListingPhoto{}).Error; err != nil {
		return nil, err
	}
	for i := range photos {
		photos[i].ListingID = listingID
	}
	if len(photos) > 0 {
		if err := db.Create(&photos).Error; err != nil {
			return nil, err
		}
	}
	return old, nil
}

func (r *ListingRepositoryImpl) ReplaceRates(db *gorm.DB, listingID string, rates []models.ListingRate) error {
	if err := db.Where("listing_id = ?", listingID).Delete(&models.ListingRate{}).Error; err != nil {
		return err
	}
	for i := range rates {
		rates[i].ListingID = listingID
	}
	if len(rates) == 0 {
		return nil
	}
	return db.Create(&rates).Error
}

func (r *ListingRepositoryImpl) ReplaceLocations(db *gorm.DB, listingID string, locations []models.ListingLocation) error {
	if err := db.Where("listing_id = ?", listingID).Delete(&models.ListingLocation{}).Error; err != nil {
		return err
	}
	for i := range locations {
		locations[i].ListingID = listingID
	}
	if len(locations) == 0 {
		return nil
	}
	return db.Create(&locations).Error
}

// Delete removes the listing; children go with it through ON DELETE CASCADE.
func (r *ListingRepositoryImpl) Delete(db *gorm.DB, id string) error {
	result := db.Delete(&models.Listing{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrListingNotFound
	}
	return nil
}

// FindNearby is the SQL fallback for the geo index: haversine over listing_locations.
func (r *ListingRepositoryImpl) FindNearby(db *gorm.DB, lat, lng, radiusKm float64, limit int) ([]NearbyListing, error) {
	const distance = `6371 * 2 * ASIN(SQRT(
		POWER(SIN(RADIANS(latitude - ?) / 2), 2) +
		COS(RADIANS(?)) * COS(RADIANS(latitude)) * POWER(SIN(RADIANS(longitude - ?) / 2), 2)))`

	var rows []NearbyListing
	err := db.Table("(?) AS d",
		db.Model(&models.ListingLocation{}).
			Select("listing_id, MIN("+distance+") AS distance_km", lat, lat, lng).
			Group("listing_id"),
	).
		Where("distance_km <= ?", radiusKm).
		Order("distance_km ASC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}
