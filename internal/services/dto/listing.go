package dto

import (
	"encoding/json"
	"mime/multipart"
	"strings"
	"time"

	"rentshare_backend/internal/models"
	"rentshare_backend/pkg/apperrors"
)

type RateInput struct {
	TimeUnit models.TimeUnit `json:"time_unit" validate:"required,is-time-unit"`
	Rate     Decimal         `json:"rate" validate:"gt=0,lte=99999999.99"`
}

type LocationInput struct {
	Latitude  Decimal `json:"latitude" validate:"latitude"`
	Longitude Decimal `json:"longitude" validate:"longitude"`
	Query     string  `json:"query" validate:"max=255"`
	Notes     string  `json:"notes" validate:"max=2000"`
}

// CreateListingRequest is bound from multipart/form-data; rates and locations
// arrive as JSON array strings.
type CreateListingRequest struct {
	Title         string                  `json:"title" form:"title" validate:"required,max=255"`
	Description   string                  `json:"description" form:"description" validate:"max=5000"`
	Category      models.Category         `json:"category" form:"category" validate:"required,is-category"`
	ListingType   models.ListingType      `json:"listing_type" form:"listing_type" validate:"required,is-listing-type"`
	Photos        []*multipart.FileHeader `json:"photos" form:"photos" validate:"required,min=1,max=10"`
	RatesJSON     string                  `json:"-" form:"rates"`
	LocationsJSON string                  `json:"-" form:"locations"`

	Rates     []RateInput     `json:"rates" form:"-" validate:"dive"`
	Locations []LocationInput `json:"locations" form:"-" validate:"max=20,dive"`
}

func (r *CreateListingRequest) Prepare() error {
	return decodeListFields(r.RatesJSON, r.LocationsJSON, &r.Rates, &r.Locations)
}

// UpdateListingRequest replaces photos, rates or locations only when the new set is non-empty.
type UpdateListingRequest struct {
	Title         *string                 `json:"title" form:"title" validate:"omitempty,min=1,max=255"`
	Description   *string                 `json:"description" form:"description" validate:"omitempty,max=5000"`
	Category      *models.Category        `json:"category" form:"category" validate:"omitempty,is-category"`
	ListingType   *models.ListingType     `json:"listing_type" form:"listing_type" validate:"omitempty,is-listing-type"`
	Photos        []*multipart.FileHeader `json:"photos" form:"photos" validate:"max=10"`
	RatesJSON     string                  `json:"-" form:"rates"`
	LocationsJSON string                  `json:"-" form:"locations"`

	Rates     []RateInput     `json:"rates" form:"-" validate:"dive"`
	Locations []LocationInput `json:"locations" form:"-" validate:"max=20,dive"`
}

func (r *UpdateListingRequest) Prepare() error {
	return decodeListFields(r.RatesJSON, r.LocationsJSON, &r.Rates, &r.Locations)
}

// decodeListFields fills rates and locations from their form strings. Empty
// strings leave the targets alone so JSON bodies keep their decoded lists.
func decodeListFields(ratesJSON, locationsJSON string, rates *[]RateInput, locations *[]LocationInput) error {
	if strings.TrimSpace(ratesJSON) != "" {
		decoded, err := decodeJSONList[RateInput]("rates", ratesJSON)
		if err != nil {
			return err
		}
		*rates = decoded
	}
	if strings.TrimSpace(locationsJSON) != "" {
		decoded, err := decodeJSONList[LocationInput]("locations", locationsJSON)
		if err != nil {
			return err
		}
		*locations = decoded
	}
	return nil
}

func decodeJSONList[T any](field, raw string) ([]T, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	var out []T
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, apperrors.FieldError(field, "Expected a JSON list")
	}
	return out, nil
}

type ListingFilter struct {
	Category    models.Category    `form:"category" validate:"omitempty,is-category"`
	ListingType models.ListingType `form:"listing_type" validate:"omitempty,is-listing-type"`
	Query       string             `form:"q" validate:"max=100"`
	UploadedBy  string             `form:"uploaded_by" validate:"omitempty,uuid"`
}

type NearbyQuery struct {
	Lat      *float64 `form:"lat" validate:"required,latitude"`
	Lng      *float64 `form:"lng" validate:"required,longitude"`
	RadiusKm float64  `form:"radius_km" validate:"omitempty,gt=0,lte=100"`
	Limit    int      `form:"limit" validate:"omitempty,min=1,max=100"`
}

type PhotoResponse struct {
	ImageURL     string  `json:"image_url"`
	ThumbnailURL *string `json:"thumbnail_url"`
}

type RateResponse struct {
	TimeUnit models.TimeUnit `json:"time_unit"`
	Rate     Decimal         `json:"rate"`
}

type LocationResponse struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Query     string  `json:"query"`
	Notes     string  `json:"notes"`
}

type ListingResponse struct {
	ID              string             `json:"id"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
	UploadedBy      string             `json:"uploaded_by"`
	CreatedBy       string             `json:"created_by"`
	Title           string             `json:"title"`
	Description     string             `json:"description"`
	Category        models.Category    `json:"category"`
	CategoryDisplay string             `json:"category_display"`
	ListingType     models.ListingType `json:"listing_type"`
	Photos          []PhotoResponse    `json:"photos"`
	Locations       []LocationResponse `json:"locations"`
	Rates           []RateResponse     `json:"rates"`
}

type NearbyListingResponse struct {
	ListingResponse
	DistanceKm float64 `json:"distance_km"`
}

func NewListingResponse(l *models.Listing) *ListingResponse {
	resp := &ListingResponse{
		ID:              l.ID,
		CreatedAt:       l.CreatedAt,
		UpdatedAt:       l.UpdatedAt,
		UploadedBy:      l.UploadedByID,
		CreatedBy:       l.UploadedBy.Username,
		Title:           l.Title,
		Description:     l.Description,
		Category:        l.Category,
		CategoryDisplay: l.Category.Display(),
		ListingType:     l.ListingType,
		Photos:          make([]PhotoResponse, 0, len(l.Photos)),
		Locations:       make([]LocationResponse, 0, len(l.Locations)),
		Rates:           make([]RateResponse, 0, len(l.Rates)),
	}
	for i := range l.Photos {
		photo := PhotoResponse{ImageURL: l.Photos[i].ImageURL}
		if thumb := l.Photos[i].VariantURL("thumbnail"); thumb != "" {
			photo.ThumbnailURL = &thumb
		}
		resp.Photos = append(resp.Photos, photo)
	}
	for _, loc := range l.Locations {
		resp.Locations = append(resp.Locations, LocationResponse{
			Latitude:  loc.Latitude,
			Longitude: loc.Longitude,
			Query:     loc.Query,
			Notes:     loc.Notes,
		})
	}
	for _, rate := range l.Rates {
		resp.Rates = append(resp.Rates, RateResponse{TimeUnit: rate.TimeUnit, Rate: Decimal(rate.Rate)})
	}
	return resp
}
