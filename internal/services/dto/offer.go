package dto

import (
	"time"

	"rentshare_backend/internal/models"
)

type CreateOfferRequest struct {
	ListingID      string          `json:"listing_id" validate:"required"`
	Price          Decimal         `json:"price" validate:"gt=0,lte=99999999.99"`
	ScheduledStart time.Time       `json:"scheduled_start" validate:"required"`
	ScheduledEnd   time.Time       `json:"scheduled_end" validate:"required"`
	TimeUnit       models.TimeUnit `json:"time_unit" validate:"required,is-time-unit"`
	TimeDelta      int             `json:"time_delta" validate:"min=1"`
}

type OfferFilter struct {
	Status models.OfferStatus `form:"status" validate:"omitempty,is-offer-status"`
}

type OfferListingBrief struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Category string `json:"category"`
}

type OfferResponse struct {
	ID             string             `json:"id"`
	OfferedBy      UserBrief          `json:"offered_by"`
	Listing        OfferListingBrief  `json:"listing"`
	Price          Decimal            `json:"price"`
	Status         models.OfferStatus `json:"status"`
	StatusDisplay  string             `json:"status_display"`
	CreatedAt      time.Time          `json:"created_at"`
	ScheduledStart time.Time          `json:"scheduled_start"`
	ScheduledEnd   time.Time          `json:"scheduled_end"`
	TimeUnit       models.TimeUnit    `json:"time_unit"`
	TimeDelta      int                `json:"time_delta"`
}

func NewOfferResponse(o *models.Offer) *OfferResponse {
	return &OfferResponse{
		ID:        o.ID,
		OfferedBy: NewUserBrief(&o.OfferedBy),
		Listing: OfferListingBrief{
			ID:       o.Listing.ID,
			Title:    o.Listing.Title,
			Category: o.Listing.Category.Display(),
		},
		Price:          Decimal(o.Price),
		Status:         o.Status,
		StatusDisplay:  o.Status.Display(),
		CreatedAt:      o.CreatedAt,
		ScheduledStart: o.ScheduledStart,
		ScheduledEnd:   o.ScheduledEnd,
		TimeUnit:       o.TimeUnit,
		TimeDelta:      o.TimeDelta,
	}
}
