package models

import (
	"errors"
	"time"
)

var ErrInvalidOfferTransition = errors.New("invalid offer status transition")

type Offer struct {
	BaseModel
	OfferedByID    string      `gorm:"type:uuid;not null;index"`
	ListingID      string      `gorm:"type:uuid;not null;index"`
	Price          float64     `gorm:"type:numeric(10,2);not null"`
	Status         OfferStatus `gorm:"type:varchar(1);not null;default:'P';index"`
	ScheduledStart time.Time   `gorm:"not null"`
	ScheduledEnd   time.Time   `gorm:"not null;index"`
	TimeUnit       TimeUnit    `gorm:"type:varchar(2);not null"`
	TimeDelta      int         `gorm:"not null;default:1"`

	OfferedBy User    `gorm:"foreignKey:OfferedByID;constraint:OnDelete:RESTRICT"`
	Listing   Listing `gorm:"foreignKey:ListingID;constraint:OnDelete:CASCADE"`
}

// Accept moves a pending offer to accepted.
func (o *Offer) Accept() error {
	return o.transition(OfferStatusPending, OfferStatusAccepted)
}

func (o *Offer) Reject() error {
	return o.transition(OfferStatusPending, OfferStatusRejected)
}

// MarkPaid is only reachable from accepted; it is set when a transaction is recorded.
func (o *Offer) MarkPaid() error {
	return o.transition(OfferStatusAccepted, OfferStatusPaid)
}

func (o *Offer) transition(from, to OfferStatus) error {
	if o.Status != from {
		return ErrInvalidOfferTransition
	}
	o.Status = to
	return nil
}
