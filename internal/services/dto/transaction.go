package dto

import (
	"time"

	"rentshare_backend/internal/models"
)

type CreateTransactionRequest struct {
	OfferID   string                   `json:"offer_id" validate:"required"`
	Amount    Decimal                  `json:"amount" validate:"gt=0,lte=99999999.99"`
	Status    models.TransactionStatus `json:"status" validate:"omitempty,is-transaction-status"`
	PaymentID string                   `json:"payment_id" validate:"max=255"`
}

type TransactionResponse struct {
	ID            string                   `json:"id"`
	User          *UserResponse            `json:"user"`
	Offer         *OfferResponse           `json:"offer"`
	Amount        Decimal                  `json:"amount"`
	Status        models.TransactionStatus `json:"status"`
	StatusDisplay string                   `json:"status_display"`
	CreatedAt     time.Time                `json:"created_at"`
	UpdatedAt     time.Time                `json:"updated_at"`
	PaymentID     string                   `json:"payment_id"`
}

func NewTransactionResponse(t *models.Transaction, userRating float64) *TransactionResponse {
	return &TransactionResponse{
		ID:            t.ID,
		User:          NewUserResponse(&t.User, userRating),
		Offer:         NewOfferResponse(&t.Offer),
		Amount:        Decimal(t.Amount),
		Status:        t.Status,
		StatusDisplay: t.Status.Display(),
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
		PaymentID:     t.PaymentID,
	}
}
