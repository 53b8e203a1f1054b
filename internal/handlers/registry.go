package handlers

import (
	"rentshare_backend/internal/services"
	"rentshare_backend/internal/validator"
)

// AppHandlers holds every HTTP handler of the application.
type AppHandlers struct {
	AuthHandler        *AuthHandler
	UserHandler        *UserHandler
	ListingHandler     *ListingHandler
	OfferHandler       *OfferHandler
	ReviewHandler      *ReviewHandler
	TransactionHandler *TransactionHandler
}

func NewAppHandlers(sc *services.ServiceContainer, v *validator.Validator) *AppHandlers {
	base := NewBaseHandler(v)
	return &AppHandlers{
		AuthHandler:        NewAuthHandler(base, sc.AuthService),
		UserHandler:        NewUserHandler(base, sc.UserService, sc.ListingService),
		ListingHandler:     NewListingHandler(base, sc.ListingService),
		OfferHandler:       NewOfferHandler(base, sc.OfferService),
		ReviewHandler:      NewReviewHandler(base, sc.ReviewService),
		TransactionHandler: NewTransactionHandler(base, sc.TransactionService),
	}
}
