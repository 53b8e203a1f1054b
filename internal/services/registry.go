package services

import (
	"rentshare_backend/internal/email"
	"rentshare_backend/internal/repositories"
)

// ServiceContainer holds every service of the application.
type ServiceContainer struct {
	AuthService        AuthService
	UserService        UserService
	ListingService     ListingService
	OfferService       OfferService
	ReviewService      ReviewService
	TransactionService TransactionService
	MediaService       MediaService
	EmailProvider      email.Provider
}

// Repositories groups the gorm repositories shared by services and workers.
type Repositories struct {
	Users         repositories.UserRepository
	RefreshTokens repositories.RefreshTokenRepository
	Listings      repositories.ListingRepository
	Offers        repositories.OfferRepository
	Reviews       repositories.ReviewRepository
	Transactions  repositories.TransactionRepository
}

func NewRepositories() *Repositories {
	return &Repositories{
		Users:         repositories.NewUserRepository(),
		RefreshTokens: repositories.NewRefreshTokenRepository(),
		Listings:      repositories.NewListingRepository(),
		Offers:        repositories.NewOfferRepository(),
		Reviews:       repositories.NewReviewRepository(),
		Transactions:  repositories.NewTransactionRepository(),
	}
}

// NewServiceContainer wires services; geoIndex may be nil.
func NewServiceContainer(repos *Repositories, media MediaService, emailProvider email.Provider, geoIndex GeoIndex) *ServiceContainer {
	return &ServiceContainer{
		AuthService:        NewAuthService(repos.Users, repos.RefreshTokens, repos.Reviews, media, emailProvider),
		UserService:        NewUserService(repos.Users, repos.RefreshTokens, repos.Reviews, media),
		ListingService:     NewListingService(repos.Listings, repos.Users, media, geoIndex),
		OfferService:       NewOfferService(repos.Offers, repos.Listings),
		ReviewService:      NewReviewService(repos.Reviews, repos.Users),
		TransactionService: NewTransactionService(repos.Transactions, repos.Offers, repos.Reviews),
		MediaService:       media,
		EmailProvider:      emailProvider,
	}
}
