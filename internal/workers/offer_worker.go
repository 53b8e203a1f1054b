package workers

import (
	"context"
	"time"

	"rentshare_backend/internal/logger"
	"rentshare_backend/internal/repositories"

	"gorm.io/gorm"
)

const offerWorkerName = "offer_worker"

// OfferWorker expires stale pending offers and purges expired refresh tokens.
type OfferWorker struct {
	db               *gorm.DB
	offerRepo        repositories.OfferRepository
	refreshTokenRepo repositories.RefreshTokenRepository
	expiryInterval   time.Duration
	cleanupInterval  time.Duration
	now              func() time.Time
}

func NewOfferWorker(
	db *gorm.DB,
	offerRepo repositories.OfferRepository,
	refreshTokenRepo repositories.RefreshTokenRepository,
	expiryInterval, cleanupInterval time.Duration,
) *OfferWorker {
	return &OfferWorker{
		db:               db,
		offerRepo:        offerRepo,
		refreshTokenRepo: refreshTokenRepo,
		expiryInterval:   expiryInterval,
		cleanupInterval:  cleanupInterval,
		now:              time.Now,
	}
}

// Start runs both jobs until ctx is cancelled.
func (w *OfferWorker) Start(ctx context.Context) {
	go w.loop(ctx, w.expiryInterval, w.ExpirePendingOffers)
	go w.loop(ctx, w.cleanupInterval, w.CleanExpiredTokens)
}

func (w *OfferWorker) loop(ctx context.Context, interval time.Duration, job func(ctx context.Context)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Offer worker stopped")
			return
		case <-ticker.C:
			job(ctx)
		}
	}
}

// ExpirePendingOffers rejects pending offers whose scheduled end has passed.
func (w *OfferWorker) ExpirePendingOffers(ctx context.Context) {
	affected, err := w.offerRepo.RejectExpiredPending(w.db.WithContext(ctx), w.now())
	logger.WorkerLog(offerWorkerName, "expire_pending_offers", affected, err)
}

func (w *OfferWorker) CleanExpiredTokens(ctx context.Context) {
	affected, err := w.refreshTokenRepo.CleanExpired(w.db.WithContext(ctx), w.now())
	logger.WorkerLog(offerWorkerName, "clean_expired_tokens", affected, err)
}
