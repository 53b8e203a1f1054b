package seed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/color"
	"io"
	"net/http"
	"path"
	"time"

	"rentshare_backend/internal/auth"
	"rentshare_backend/internal/geo"
	"rentshare_backend/internal/imageprocessor"
	"rentshare_backend/internal/logger"
	"rentshare_backend/internal/models"
	"rentshare_backend/internal/repositories"
	"rentshare_backend/internal/services"

	"gorm.io/gorm"
)

const (
	DefaultPhotoURL = "https://upload.wikimedia.org/wikipedia/commons/3/3a/Cat03.jpg"
	defaultPassword = "password"
	maxPhotoBytes   = 10 << 20
)

// marketplaceTables are truncated by a reset, children first.
var marketplaceTables = []string{
	"transactions", "reviews", "offers",
	"listing_photos", "listing_locations", "listing_rates", "listings",
	"refresh_tokens", "users",
}

type Options struct {
	Reset    bool
	PhotoURL string
}

// Seeder loads the demo fixtures.
type Seeder struct {
	repos      *services.Repositories
	media      services.MediaService
	geoIndex   services.GeoIndex
	httpClient *http.Client
	now        func() time.Time
}

// NewSeeder builds a seeder; geoIndex may be nil.
func NewSeeder(repos *services.Repositories, media services.MediaService, geoIndex services.GeoIndex) *Seeder {
	return &Seeder{
		repos:      repos,
		media:      media,
		geoIndex:   geoIndex,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		now:        time.Now,
	}
}

// Run inserts every fixture in one database transaction. The listing photo is
// stored before the transaction starts and removed again if it fails.
func (s *Seeder) Run(ctx context.Context, db *gorm.DB, opts Options) error {
	if opts.PhotoURL == "" {
		opts.PhotoURL = DefaultPhotoURL
	}

	photo, err := s.storePhoto(ctx, opts.PhotoURL)
	if err != nil {
		return err
	}

	var listings []*models.Listing
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if opts.Reset {
			if err := reset(tx); err != nil {
				return err
			}
		}
		listings, err = s.load(tx, photo)
		return err
	})
	if err != nil {
		s.media.Delete(ctx, photo.StorageKeys())
		return err
	}

	s.indexListings(ctx, listings)
	return nil
}

func (s *Seeder) indexListings(ctx context.Context, listings []*models.Listing) {
	if s.geoIndex == nil {
		return
	}
	for _, listing := range listings {
		points := make([]geo.Point, len(listing.Locations))
		for i, loc := range listing.Locations {
			points[i] = geo.Point{Latitude: loc.Latitude, Longitude: loc.Longitude}
		}
		if err := s.geoIndex.Index(ctx, listing.ID, points); err != nil {
			logger.Warn("Failed to index listing locations", "listing_id", listing.ID, "error", err)
		}
	}
	logger.Info("Indexed listing locations", "count", len(listings))
}

func reset(tx *gorm.DB) error {
	for _, table := range marketplaceTables {
		if err := tx.Exec(fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)).Error; err != nil {
			return fmt.Errorf("truncate %s: %w", table, err)
		}
	}
	logger.Info("Dropped existing marketplace data")
	return nil
}

func (s *Seeder) load(tx *gorm.DB, photo *models.ListingPhoto) ([]*models.Listing, error) {
	hash, err := auth.HashPassword(defaultPassword)
	if err != nil {
		return nil, err
	}

	users := make([]*models.User, 0, 3)
	for _, u := range []struct{ email, username, phone string }{
		{"user1@gmail.com", "user1", "99999999"},
		{"user2@gmail.com", "user2", "88888888"},
		{"user3@gmail.com", "user3", "77777777"},
	} {
		user := &models.User{
			Email:        u.email,
			Username:     u.username,
			PhoneNumber:  u.phone,
			PasswordHash: hash,
			Role:         models.UserRoleUser,
		}
		if err := s.repos.Users.Create(tx, user); err != nil {
			if errors.Is(err, repositories.ErrUserAlreadyExists) {
				return nil, fmt.Errorf("fixture user %s already exists, rerun with -reset: %w", u.email, err)
			}
			return nil, err
		}
		users = append(users, user)
	}
	user1, user2, user3 := users[0], users[1], users[2]
	logger.Info("Successfully seeded users", "count", len(users))

	listings := fixtureListings(user1, user2, user3)
	listings[0].Photos = []models.ListingPhoto{*photo}
	for _, listing := range listings {
		if err := s.repos.Listings.Create(tx, listing); err != nil {
			return nil, fmt.Errorf("create listing %q: %w", listing.Title, err)
		}
	}
	drill, tent, smurfing := listings[0], listings[1], listings[3]
	logger.Info("Successfully seeded listings", "count", len(listings), "photos", 1)

	start := s.now().Add(24 * time.Hour).Truncate(time.Hour)
	offer := func(by *models.User, listing *models.Listing, price float64, unit models.TimeUnit) *models.Offer {
		return &models.Offer{
			OfferedByID:    by.ID,
			ListingID:      listing.ID,
			Price:          price,
			Status:         models.OfferStatusPending,
			ScheduledStart: start,
			ScheduledEnd:   start.Add(2 * time.Hour),
			TimeUnit:       unit,
			TimeDelta:      1,
		}
	}

	accepted := offer(user2, drill, 10, models.TimeUnitHourly)
	if err := accepted.Accept(); err != nil {
		return nil, err
	}
	rejected := offer(user3, drill, 5, models.TimeUnitHourly)
	if err := rejected.Reject(); err != nil {
		return nil, err
	}
	pending := offer(user3, drill, 8, models.TimeUnitHourly)
	offers := []*models.Offer{
		accepted,
		rejected,
		pending,
		offer(user3, tent, 50, models.TimeUnitWeekly),
		offer(user3, smurfing, 95, models.TimeUnitOneTime),
	}
	for _, o := range offers {
		if err := s.repos.Offers.Create(tx, o); err != nil {
			return nil, fmt.Errorf("create offer: %w", err)
		}
	}
	logger.Info("Successfully seeded offers", "count", len(offers))

	review := &models.Review{
		ReviewerID:  user2.ID,
		UserID:      user1.ID,
		Rating:      5,
		Description: "Amazing seller",
	}
	if err := s.repos.Reviews.Create(tx, review); err != nil {
		return nil, fmt.Errorf("create review: %w", err)
	}
	logger.Info("Successfully seeded reviews", "count", 1)

	if err := s.pay(tx, user2, accepted, models.TransactionStatusCompleted); err != nil {
		return nil, err
	}
	// user3's drill offer is paid while still pending so the demo has an open transaction.
	if err := s.pay(tx, user3, pending, models.TransactionStatusPending); err != nil {
		return nil, err
	}
	logger.Info("Successfully seeded transactions", "count", 2)
	return listings, nil
}

// pay records a transaction for offer and moves it to paid.
func (s *Seeder) pay(tx *gorm.DB, payer *models.User, offer *models.Offer, status models.TransactionStatus) error {
	txn := &models.Transaction{
		UserID:  payer.ID,
		OfferID: offer.ID,
		Amount:  offer.Price,
		Status:  status,
	}
	if err := s.repos.Transactions.Create(tx, txn); err != nil {
		return fmt.Errorf("create transaction: %w", err)
	}
	return s.repos.Offers.UpdateStatus(tx, offer.ID, models.OfferStatusPaid)
}

func fixtureListings(user1, user2, user3 *models.User) []*models.Listing {
	return []*models.Listing{
		{
			UploadedByID: user1.ID,
			Title:        "Electronic Drill",
			Description:  "Looking to rent out an electronic drill as I do not need it anymore",
			Category:     models.CategoryElectronics,
			ListingType:  models.ListingTypeRental,
			Rates: []models.ListingRate{
				{TimeUnit: models.TimeUnitHourly, Rate: 10},
				{TimeUnit: models.TimeUnitDaily, Rate: 50},
			},
			Locations: []models.ListingLocation{
				{Latitude: 1.31745, Longitude: 103.80704, Query: "Farrer Road"},
				{Latitude: 1.42953, Longitude: 103.83503, Query: "Yishun"},
			},
		},
		{
			UploadedByID: user2.ID,
			Title:        "Camping Tent",
			Description:  "Looking to rent out a camping tent as it is unused in the house",
			Category:     models.CategorySupplies,
			ListingType:  models.ListingTypeRental,
			Rates:        []models.ListingRate{{TimeUnit: models.TimeUnitWeekly, Rate: 150}},
			Locations:    []models.ListingLocation{{Latitude: 1.35160, Longitude: 103.87119, Query: "Nex"}},
		},
		{
			UploadedByID: user3.ID,
			Title:        "Plumbing services",
			Description:  "Plumbing services, available from 9am to 5pm anywhere in Singapore.",
			Category:     models.CategoryServices,
			ListingType:  models.ListingTypeService,
			Rates:        []models.ListingRate{{TimeUnit: models.TimeUnitOneTime, Rate: 70}},
			Locations:    []models.ListingLocation{{Latitude: 1.42953, Longitude: 103.83503, Query: "Yishun"}},
		},
		{
			UploadedByID: user1.ID,
			Title:        "SC2006 Smurfing Services",
			Description:  "NEED HELP FOR OS LAB? CONTACT ME",
			Category:     models.CategoryServices,
			ListingType:  models.ListingTypeService,
			Rates:        []models.ListingRate{{TimeUnit: models.TimeUnitOneTime, Rate: 100}},
			Locations:    []models.ListingLocation{{Latitude: 1.34633, Longitude: 103.68217, Query: "NTU CCDS"}},
		},
	}
}

func (s *Seeder) storePhoto(ctx context.Context, url string) (*models.ListingPhoto, error) {
	data, filename, err := s.downloadPhoto(ctx, url)
	if err != nil {
		logger.Warn("Photo download failed, using placeholder", "url", url, "error", err)
		data, err = imageprocessor.Placeholder(640, 480, color.RGBA{R: 0xcc, G: 0xcc, B: 0xcc, A: 0xff})
		if err != nil {
			return nil, fmt.Errorf("generate placeholder photo: %w", err)
		}
		filename = "placeholder.jpg"
	}

	photo, err := s.media.StoreImageBytes(ctx, "listings", filename, data)
	if err != nil {
		return nil, fmt.Errorf("store listing photo: %w", err)
	}
	logger.Info("Stored listing photo", "url", photo.ImageURL)
	return photo, nil
}

func (s *Seeder) downloadPhoto(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("User-Agent", "rentshare-seed/1.0")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPhotoBytes+1))
	if err != nil {
		return nil, "", err
	}
	if len(data) > maxPhotoBytes {
		return nil, "", errors.New("photo is too large")
	}
	width, height, err := imageprocessor.GetImageDimensions(bytes.NewReader(data))
	if err != nil {
		return nil, "", err
	}
	logger.Info("Downloaded listing photo", "bytes", len(data), "width", width, "height", height)

	filename := path.Base(req.URL.Path)
	if filename == "" || filename == "/" || filename == "." {
		filename = "photo.jpg"
	}
	return data, filename, nil
}
