package services

import (
	"context"
	"mime/multipart"
	"testing"

	"rentshare_backend/internal/geo"
	"rentshare_backend/internal/models"
	"rentshare_backend/pkg/apperrors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

type fixture struct {
	m            *memStore
	auth         *AuthServiceImpl
	users        *UserServiceImpl
	listings     *ListingServiceImpl
	offers       *OfferServiceImpl
	reviews      *ReviewServiceImpl
	transactions *TransactionServiceImpl
	media        *fakeMedia
	geo          *fakeGeoIndex
}

func newFixture() *fixture {
	m := newMemStore()
	userRepo := &fakeUserRepo{m: m}
	tokenRepo := &fakeRefreshTokenRepo{m: m}
	listingRepo := &fakeListingRepo{m: m}
	offerRepo := &fakeOfferRepo{m: m}
	reviewRepo := &fakeReviewRepo{m: m}
	txnRepo := &fakeTransactionRepo{m: m}
	media := &fakeMedia{}
	geoIndex := &fakeGeoIndex{points: map[string][]geo.Point{}}

	return &fixture{
		m: m,
		auth: &AuthServiceImpl{
			userRepo:         userRepo,
			refreshTokenRepo: tokenRepo,
			reviewRepo:       reviewRepo,
			inTx:             passthroughTx,
		},
		users: &UserServiceImpl{
			userRepo:         userRepo,
			refreshTokenRepo: tokenRepo,
			reviewRepo:       reviewRepo,
			media:            media,
			inTx:             passthroughTx,
		},
		listings: &ListingServiceImpl{
			listingRepo: listingRepo,
			userRepo:    userRepo,
			media:       media,
			geoIndex:    geoIndex,
			inTx:        passthroughTx,
		},
		offers: &OfferServiceImpl{
			offerRepo:   offerRepo,
			listingRepo: listingRepo,
			inTx:        passthroughTx,
		},
		reviews: &ReviewServiceImpl{
			reviewRepo: reviewRepo,
			userRepo:   userRepo,
		},
		transactions: &TransactionServiceImpl{
			transactionRepo: txnRepo,
			offerRepo:       offerRepo,
			reviewRepo:      reviewRepo,
			inTx:            passthroughTx,
		},
		media: media,
		geo:   geoIndex,
	}
}

func requireAppError(t *testing.T, err error) *apperrors.AppError {
	t.Helper()
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok, "expected *AppError, got %T: %v", err, err)
	return appErr
}

func requireDetails(t *testing.T, err error, field, message string) {
	t.Helper()
	appErr := requireAppError(t, err)
	require.Equal(t, apperrors.CodeValidationFailed, appErr.Code)
	require.Equal(t, map[string]string{field: message}, appErr.Details)
}

// fakeMedia records stored and deleted keys without touching a storage backend.
type fakeMedia struct {
	stored  []string
	deleted []string
}

func (f *fakeMedia) ValidateImage(file *multipart.FileHeader) error {
	if file == nil {
		return apperrors.NewBadRequestError("No file was submitted")
	}
	return nil
}

func (f *fakeMedia) StoreListingPhoto(ctx context.Context, file *multipart.FileHeader) (*models.ListingPhoto, error) {
	return f.StoreImageBytes(ctx, "listings", file.Filename, nil)
}

func (f *fakeMedia) StoreImageBytes(_ context.Context, prefix, filename string, _ []byte) (*models.ListingPhoto, error) {
	key := prefix + "/" + uuid.NewString() + "_" + filename
	thumb := key + "_thumbnail"
	f.stored = append(f.stored, key, thumb)
	return &models.ListingPhoto{
		ImageURL: "/media/" + key,
		ImageKey: key,
		Variants: datatypes.JSONMap{"thumbnail": map[string]interface{}{"url": "/media/" + thumb, "key": thumb}},
	}, nil
}

func (f *fakeMedia) StoreAvatar(_ context.Context, userID string, _ *multipart.FileHeader) (string, string, error) {
	key := "avatars/" + userID + "/" + uuid.NewString() + ".jpg"
	f.stored = append(f.stored, key)
	return "/media/" + key, key, nil
}

func (f *fakeMedia) Delete(_ context.Context, keys []string) {
	f.deleted = append(f.deleted, keys...)
}

type fakeGeoIndex struct {
	points map[string][]geo.Point
	err    error
}

func (g *fakeGeoIndex) Index(_ context.Context, listingID string, points []geo.Point) error {
	g.points[listingID] = points
	return nil
}

func (g *fakeGeoIndex) Remove(_ context.Context, listingID string) error {
	delete(g.points, listingID)
	return nil
}

func (g *fakeGeoIndex) Nearby(_ context.Context, lat, lng, radiusKm float64, limit int) ([]geo.NearbyListing, error) {
	if g.err != nil {
		return nil, g.err
	}
	var out []geo.NearbyListing
	for id := range g.points {
		out = append(out, geo.NearbyListing{ListingID: id, DistanceKm: 1})
	}
	return out, nil
}
