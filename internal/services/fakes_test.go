package services

import (
	"sort"
	"strings"
	"time"

	"rentshare_backend/internal/models"
	"rentshare_backend/internal/repositories"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// memStore backs the fake repositories; the *gorm.DB arguments are ignored.
type memStore struct {
	users         map[string]*models.User
	refreshTokens map[string]*models.RefreshToken
	listings      map[string]*models.Listing
	offers        map[string]*models.Offer
	reviews       []*models.Review
	transactions  map[string]*models.Transaction
}

func newMemStore() *memStore {
	return &memStore{
		users:         map[string]*models.User{},
		refreshTokens: map[string]*models.RefreshToken{},
		listings:      map[string]*models.Listing{},
		offers:        map[string]*models.Offer{},
		transactions:  map[string]*models.Transaction{},
	}
}

func passthroughTx(db *gorm.DB, fn func(tx *gorm.DB) error) error {
	return fn(db)
}

func (m *memStore) addUser(email, phone string) *models.User {
	u := &models.User{Email: email, Username: strings.Split(email, "@")[0], PhoneNumber: phone, Role: models.UserRoleUser}
	u.ID = uuid.NewString()
	u.CreatedAt = time.Now()
	m.users[u.ID] = u
	return u
}

func (m *memStore) addListing(owner *models.User) *models.Listing {
	l := &models.Listing{
		UploadedByID: owner.ID,
		Title:        "Electronic Drill",
		Category:     models.CategoryElectronics,
		ListingType:  models.ListingTypeRental,
	}
	l.ID = uuid.NewString()
	m.listings[l.ID] = l
	return l
}

func (m *memStore) addOffer(by *models.User, listing *models.Listing, status models.OfferStatus) *models.Offer {
	o := &models.Offer{
		OfferedByID:    by.ID,
		ListingID:      listing.ID,
		Price:          50,
		Status:         status,
		ScheduledStart: time.Now().Add(time.Hour),
		ScheduledEnd:   time.Now().Add(3 * time.Hour),
		TimeUnit:       models.TimeUnitHourly,
		TimeDelta:      2,
	}
	o.ID = uuid.NewString()
	m.offers[o.ID] = o
	return o
}

// --- users ---

type fakeUserRepo struct{ m *memStore }

func (r *fakeUserRepo) Create(_ *gorm.DB, user *models.User) error {
	for _, u := range r.m.users {
		if strings.EqualFold(u.Email, user.Email) {
			return repositories.ErrUserAlreadyExists
		}
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	cp := *user
	r.m.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) FindByID(_ *gorm.DB, id string) (*models.User, error) {
	u, ok := r.m.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) FindByEmail(_ *gorm.DB, email string) (*models.User, error) {
	for _, u := range r.m.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) FindByPhoneNumber(_ *gorm.DB, phone string) (*models.User, error) {
	for _, u := range r.m.users {
		if u.PhoneNumber == phone {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) Update(_ *gorm.DB, user *models.User) error {
	if _, ok := r.m.users[user.ID]; !ok {
		return repositories.ErrUserNotFound
	}
	cp := *user
	r.m.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) UpdatePassword(_ *gorm.DB, userID, passwordHash string) error {
	u, ok := r.m.users[userID]
	if !ok {
		return repositories.ErrUserNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

func (r *fakeUserRepo) FindWithFilter(_ *gorm.DB, filter repositories.UserFilter) ([]models.User, int64, error) {
	var out []models.User
	for _, u := range r.m.users {
		if filter.Role != "" && u.Role != filter.Role {
			continue
		}
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, int64(len(out)), nil
}

// --- refresh tokens ---

type fakeRefreshTokenRepo struct{ m *memStore }

func (r *fakeRefreshTokenRepo) Create(_ *gorm.DB, token *models.RefreshToken) error {
	cp := *token
	r.m.refreshTokens[token.JTI] = &cp
	return nil
}

func (r *fakeRefreshTokenRepo) FindByJTI(_ *gorm.DB, jti string) (*models.RefreshToken, error) {
	t, ok := r.m.refreshTokens[jti]
	if !ok {
		return nil, repositories.ErrRefreshTokenNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *fakeRefreshTokenRepo) DeleteByJTI(_ *gorm.DB, jti string) error {
	if _, ok := r.m.refreshTokens[jti]; !ok {
		return repositories.ErrRefreshTokenNotFound
	}
	delete(r.m.refreshTokens, jti)
	return nil
}

func (r *fakeRefreshTokenRepo) DeleteByUserID(_ *gorm.DB, userID string) error {
	for jti, t := range r.m.refreshTokens {
		if t.UserID == userID {
			delete(r.m.refreshTokens, jti)
		}
	}
	return nil
}

func (r *fakeRefreshTokenRepo) CleanExpired(_ *gorm.DB, now time.Time) (int64, error) {
	var n int64
	for jti, t := range r.m.refreshTokens {
		if t.ExpiresAt.Before(now) {
			delete(r.m.refreshTokens, jti)
			n++
		}
	}
	return n, nil
}

// --- listings ---

type fakeListingRepo struct{ m *memStore }

func (r *fakeListingRepo) Create(_ *gorm.DB, listing *models.Listing) error {
	if listing.ID == "" {
		listing.ID = uuid.NewString()
	}
	cp := *listing
	r.m.listings[listing.ID] = &cp
	return nil
}

func (r *fakeListingRepo) FindByID(_ *gorm.DB, id string) (*models.Listing, error) {
	l, ok := r.m.listings[id]
	if !ok {
		return nil, repositories.ErrListingNotFound
	}
	cp := *l
	if u, ok := r.m.users[l.UploadedByID]; ok {
		cp.UploadedBy = *u
	}
	return &cp, nil
}

func (r *fakeListingRepo) FindByIDs(db *gorm.DB, ids []string) ([]models.Listing, error) {
	var out []models.Listing
	for _, id := range ids {
		if l, err := r.FindByID(db, id); err == nil {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (r *fakeListingRepo) FindWithFilter(_ *gorm.DB, filter repositories.ListingFilter) ([]models.Listing, int64, error) {
	var out []models.Listing
	for _, l := range r.m.listings {
		if filter.UploadedByID != "" && l.UploadedByID != filter.UploadedByID {
			continue
		}
		if filter.Category != "" && l.Category != filter.Category {
			continue
		}
		out = append(out, *l)
	}
	return out, int64(len(out)), nil
}

func (r *fakeListingRepo) Update(_ *gorm.DB, listing *models.Listing) error {
	l, ok := r.m.listings[listing.ID]
	if !ok {
		return repositories.ErrListingNotFound
	}
	l.Title, l.Description, l.Category, l.ListingType = listing.Title, listing.Description, listing.Category, listing.ListingType
	return nil
}

func (r *fakeListingRepo) ReplacePhotos(_ *gorm.DB, listingID string, photos []models.ListingPhoto) ([]models.ListingPhoto, error) {
	l := r.m.listings[listingID]
	old := l.Photos
	l.Photos = photos
	return old, nil
}

func (r *fakeListingRepo) ReplaceRates(_ *gorm.DB, listingID string, rates []models.ListingRate) error {
	r.m.listings[listingID].Rates = rates
	return nil
}

func (r *fakeListingRepo) ReplaceLocations(_ *gorm.DB, listingID string, locations []models.ListingLocation) error {
	r.m.listings[listingID].Locations = locations
	return nil
}

func (r *fakeListingRepo) Delete(_ *gorm.DB, id string) error {
	if _, ok := r.m.listings[id]; !ok {
		return repositories.ErrListingNotFound
	}
	delete(r.m.listings, id)
	return nil
}

func (r *fakeListingRepo) FindNearby(_ *gorm.DB, lat, lng, radiusKm float64, limit int) ([]repositories.NearbyListing, error) {
	return nil, nil
}

// --- offers ---

type fakeOfferRepo struct{ m *memStore }

func (r *fakeOfferRepo) load(o *models.Offer) *models.Offer {
	cp := *o
	if l, ok := r.m.listings[o.ListingID]; ok {
		cp.Listing = *l
	}
	if u, ok := r.m.users[o.OfferedByID]; ok {
		cp.OfferedBy = *u
	}
	return &cp
}

func (r *fakeOfferRepo) Create(_ *gorm.DB, offer *models.Offer) error {
	if offer.ID == "" {
		offer.ID = uuid.NewString()
	}
	cp := *offer
	r.m.offers[offer.ID] = &cp
	return nil
}

func (r *fakeOfferRepo) FindByID(_ *gorm.DB, id string) (*models.Offer, error) {
	o, ok := r.m.offers[id]
	if !ok {
		return nil, repositories.ErrOfferNotFound
	}
	return r.load(o), nil
}

func (r *fakeOfferRepo) FindByIDForUpdate(db *gorm.DB, id string) (*models.Offer, error) {
	return r.FindByID(db, id)
}

func (r *fakeOfferRepo) UpdateStatus(_ *gorm.DB, offerID string, status models.OfferStatus) error {
	o, ok := r.m.offers[offerID]
	if !ok {
		return repositories.ErrOfferNotFound
	}
	o.Status = status
	return nil
}

func (r *fakeOfferRepo) FindByOfferer(_ *gorm.DB, userID string, page, pageSize int) ([]models.Offer, int64, error) {
	var out []models.Offer
	for _, o := range r.m.offers {
		if o.OfferedByID == userID {
			out = append(out, *r.load(o))
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeOfferRepo) FindReceived(_ *gorm.DB, ownerID string, status models.OfferStatus, page, pageSize int) ([]models.Offer, int64, error) {
	var out []models.Offer
	for _, o := range r.m.offers {
		loaded := r.load(o)
		if loaded.Listing.UploadedByID != ownerID || (status != "" && o.Status != status) {
			continue
		}
		out = append(out, *loaded)
	}
	return out, int64(len(out)), nil
}

func (r *fakeOfferRepo) FindByListing(_ *gorm.DB, listingID string) ([]models.Offer, error) {
	var out []models.Offer
	for _, o := range r.m.offers {
		if o.ListingID == listingID {
			out = append(out, *r.load(o))
		}
	}
	return out, nil
}

func (r *fakeOfferRepo) RejectExpiredPending(_ *gorm.DB, now time.Time) (int64, error) {
	var n int64
	for _, o := range r.m.offers {
		if o.Status == models.OfferStatusPending && o.ScheduledEnd.Before(now) {
			o.Status = models.OfferStatusRejected
			n++
		}
	}
	return n, nil
}

// --- reviews ---

type fakeReviewRepo struct{ m *memStore }

func (r *fakeReviewRepo) Create(_ *gorm.DB, review *models.Review) error {
	if review.ID == "" {
		review.ID = uuid.NewString()
	}
	if u, ok := r.m.users[review.ReviewerID]; ok {
		review.Reviewer = *u
	}
	if u, ok := r.m.users[review.UserID]; ok {
		review.User = *u
	}
	cp := *review
	r.m.reviews = append(r.m.reviews, &cp)
	return nil
}

func (r *fakeReviewRepo) FindByUser(_ *gorm.DB, userID string) ([]models.Review, error) {
	var out []models.Review
	for _, rv := range r.m.reviews {
		if rv.UserID == userID {
			out = append(out, *rv)
		}
	}
	return out, nil
}

func (r *fakeReviewRepo) AverageRating(_ *gorm.DB, userID string) (float64, error) {
	var sum, n int
	for _, rv := range r.m.reviews {
		if rv.UserID == userID {
			sum += rv.Rating
			n++
		}
	}
	if n == 0 {
		return 0, nil
	}
	return float64(sum) / float64(n), nil
}

func (r *fakeReviewRepo) AverageRatings(db *gorm.DB, userIDs []string) (map[string]float64, error) {
	out := map[string]float64{}
	for _, id := range userIDs {
		avg, _ := r.AverageRating(db, id)
		if avg > 0 {
			out[id] = avg
		}
	}
	return out, nil
}

// --- transactions ---

type fakeTransactionRepo struct{ m *memStore }

func (r *fakeTransactionRepo) Create(_ *gorm.DB, txn *models.Transaction) error {
	if txn.ID == "" {
		txn.ID = uuid.NewString()
	}
	cp := *txn
	r.m.transactions[txn.ID] = &cp
	return nil
}

func (r *fakeTransactionRepo) FindByID(_ *gorm.DB, id string) (*models.Transaction, error) {
	t, ok := r.m.transactions[id]
	if !ok {
		return nil, repositories.ErrTransactionNotFound
	}
	cp := *t
	if u, ok := r.m.users[t.UserID]; ok {
		cp.User = *u
	}
	if o, ok := r.m.offers[t.OfferID]; ok {
		cp.Offer = *(&fakeOfferRepo{m: r.m}).load(o)
	}
	return &cp, nil
}

func (r *fakeTransactionRepo) FindByUser(db *gorm.DB, userID string, page, pageSize int) ([]models.Transaction, int64, error) {
	var out []models.Transaction
	for id, t := range r.m.transactions {
		if t.UserID == userID {
			loaded, _ := r.FindByID(db, id)
			out = append(out, *loaded)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeTransactionRepo) ExistsForOffer(_ *gorm.DB, offerID string) (bool, error) {
	for _, t := range r.m.transactions {
		if t.OfferID == offerID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeTransactionRepo) UpdateStatus(_ *gorm.DB, id string, status models.TransactionStatus) error {
	t, ok := r.m.transactions[id]
	if !ok {
		return repositories.ErrTransactionNotFound
	}
	t.Status = status
	return nil
}

func newRefreshToken(userID, jti string) *models.RefreshToken {
	return &models.RefreshToken{UserID: userID, JTI: jti, ExpiresAt: time.Now().Add(time.Hour)}
}
