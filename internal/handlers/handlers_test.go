package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"rentshare_backend/internal/auth"
	"rentshare_backend/internal/services"
	"rentshare_backend/internal/services/dto"
	"rentshare_backend/internal/validator"
	"rentshare_backend/pkg/apperrors"
	"rentshare_backend/pkg/contextkeys"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// Unimplemented methods of the embedded interfaces panic if a test reaches them.

type fakeAuthService struct {
	services.AuthService
	loginErr error
	reset    *dto.ResetPasswordRequest
	resetErr error
}

func (f *fakeAuthService) Login(_ *gorm.DB, req *dto.TokenRequest) (*dto.TokenResponse, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &dto.TokenResponse{Access: "access", Refresh: "refresh"}, nil
}

func (f *fakeAuthService) Register(_ context.Context, _ *gorm.DB, req *dto.RegisterRequest) (*dto.UserResponse, error) {
	return &dto.UserResponse{ID: "user-1", Email: req.Email}, nil
}

func (f *fakeAuthService) ResetPassword(_ context.Context, _ *gorm.DB, req *dto.ResetPasswordRequest) error {
	f.reset = req
	return f.resetErr
}

type fakeListingService struct {
	services.ListingService
	created   *dto.CreateListingRequest
	deletedID string
}

func (f *fakeListingService) CreateListing(_ context.Context, _ *gorm.DB, userID string, req *dto.CreateListingRequest) (*dto.ListingResponse, error) {
	f.created = req
	return &dto.ListingResponse{ID: "listing-1", UploadedBy: userID, Title: req.Title}, nil
}

func (f *fakeListingService) DeleteListing(_ context.Context, _ *gorm.DB, _, _, listingID string) error {
	f.deletedID = listingID
	return nil
}

type fakeOfferService struct {
	services.OfferService
	created *dto.CreateOfferRequest
	err     error
}

func (f *fakeOfferService) CreateOffer(_ *gorm.DB, _ string, req *dto.CreateOfferRequest) (*dto.OfferResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.created = req
	return &dto.OfferResponse{ID: "offer-1"}, nil
}

type fakeReviewService struct {
	services.ReviewService
	reviewerID string
}

func (f *fakeReviewService) CreateReview(_ *gorm.DB, reviewerID string, req *dto.CreateReviewRequest) (*dto.ReviewResponse, error) {
	f.reviewerID = reviewerID
	return &dto.ReviewResponse{ID: "review-1", Rating: req.Rating}, nil
}

type fakeTransactionService struct {
	services.TransactionService
	created *dto.CreateTransactionRequest
}

func (f *fakeTransactionService) CreateTransaction(_ context.Context, _ *gorm.DB, _ string, req *dto.CreateTransactionRequest) (*dto.TransactionResponse, error) {
	f.created = req
	return &dto.TransactionResponse{ID: "txn-1"}, nil
}

type testServer struct {
	router   *gin.Engine
	auth     *fakeAuthService
	listings *fakeListingService
	offers   *fakeOfferService
	reviews  *fakeReviewService
	txns     *fakeTransactionService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	auth.Configure("handlers-secret", time.Minute, time.Hour)

	ts := &testServer{
		auth:     &fakeAuthService{},
		listings: &fakeListingService{},
		offers:   &fakeOfferService{},
		reviews:  &fakeReviewService{},
		txns:     &fakeTransactionService{},
	}
	base := NewBaseHandler(validator.New())

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(string(contextkeys.DBContextKey), (*gorm.DB)(nil))
		c.Next()
	})
	api := r.Group("/api/v1")
	NewAuthHandler(base, ts.auth).RegisterRoutes(api)
	NewListingHandler(base, ts.listings).RegisterRoutes(api)
	NewOfferHandler(base, ts.offers).RegisterRoutes(api)
	NewReviewHandler(base, ts.reviews).RegisterRoutes(api)
	NewTransactionHandler(base, ts.txns).RegisterRoutes(api)
	ts.router = r
	return ts
}

func (ts *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func bearer(t *testing.T, req *http.Request, userID string) *http.Request {
	t.Helper()
	token, err := auth.GenerateToken(userID, "user")
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func jsonRequest(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func errorDetails(t *testing.T, w *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body struct {
		Error struct {
			Details map[string]string `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Error.Details
}

func TestToken_FieldErrors(t *testing.T) {
	ts := newTestServer(t)
	ts.auth.loginErr = apperrors.FieldError("email", "Email is not registered")

	w := ts.do(jsonRequest(http.MethodPost, "/api/v1/token", `{"email":"nobody@example.com","password":"password"}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, map[string]string{"email": "Email is not registered"}, errorDetails(t, w))
}

func TestToken_RequiresFields(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(jsonRequest(http.MethodPost, "/api/v1/token", `{}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	details := errorDetails(t, w)
	assert.Equal(t, "This field is required", details["email"])
	assert.Equal(t, "This field is required", details["password"])
}

func TestToken_Success(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(jsonRequest(http.MethodPost, "/api/v1/token", `{"email":"user1@gmail.com","password":"password"}`))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"access":"access"`)
}

func TestCreateOffer_RequiresAuth(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(jsonRequest(http.MethodPost, "/api/v1/offers", `{}`))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Nil(t, ts.offers.created)
}

func TestCreateOffer_ValidationBody(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(bearer(t, jsonRequest(http.MethodPost, "/api/v1/offers", `{"price": "10.00"}`), "user-1"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	details := errorDetails(t, w)
	assert.Equal(t, "This field is required", details["listing_id"])
	assert.Equal(t, "This field is required", details["scheduled_start"])
	assert.Equal(t, "This field is required", details["time_unit"])
	assert.NotContains(t, details, "price")
}

func TestCreateOffer_ServiceFieldError(t *testing.T) {
	ts := newTestServer(t)
	ts.offers.err = apperrors.NonFieldError("End time must be after start time")

	body := `{"listing_id":"l-1","price":10,"scheduled_start":"2026-01-02T10:00:00Z",` +
		`"scheduled_end":"2026-01-02T09:00:00Z","time_unit":"H","time_delta":1}`
	w := ts.do(bearer(t, jsonRequest(http.MethodPost, "/api/v1/offers", body), "user-1"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "End time must be after start time", errorDetails(t, w)[apperrors.NonFieldKey])
}

func TestCreateOffer_Created(t *testing.T) {
	ts := newTestServer(t)

	body := `{"listing_id":"l-1","price":"12.50","scheduled_start":"2026-01-02T10:00:00Z",` +
		`"scheduled_end":"2026-01-02T12:00:00Z","time_unit":"H","time_delta":2}`
	w := ts.do(bearer(t, jsonRequest(http.MethodPost, "/api/v1/offers", body), "user-1"))
	require.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, ts.offers.created)
	assert.Equal(t, 12.5, ts.offers.created.Price.Float64())
	assert.Equal(t, 2, ts.offers.created.TimeDelta)
}

func TestReceivedOffers_InvalidStatus(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/offers/received?status=X", nil)
	w := ts.do(bearer(t, req, "user-1"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, `"X" is not a valid choice`, errorDetails(t, w)["status"])
}

func listingForm(t *testing.T, withPhoto bool) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("title", "Electronic Drill"))
	require.NoError(t, mw.WriteField("description", "Cordless"))
	require.NoError(t, mw.WriteField("category", "ELECTRONICS"))
	require.NoError(t, mw.WriteField("listing_type", "RENTAL"))
	require.NoError(t, mw.WriteField("rates", `[{"time_unit":"H","rate":"10.00"},{"time_unit":"D","rate":50}]`))
	require.NoError(t, mw.WriteField("locations", `[{"latitude":1.31745,"longitude":103.80704,"query":"Farrer Road"}]`))
	if withPhoto {
		part, err := mw.CreateFormFile("photos", "drill.jpg")
		require.NoError(t, err)
		_, err = part.Write([]byte("jpeg bytes"))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestCreateListing_Multipart(t *testing.T) {
	ts := newTestServer(t)

	body, contentType := listingForm(t, true)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/listings", body)
	req.Header.Set("Content-Type", contentType)
	w := ts.do(bearer(t, req, "owner-1"))

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	got := ts.listings.created
	require.NotNil(t, got)
	assert.Equal(t, "Electronic Drill", got.Title)
	require.Len(t, got.Photos, 1)
	assert.Equal(t, "drill.jpg", got.Photos[0].Filename)
	require.Len(t, got.Rates, 2)
	assert.Equal(t, 50.0, got.Rates[1].Rate.Float64())
	require.Len(t, got.Locations, 1)
	assert.Equal(t, "Farrer Road", got.Locations[0].Query)
}

func TestCreateListing_RequiresPhoto(t *testing.T) {
	ts := newTestServer(t)

	body, contentType := listingForm(t, false)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/listings", body)
	req.Header.Set("Content-Type", contentType)
	w := ts.do(bearer(t, req, "owner-1"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, errorDetails(t, w), "photos")
	assert.Nil(t, ts.listings.created)
}

func TestDeleteListingByQuery(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(bearer(t, httptest.NewRequest(http.MethodDelete, "/api/v1/listing", nil), "owner-1"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "This field is required", errorDetails(t, w)["id"])

	w = ts.do(bearer(t, httptest.NewRequest(http.MethodDelete, "/api/v1/listing?id=listing-9", nil), "owner-1"))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "listing-9", ts.listings.deletedID)
}

func TestNearby_RequiresCoordinates(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(httptest.NewRequest(http.MethodGet, "/api/v1/listings/nearby?lng=103.8", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "This field is required", errorDetails(t, w)["lat"])
}

func TestRegister_PasswordOverBcryptLimit(t *testing.T) {
	ts := newTestServer(t)

	body := `{"email":"a@gmail.com","username":"a","password":"` + strings.Repeat("p", 100) + `"}`
	w := ts.do(jsonRequest(http.MethodPost, "/api/v1/register", body))

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Ensure this field has no more than 72 bytes", errorDetails(t, w)["password"])
}

func TestResetPassword_AccountCheckBeforePasswordRules(t *testing.T) {
	ts := newTestServer(t)
	ts.auth.resetErr = apperrors.NonFieldError("Both email and phone number not found")

	w := ts.do(jsonRequest(http.MethodPost, "/api/v1/reset-password",
		`{"email":"nobody@gmail.com","phone_number":"00000000","new_password":"short"}`))

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, map[string]string{apperrors.NonFieldKey: "Both email and phone number not found"}, errorDetails(t, w))
	require.NotNil(t, ts.auth.reset)
	assert.Equal(t, "short", ts.auth.reset.NewPassword)
}

func TestResetPassword_Success(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(jsonRequest(http.MethodPost, "/api/v1/reset-password",
		`{"email":"user1@gmail.com","phone_number":"99999999","new_password":"newpassword"}`))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Password has been reset successfully")
}

func TestCreateReview(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(jsonRequest(http.MethodPost, "/api/v1/reviews", `{"user_id":"`+uuid.NewString()+`","rating":5}`))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = ts.do(bearer(t, jsonRequest(http.MethodPost, "/api/v1/reviews", `{"user_id":"`+uuid.NewString()+`","rating":6}`), "user-1"))
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Ensure this value is less than or equal to 5", errorDetails(t, w)["rating"])

	w = ts.do(bearer(t, jsonRequest(http.MethodPost, "/api/v1/reviews", `{"user_id":"`+uuid.NewString()+`","rating":4,"description":"Amazing seller"}`), "user-1"))
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "user-1", ts.reviews.reviewerID)
}

func TestCreateTransaction(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(bearer(t, jsonRequest(http.MethodPost, "/api/v1/transactions", `{"amount":"10.00"}`), "user-1"))
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "This field is required", errorDetails(t, w)["offer_id"])

	w = ts.do(bearer(t, jsonRequest(http.MethodPost, "/api/v1/transactions",
		`{"offer_id":"offer-1","amount":"50.00","payment_id":"pay-1"}`), "user-1"))
	require.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, ts.txns.created)
	assert.Equal(t, "pay-1", ts.txns.created.PaymentID)
}
