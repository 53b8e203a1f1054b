package apperrors

import (
	"net/http"
)

// =========================================================================
// Factories
// =========================================================================

// ErrNotFound converts a repository miss into a 404.
func ErrNotFound(err error) *AppError {
	return Wrap(err, CodeNotFound, "resource", "Resource not found", http.StatusNotFound)
}

// NotFound is ErrNotFound with a domain specific message.
func NotFound(domain, message string) *AppError {
	return New(CodeNotFound, domain, message, http.StatusNotFound)
}

func ErrAlreadyExists(err error) *AppError {
	return Wrap(err, CodeAlreadyExists, "resource", "Resource already exists", http.StatusConflict)
}

func ErrConflict(err error, domain, message string) *AppError {
	return Wrap(err, CodeConflict, domain, message, http.StatusConflict)
}

func ErrInvalidOperation(domain, message string) *AppError {
	return New(CodeInvalidOperation, domain, message, http.StatusBadRequest)
}

// ErrInvalidStatus is returned when a state transition is not allowed from the current state.
func ErrInvalidStatus(domain, message string) *AppError {
	return New(CodeInvalidStatus, domain, message, http.StatusConflict)
}

// =========================================================================
// Predefined errors
// =========================================================================

// --- Auth ---

var ErrInvalidToken = New(
	CodeInvalidToken,
	"auth",
	"Invalid or expired token",
	http.StatusUnauthorized,
)

var ErrEmailAlreadyExists = New(
	CodeAlreadyExists,
	"auth",
	"A user with this email already exists",
	http.StatusConflict,
)

var ErrInsufficientPermissions = New(
	CodeForbidden,
	"auth",
	"Insufficient permissions",
	http.StatusForbidden,
)

// --- Uploads ---

var ErrFileTooLarge = New(
	CodeLimitExceeded,
	"validation",
	"File size exceeds the allowed limit",
	http.StatusRequestEntityTooLarge,
)

var ErrInvalidFileType = New(
	CodeValidationFailed,
	"validation",
	"The provided file type is not allowed",
	http.StatusUnsupportedMediaType,
)

// --- Marketplace ---

var ErrListingNotFound = NotFound("listing", "Listing not found")

var ErrOfferNotFound = NotFound("offer", "Offer not found")

var ErrUserNotFound = NotFound("user", "User not found")

var ErrTransactionNotFound = NotFound("transaction", "Transaction not found")

var ErrNotListingOwner = New(
	CodeForbidden,
	"listing",
	"Only the owner of the listing can do this",
	http.StatusForbidden,
)

var ErrOwnListingOffer = ErrInvalidOperation("offer", "You cannot make an offer on your own listing")

var ErrSelfReview = ErrInvalidOperation("review", "You cannot review yourself")

var ErrNearbyUnavailable = New(
	CodeExternalServiceError,
	"geo",
	"Nearby search is temporarily unavailable",
	http.StatusServiceUnavailable,
)
