package services

import (
	"errors"

	"rentshare_backend/internal/auth"
	"rentshare_backend/internal/repositories"
	"rentshare_backend/pkg/apperrors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Transactor runs fn inside a database transaction.
type Transactor func(db *gorm.DB, fn func(tx *gorm.DB) error) error

func GormTransactor(db *gorm.DB, fn func(tx *gorm.DB) error) error {
	return db.Transaction(fn)
}

// handleRepoError maps repository sentinels to AppErrors. AppErrors pass through.
func handleRepoError(err error) error {
	if err == nil {
		return nil
	}
	if appErr, ok := apperrors.AsAppError(err); ok {
		return appErr
	}
	switch {
	case errors.Is(err, repositories.ErrUserNotFound):
		return apperrors.ErrUserNotFound
	case errors.Is(err, repositories.ErrListingNotFound):
		return apperrors.ErrListingNotFound
	case errors.Is(err, repositories.ErrOfferNotFound):
		return apperrors.ErrOfferNotFound
	case errors.Is(err, repositories.ErrTransactionNotFound):
		return apperrors.ErrTransactionNotFound
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperrors.ErrNotFound(err)
	}
	return apperrors.InternalError(err)
}

// passwordError reports a rejected password on field.
func passwordError(field, password string) error {
	switch err := auth.ValidatePassword(password); {
	case errors.Is(err, auth.ErrWeakPassword):
		return apperrors.FieldError(field, "Ensure this field has at least 8 characters")
	case errors.Is(err, auth.ErrPasswordTooLong):
		return apperrors.FieldError(field, "Ensure this field has no more than 72 bytes")
	}
	return nil
}

// validUUID guards queries against uuid columns; postgres rejects malformed ids with an error.
func validUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
