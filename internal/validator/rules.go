package validator

import (
	"log"

	"rentshare_backend/internal/auth"
	"rentshare_backend/internal/models"

	"github.com/go-playground/validator/v10"
)

func registerCustomRules(v *validator.Validate) {
	// a rule that fails to register is a programming error, the process must not start
	mustRegister := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			log.Fatalf("failed to register custom validation tag '%s': %v", tag, err)
		}
	}

	mustRegister("password-bytes", func(fl validator.FieldLevel) bool {
		return len(fl.Field().String()) <= auth.MaxPasswordBytes
	})
	mustRegister("is-user-role", choice(func(s string) bool { return models.UserRole(s).Valid() }))
	mustRegister("is-category", choice(func(s string) bool { return models.Category(s).Valid() }))
	mustRegister("is-listing-type", choice(func(s string) bool { return models.ListingType(s).Valid() }))
	mustRegister("is-time-unit", choice(func(s string) bool { return models.TimeUnit(s).Valid() }))
	mustRegister("is-offer-status", choice(func(s string) bool { return models.OfferStatus(s).Valid() }))
	mustRegister("is-transaction-status", choice(func(s string) bool { return models.TransactionStatus(s).Valid() }))
}

// choice accepts empty values; presence is the job of 'required'.
func choice(valid func(string) bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		if value == "" {
			return true
		}
		return valid(value)
	}
}
