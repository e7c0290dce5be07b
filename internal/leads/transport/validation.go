package transport

import (
	"leadboard_backend/internal/leads/domain"
	"leadboard_backend/platform/validator"

	playground "github.com/go-playground/validator/v10"
)

// RegisterValidations adds the leads-specific tags used by the DTOs above.
func RegisterValidations(v *validator.Validator) error {
	if err := v.RegisterValidation("industry", func(fl playground.FieldLevel) bool {
		return domain.IsIndustryTag(fl.Field().String())
	}); err != nil {
		return err
	}
	return v.RegisterValidation("leadstatus", func(fl playground.FieldLevel) bool {
		_, ok := domain.ParseStatus(fl.Field().String())
		return ok
	})
}
