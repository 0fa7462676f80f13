package types

import (
	"errors"
	"math"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		_ = validate.RegisterValidation("finite", func(fl validator.FieldLevel) bool {
			f := fl.Field().Float()
			return !math.IsNaN(f) && !math.IsInf(f, 0)
		})
	})
	return validate
}

// ValidateMarketState rejects snapshots no decision can be made on: a missing position,
// a non-finite or non-positive price, or an empty tick range.
func ValidateMarketState(s *MarketState) error {
	if s == nil {
		return &ValidationError{Field: "state", Reason: "snapshot is nil"}
	}
	if err := validatorInstance().Struct(s); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return &ValidationError{Field: fe.Namespace(), Reason: describeTag(fe)}
		}
		return &ValidationError{Reason: err.Error()}
	}
	return nil
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "finite":
		return "must be finite"
	case "gt":
		return "must be greater than " + fe.Param()
	case "gtfield":
		return "must be greater than " + fe.Param()
	default:
		return "failed " + fe.Tag() + " check"
	}
}
