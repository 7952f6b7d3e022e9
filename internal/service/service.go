package service

import (
	"context"
	"errors"
	"strings"

	"campus_essentials/internal/repository"
	"campus_essentials/models"
	apperr "campus_essentials/pkg/errors"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
)

const maxPasswordBytes = 72

var tracer = otel.Tracer("campus_essentials/internal/service")

// Caller is the authenticated identity a request runs as.
type Caller struct {
	UserID uint
	Role   string
}

func (c Caller) IsAdmin() bool { return c.Role == models.RoleAdmin }

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		return models.IsValidCategory(fl.Field().String())
	})
	_ = v.RegisterValidation("condition", func(fl validator.FieldLevel) bool {
		return models.IsValidCondition(fl.Field().String())
	})
	// bcrypt reads at most 72 bytes, counted as bytes rather than runes
	_ = v.RegisterValidation("bcrypt", func(fl validator.FieldLevel) bool {
		return len(fl.Field().String()) <= maxPasswordBytes
	})
	return v
}

// validationError turns the first failed field into an INVALID_ARGUMENT.
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperr.InvalidArg("invalid input")
	}
	fe := verrs[0]
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return apperr.InvalidArg(field + " is required")
	case "email":
		return apperr.InvalidArg(field + " must be a valid email")
	case "min":
		return apperr.InvalidArg(field + " must be at least " + fe.Param() + " characters")
	case "max":
		return apperr.InvalidArg(field + " must be at most " + fe.Param() + " characters")
	case "bcrypt":
		return apperr.InvalidArg(field + " must be at most 72 bytes")
	case "category", "condition", "oneof":
		return apperr.InvalidArg(field + " is not a recognised value")
	default:
		return apperr.InvalidArg(field + " is invalid")
	}
}

// storeError maps a repository error onto the application taxonomy.
// notFound is returned for repository.ErrNotFound.
func storeError(err error, notFound error, op string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return notFound
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return apperr.FromContext(op, err)
	default:
		return apperr.Internal(op, err)
	}
}
