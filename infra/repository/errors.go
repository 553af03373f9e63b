package repository

import (
	"errors"

	"github.com/marketpay/stripe-mirakl-connector/pkg/domain"
	"gorm.io/gorm"
)

// MapGormErrorToDomain converts GORM errors to domain errors so callers
// never see infrastructure error types. Requires TranslateError on the
// gorm session for duplicate-key detection.
func MapGormErrorToDomain(err error) error {
	if err == nil {
		return nil
	}

	currentErr := err
	for currentErr != nil {
		switch {
		case errors.Is(currentErr, gorm.ErrDuplicatedKey):
			return domain.ErrAlreadyExists
		case errors.Is(currentErr, gorm.ErrRecordNotFound):
			return domain.ErrNotFound
		}
		currentErr = errors.Unwrap(currentErr)
	}

	return err
}
