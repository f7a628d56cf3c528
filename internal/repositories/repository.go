package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// Repository groups the repositories and exposes the root connection for transactions.
type Repository interface {
	Journey() JourneyRepository
	Session() SessionRepository

	DB() *gorm.DB
	// WithTransaction runs fn in a transaction and passes the tx to use as the
	// tx argument of repository calls.
	WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error
}

func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
