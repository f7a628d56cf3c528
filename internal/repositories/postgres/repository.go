package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/toeic-session-service/internal/models"
	"github.com/SAP-F-2025/toeic-session-service/internal/repositories"
)

type repository struct {
	db      *gorm.DB
	journey repositories.JourneyRepository
	session repositories.SessionRepository
}

func NewRepository(db *gorm.DB) repositories.Repository {
	return &repository{
		db:      db,
		journey: NewJourneyPostgreSQL(db),
		session: NewSessionPostgreSQL(db),
	}
}

func (r *repository) Journey() repositories.JourneyRepository { return r.journey }
func (r *repository) Session() repositories.SessionRepository { return r.session }
func (r *repository) DB() *gorm.DB                            { return r.db }

func (r *repository) WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

// AutoMigrate creates or updates every table the service owns.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Journey{},
		&models.Stage{},
		&models.Day{},
		&models.FinalTest{},
		&models.Question{},
		&models.SessionRecord{},
	)
}
