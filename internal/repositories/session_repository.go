package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/toeic-session-service/internal/models"
)

type SessionFilters struct {
	Status   *models.SessionStatus `json:"status"`
	Mode     string                `json:"mode"`
	DateFrom *time.Time            `json:"date_from"`
	DateTo   *time.Time            `json:"date_to"`
	Limit    int                   `json:"limit"`
	Offset   int                   `json:"offset"`
}

type SessionRepository interface {
	Create(ctx context.Context, tx *gorm.DB, record *models.SessionRecord) error
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.SessionRecord, error)
	Update(ctx context.Context, tx *gorm.DB, record *models.SessionRecord) error
	// SaveProgress writes the timer and answers of a session that is still active.
	// It reports false when the session has already been closed.
	SaveProgress(ctx context.Context, tx *gorm.DB, record *models.SessionRecord) (bool, error)
	ListByUser(ctx context.Context, tx *gorm.DB, userID string, filters SessionFilters) ([]models.SessionRecord, int64, error)
	// ListOpen returns sessions still marked active, used to restore timers after a restart.
	ListOpen(ctx context.Context, tx *gorm.DB) ([]models.SessionRecord, error)
}
