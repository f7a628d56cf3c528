package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/toeic-session-service/internal/models"
	"github.com/SAP-F-2025/toeic-session-service/internal/repositories"
)

type SessionPostgreSQL struct {
	db *gorm.DB
}

func NewSessionPostgreSQL(db *gorm.DB) repositories.SessionRepository {
	return &SessionPostgreSQL{db: db}
}

func (s *SessionPostgreSQL) Create(ctx context.Context, tx *gorm.DB, record *models.SessionRecord) error {
	db := s.getDB(tx)
	return db.WithContext(ctx).Create(record).Error
}

func (s *SessionPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.SessionRecord, error) {
	db := s.getDB(tx)
	var record models.SessionRecord
	if err := db.WithContext(ctx).Where("id = ?", id).First(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func (s *SessionPostgreSQL) Update(ctx context.Context, tx *gorm.DB, record *models.SessionRecord) error {
	db := s.getDB(tx)
	return db.WithContext(ctx).Save(record).Error
}

func (s *SessionPostgreSQL) SaveProgress(ctx context.Context, tx *gorm.DB, record *models.SessionRecord) (bool, error) {
	db := s.getDB(tx)
	result := db.WithContext(ctx).
		Model(&models.SessionRecord{}).
		Where("id = ? AND status = ?", record.ID, models.SessionActive).
		Updates(map[string]interface{}{
			"timer":   record.Timer,
			"answers": record.Answers,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (s *SessionPostgreSQL) ListByUser(ctx context.Context, tx *gorm.DB, userID string, filters repositories.SessionFilters) ([]models.SessionRecord, int64, error) {
	db := s.getDB(tx)
	var records []models.SessionRecord
	var total int64

	query := db.WithContext(ctx).Model(&models.SessionRecord{}).Where("user_id = ?", userID)
	query = s.applyFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}
	if err := query.Order("started_at DESC").Find(&records).Error; err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

func (s *SessionPostgreSQL) ListOpen(ctx context.Context, tx *gorm.DB) ([]models.SessionRecord, error) {
	db := s.getDB(tx)
	var records []models.SessionRecord
	if err := db.WithContext(ctx).Where("status = ?", models.SessionActive).Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (s *SessionPostgreSQL) applyFilters(query *gorm.DB, filters repositories.SessionFilters) *gorm.DB {
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.Mode != "" {
		query = query.Where("mode = ?", filters.Mode)
	}
	if filters.DateFrom != nil {
		query = query.Where("started_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("started_at <= ?", *filters.DateTo)
	}
	return query
}

func (s *SessionPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return s.db
}
