package services

import (
	"log/slog"
	"time"

	"github.com/SAP-F-2025/toeic-session-service/internal/cache"
	"github.com/SAP-F-2025/toeic-session-service/internal/events"
	"github.com/SAP-F-2025/toeic-session-service/internal/repositories"
	"github.com/SAP-F-2025/toeic-session-service/internal/session"
	"github.com/SAP-F-2025/toeic-session-service/internal/validator"
)

type serviceManager struct {
	journey JourneyService
	session SessionService
	export  ExportService
}

// NewServiceManager wires the services over a shared repository, cache and publisher.
func NewServiceManager(
	repo repositories.Repository,
	store cache.CacheService,
	publisher events.EventPublisher,
	validator *validator.Validator,
	settings SessionSettings,
	checkpointTTL time.Duration,
	logger *slog.Logger,
) ServiceManager {
	journeys := NewJourneyService(repo, publisher, logger)
	checkpoints := cache.NewSessionCache[session.Checkpoint](store, checkpointTTL)
	sessions := NewSessionService(repo, journeys, checkpoints, publisher, validator, settings, logger)

	return &serviceManager{
		journey: journeys,
		session: sessions,
		export:  NewExportService(sessions, logger),
	}
}

func (m *serviceManager) Journey() JourneyService { return m.journey }
func (m *serviceManager) Session() SessionService { return m.session }
func (m *serviceManager) Export() ExportService   { return m.export }
