package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/toeic-session-service/internal/services"
	"github.com/SAP-F-2025/toeic-session-service/internal/utils"
)

type HandlerManager struct {
	journeyHandler *JourneyHandler
	sessionHandler *SessionHandler
	tokens         TokenParser
	logger         utils.Logger
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	tokens TokenParser,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		journeyHandler: NewJourneyHandler(serviceManager.Journey(), logger),
		sessionHandler: NewSessionHandler(serviceManager.Session(), serviceManager.Export(), logger),
		tokens:         tokens,
		logger:         logger,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.Use(utils.RequestID(), utils.ContextLogger(hm.logger), utils.LoggerMiddleware(hm.logger))

	// Health check endpoint
	router.GET("/health", HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1", AuthMiddleware(hm.tokens))
	{
		// Journey content
		journeys := v1.Group("/journeys")
		{
			journeys.GET("/:id", hm.journeyHandler.GetJourney)
			journeys.GET("/:id/stages", hm.journeyHandler.GetStages)
		}

		stages := v1.Group("/stages")
		{
			stages.GET("/:id/lessons", hm.journeyHandler.GetLessons)
			stages.GET("/:id/tests", hm.journeyHandler.GetTests)
		}

		// The learner's journey store
		current := v1.Group("/journey")
		{
			current.GET("/state", hm.journeyHandler.GetState)
			current.POST("/reset", hm.journeyHandler.ResetState)
			current.PUT("/stage/:id", hm.journeyHandler.SelectStage)
			current.PUT("/lesson/:id", hm.journeyHandler.SelectLesson)
		}

		// Session routes
		sessions := v1.Group("/sessions")
		{
			sessions.POST("", hm.sessionHandler.StartSession)
			sessions.GET("", hm.sessionHandler.ListSessions)
			sessions.GET("/:id", hm.sessionHandler.GetSession)
			sessions.POST("/:id/goto", hm.sessionHandler.Goto)
			sessions.POST("/:id/answers", hm.sessionHandler.Answer)

			// Timer
			sessions.POST("/:id/pause", hm.sessionHandler.Pause)
			sessions.POST("/:id/resume", hm.sessionHandler.Resume)
			sessions.POST("/:id/add-time", hm.sessionHandler.AddTime)

			// Submit button
			sessions.POST("/:id/submit", hm.sessionHandler.Submit)
			sessions.POST("/:id/confirm", hm.sessionHandler.Confirm)
			sessions.POST("/:id/cancel", hm.sessionHandler.Cancel)
			sessions.POST("/:id/exit", hm.sessionHandler.Exit)

			// Results
			sessions.GET("/:id/result", hm.sessionHandler.GetResult)
			sessions.GET("/:id/export", hm.sessionHandler.ExportSession)
		}
	}
}
