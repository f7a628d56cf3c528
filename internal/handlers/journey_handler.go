package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/toeic-session-service/internal/journey"
	"github.com/SAP-F-2025/toeic-session-service/internal/services"
	"github.com/SAP-F-2025/toeic-session-service/internal/utils"
)

type JourneyHandler struct {
	BaseHandler
	journeyService services.JourneyService
}

func NewJourneyHandler(journeyService services.JourneyService, logger utils.Logger) *JourneyHandler {
	return &JourneyHandler{
		BaseHandler:    NewBaseHandler(logger),
		journeyService: journeyService,
	}
}

// loadFunc is the shape shared by the journey loads and selections.
type loadFunc func(c *gin.Context, userID string, id uint) (journey.State, error)

// respondState runs load for the :id parameter. Failed loads still carry the
// store state so clients can render the error it recorded.
func (h *JourneyHandler) respondState(c *gin.Context, message string, load loadFunc) {
	id := ParseUintParam(c, "id")
	if id == 0 {
		return
	}
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}

	h.LogRequest(c, message, "id", id)
	state, err := load(c, userID, id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

// GetJourney loads a journey into the learner's store
// @Summary Load journey
// @Description Loads the journey and makes it the current journey
// @Tags journeys
// @Produce json
// @Param id path uint true "Journey ID"
// @Success 200 {object} journey.State
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /journeys/{id} [get]
func (h *JourneyHandler) GetJourney(c *gin.Context) {
	h.respondState(c, "Loading journey", func(c *gin.Context, userID string, id uint) (journey.State, error) {
		return h.journeyService.LoadJourney(c.Request.Context(), userID, id)
	})
}

// GetStages loads the stages of a journey
// @Summary Load stages
// @Tags journeys
// @Produce json
// @Param id path uint true "Journey ID"
// @Success 200 {object} journey.State
// @Failure 404 {object} ErrorResponse
// @Router /journeys/{id}/stages [get]
func (h *JourneyHandler) GetStages(c *gin.Context) {
	h.respondState(c, "Loading stages", func(c *gin.Context, userID string, id uint) (journey.State, error) {
		return h.journeyService.LoadStages(c.Request.Context(), userID, id)
	})
}

// GetLessons loads the lessons (days) of a stage
// @Summary Load lessons
// @Tags journeys
// @Produce json
// @Param id path uint true "Stage ID"
// @Success 200 {object} journey.State
// @Failure 404 {object} ErrorResponse
// @Router /stages/{id}/lessons [get]
func (h *JourneyHandler) GetLessons(c *gin.Context) {
	h.respondState(c, "Loading lessons", func(c *gin.Context, userID string, id uint) (journey.State, error) {
		return h.journeyService.LoadLessons(c.Request.Context(), userID, id)
	})
}

// GetTests loads the final tests of a stage
// @Summary Load final tests
// @Tags journeys
// @Produce json
// @Param id path uint true "Stage ID"
// @Success 200 {object} journey.State
// @Failure 404 {object} ErrorResponse
// @Router /stages/{id}/tests [get]
func (h *JourneyHandler) GetTests(c *gin.Context) {
	h.respondState(c, "Loading final tests", func(c *gin.Context, userID string, id uint) (journey.State, error) {
		return h.journeyService.LoadTests(c.Request.Context(), userID, id)
	})
}

// SelectStage makes a stage current
// @Summary Select stage
// @Tags journeys
// @Produce json
// @Param id path uint true "Stage ID"
// @Success 200 {object} journey.State
// @Failure 409 {object} ErrorResponse "Stage is locked"
// @Router /journey/stage/{id} [put]
func (h *JourneyHandler) SelectStage(c *gin.Context) {
	h.respondState(c, "Selecting stage", func(c *gin.Context, userID string, id uint) (journey.State, error) {
		return h.journeyService.SelectStage(c.Request.Context(), userID, id)
	})
}

// SelectLesson makes a lesson current
// @Summary Select lesson
// @Tags journeys
// @Produce json
// @Param id path uint true "Lesson ID"
// @Success 200 {object} journey.State
// @Failure 409 {object} ErrorResponse "Stage is locked"
// @Router /journey/lesson/{id} [put]
func (h *JourneyHandler) SelectLesson(c *gin.Context) {
	h.respondState(c, "Selecting lesson", func(c *gin.Context, userID string, id uint) (journey.State, error) {
		return h.journeyService.SelectLesson(c.Request.Context(), userID, id)
	})
}

// GetState returns the learner's journey store
// @Summary Journey state
// @Tags journeys
// @Produce json
// @Success 200 {object} journey.State
// @Router /journey/state [get]
func (h *JourneyHandler) GetState(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.journeyService.State(userID))
}

// ResetState clears the learner's journey store
// @Summary Reset journey state
// @Tags journeys
// @Produce json
// @Success 200 {object} journey.State
// @Router /journey/reset [post]
func (h *JourneyHandler) ResetState(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	h.LogRequest(c, "Resetting journey state")
	c.JSON(http.StatusOK, h.journeyService.Reset(userID))
}
