package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/toeic-session-service/internal/services"
	"github.com/SAP-F-2025/toeic-session-service/internal/session"
	"github.com/SAP-F-2025/toeic-session-service/internal/utils"
)

type SessionHandler struct {
	BaseHandler
	sessionService services.SessionService
	exportService  services.ExportService
}

func NewSessionHandler(
	sessionService services.SessionService,
	exportService services.ExportService,
	logger utils.Logger,
) *SessionHandler {
	return &SessionHandler{
		BaseHandler:    NewBaseHandler(logger),
		sessionService: sessionService,
		exportService:  exportService,
	}
}

// sessionAction is an operation on one session that returns its new snapshot.
type sessionAction func(c *gin.Context, userID, sessionID string) (*session.Snapshot, error)

func (h *SessionHandler) run(c *gin.Context, message string, action sessionAction) {
	sessionID := ParseStringIDParam(c, "id")
	if sessionID == "" {
		return
	}
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}

	h.LogRequest(c, message, "session_id", sessionID)
	snap, err := action(c, userID, sessionID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// StartSession starts a lesson or final-test session
// @Summary Start session
// @Description Starts a timed or untimed session over a lesson or a final test
// @Tags sessions
// @Accept json
// @Produce json
// @Param session body services.StartSessionRequest true "Session to start"
// @Success 201 {object} session.Snapshot
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse "No questions"
// @Router /sessions [post]
func (h *SessionHandler) StartSession(c *gin.Context) {
	var req services.StartSessionRequest
	if !h.bindJSON(c, &req) {
		return
	}
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Starting session", "mode", req.Mode)
	snap, err := h.sessionService.Start(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, snap)
}

// ListSessions lists the learner's past and open sessions
// @Summary List sessions
// @Tags sessions
// @Produce json
// @Param page query int false "Page" default(1)
// @Param size query int false "Page size" default(20)
// @Param status query string false "active, submitted, timed_out or cancelled"
// @Param mode query string false "LESSON or FINAL_TEST"
// @Success 200 {object} ListResponse{data=[]models.SessionRecord}
// @Router /sessions [get]
func (h *SessionHandler) ListSessions(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}

	records, total, err := h.sessionService.History(c.Request.Context(), userID, parseSessionFilters(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, ListResponse{Data: records, Total: total})
}

// GetSession returns the current snapshot
// @Summary Get session
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} session.Snapshot
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /sessions/{id} [get]
func (h *SessionHandler) GetSession(c *gin.Context) {
	h.run(c, "Getting session", func(c *gin.Context, userID, sessionID string) (*session.Snapshot, error) {
		return h.sessionService.Get(c.Request.Context(), userID, sessionID)
	})
}

// Goto moves to a question
// @Summary Go to question
// @Tags sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param body body services.GotoRequest true "Question index"
// @Success 200 {object} session.Snapshot
// @Failure 400 {object} ErrorResponse
// @Router /sessions/{id}/goto [post]
func (h *SessionHandler) Goto(c *gin.Context) {
	var req services.GotoRequest
	if !h.bindJSON(c, &req) {
		return
	}
	h.run(c, "Moving to question", func(c *gin.Context, userID, sessionID string) (*session.Snapshot, error) {
		return h.sessionService.Goto(c.Request.Context(), userID, sessionID, &req)
	})
}

// Answer records a selection for the current question
// @Summary Answer
// @Tags sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param body body services.AnswerRequest true "Question key and letter"
// @Success 200 {object} session.Snapshot
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Session is in review"
// @Router /sessions/{id}/answers [post]
func (h *SessionHandler) Answer(c *gin.Context) {
	var req services.AnswerRequest
	if !h.bindJSON(c, &req) {
		return
	}
	h.run(c, "Recording answer", func(c *gin.Context, userID, sessionID string) (*session.Snapshot, error) {
		return h.sessionService.Answer(c.Request.Context(), userID, sessionID, &req)
	})
}

// Pause pauses the countdown
// @Summary Pause
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} session.Snapshot
// @Failure 409 {object} ErrorResponse "Untimed or finished"
// @Router /sessions/{id}/pause [post]
func (h *SessionHandler) Pause(c *gin.Context) {
	h.run(c, "Pausing session", func(c *gin.Context, userID, sessionID string) (*session.Snapshot, error) {
		return h.sessionService.Pause(c.Request.Context(), userID, sessionID)
	})
}

// Resume resumes a paused countdown
// @Summary Resume
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} session.Snapshot
// @Router /sessions/{id}/resume [post]
func (h *SessionHandler) Resume(c *gin.Context) {
	h.run(c, "Resuming session", func(c *gin.Context, userID, sessionID string) (*session.Snapshot, error) {
		return h.sessionService.Resume(c.Request.Context(), userID, sessionID)
	})
}

// AddTime extends the countdown
// @Summary Add time
// @Tags sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param body body services.AddTimeRequest true "Seconds to add"
// @Success 200 {object} session.Snapshot
// @Failure 400 {object} ErrorResponse
// @Router /sessions/{id}/add-time [post]
func (h *SessionHandler) AddTime(c *gin.Context) {
	var req services.AddTimeRequest
	if !h.bindJSON(c, &req) {
		return
	}
	h.run(c, "Adding time", func(c *gin.Context, userID, sessionID string) (*session.Snapshot, error) {
		return h.sessionService.AddTime(c.Request.Context(), userID, sessionID, &req)
	})
}

// Submit presses the submit button
// @Summary Submit
// @Description Advances a lesson, asks for confirmation or finalizes the session
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} services.SubmitResponse
// @Failure 409 {object} ErrorResponse "Submit is disabled"
// @Failure 500 {object} ErrorResponse "Submission failed; the session stays open"
// @Router /sessions/{id}/submit [post]
func (h *SessionHandler) Submit(c *gin.Context) {
	h.submit(c, "Submitting session", h.sessionService.Submit)
}

// Confirm confirms a submission held for confirmation
// @Summary Confirm submit
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} services.SubmitResponse
// @Failure 409 {object} ErrorResponse "Nothing to confirm"
// @Router /sessions/{id}/confirm [post]
func (h *SessionHandler) Confirm(c *gin.Context) {
	h.submit(c, "Confirming submission", h.sessionService.Confirm)
}

type pressFunc func(ctx context.Context, userID, sessionID string) (*services.SubmitResponse, error)

// submit answers 200 with the outcome. A failed finalize keeps the session
// open, so the error response still lets the client retry.
func (h *SessionHandler) submit(c *gin.Context, message string, press pressFunc) {
	sessionID := ParseStringIDParam(c, "id")
	if sessionID == "" {
		return
	}
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}

	h.LogRequest(c, message, "session_id", sessionID)
	resp, err := press(c.Request.Context(), userID, sessionID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Cancel withdraws a submission held for confirmation
// @Summary Cancel submit
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} session.Snapshot
// @Router /sessions/{id}/cancel [post]
func (h *SessionHandler) Cancel(c *gin.Context) {
	h.run(c, "Cancelling submission", func(c *gin.Context, userID, sessionID string) (*session.Snapshot, error) {
		return h.sessionService.Cancel(c.Request.Context(), userID, sessionID)
	})
}

// Exit leaves the session
// @Summary Exit session
// @Description Leaves the session; an unfinished session is recorded as cancelled
// @Tags sessions
// @Param id path string true "Session ID"
// @Success 204
// @Router /sessions/{id}/exit [post]
func (h *SessionHandler) Exit(c *gin.Context) {
	sessionID := ParseStringIDParam(c, "id")
	if sessionID == "" {
		return
	}
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Exiting session", "session_id", sessionID)
	if err := h.sessionService.Exit(c.Request.Context(), userID, sessionID); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetResult returns the graded result
// @Summary Session result
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} session.Result
// @Failure 409 {object} ErrorResponse "Not submitted yet"
// @Router /sessions/{id}/result [get]
func (h *SessionHandler) GetResult(c *gin.Context) {
	sessionID := ParseStringIDParam(c, "id")
	if sessionID == "" {
		return
	}
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}

	result, err := h.sessionService.Result(c.Request.Context(), userID, sessionID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ExportSession downloads the graded result as an xlsx workbook
// @Summary Export session
// @Tags sessions
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path string true "Session ID"
// @Success 200 {file} file
// @Failure 409 {object} ErrorResponse "Not submitted yet"
// @Router /sessions/{id}/export [get]
func (h *SessionHandler) ExportSession(c *gin.Context) {
	sessionID := ParseStringIDParam(c, "id")
	if sessionID == "" {
		return
	}
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Exporting session", "session_id", sessionID)
	file, err := h.exportService.ExportSession(c.Request.Context(), userID, sessionID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.Data(http.StatusOK, file.ContentType, file.Data)
}
