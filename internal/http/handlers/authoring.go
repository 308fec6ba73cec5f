package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/lecturegate-backend/internal/domain/learning"
	"github.com/yungbote/lecturegate-backend/internal/http/response"
	"github.com/yungbote/lecturegate-backend/internal/platform/logger"
	"github.com/yungbote/lecturegate-backend/internal/services"
)

type AuthoringHandler struct {
	log       *logger.Logger
	authoring services.AuthoringService
}

func NewAuthoringHandler(log *logger.Logger, authoring services.AuthoringService) *AuthoringHandler {
	return &AuthoringHandler{
		log:       log.With("handler", "AuthoringHandler"),
		authoring: authoring,
	}
}

type validateQuizRequest struct {
	Questions []learning.QuizQuestion `json:"questions"`
}

// POST /api/validate-quiz
func (h *AuthoringHandler) ValidateQuiz(c *gin.Context) {
	var req validateQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badJSON(c, err)
		return
	}
	if err := h.authoring.ValidateQuiz(req.Questions); err != nil {
		respondErr(c, h.log, err, "validate_quiz_failed")
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

// POST /api/courses
func (h *AuthoringHandler) CreateCourse(c *gin.Context) {
	var course learning.Course
	if err := c.ShouldBindJSON(&course); err != nil {
		badJSON(c, err)
		return
	}
	saved, err := h.authoring.SaveCourse(c.Request.Context(), &course)
	if errors.Is(err, services.ErrCourseExists) {
		response.RespondError(c, http.StatusConflict, "course_exists", err)
		return
	}
	if err != nil {
		respondErr(c, h.log, err, "save_course_failed")
		return
	}
	response.RespondCreated(c, gin.H{"course": saved})
}

// GET /api/courses/:id
func (h *AuthoringHandler) GetCourse(c *gin.Context) {
	id, err := parseUUID(c.Param("id"), "invalid_course_id")
	if err != nil {
		respondErr(c, h.log, err, "bad_request")
		return
	}
	course, err := h.authoring.GetCourse(c.Request.Context(), id)
	if err != nil {
		respondErr(c, h.log, err, "load_course_failed")
		return
	}
	response.RespondOK(c, gin.H{"course": course})
}
