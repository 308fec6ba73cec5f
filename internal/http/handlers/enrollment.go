package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/lecturegate-backend/internal/http/response"
	"github.com/yungbote/lecturegate-backend/internal/platform/logger"
	"github.com/yungbote/lecturegate-backend/internal/services"
)

type EnrollmentHandler struct {
	log        *logger.Logger
	enrollment services.EnrollmentService
}

func NewEnrollmentHandler(log *logger.Logger, enrollment services.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{
		log:        log.With("handler", "EnrollmentHandler"),
		enrollment: enrollment,
	}
}

type enrollRequest struct {
	CourseID  string `json:"courseId"`
	LearnerID string `json:"learnerId"`
}

// POST /api/enrollments
func (h *EnrollmentHandler) Enroll(c *gin.Context) {
	var req enrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badJSON(c, err)
		return
	}
	courseID, err := parseUUID(req.CourseID, "invalid_course_id")
	if err != nil {
		respondErr(c, h.log, err, "bad_request")
		return
	}
	learnerID, err := parseUUID(req.LearnerID, "invalid_learner_id")
	if err != nil {
		respondErr(c, h.log, err, "bad_request")
		return
	}
	e, err := h.enrollment.Enroll(c.Request.Context(), learnerID, courseID)
	if err != nil {
		respondErr(c, h.log, err, "enroll_failed")
		return
	}
	response.RespondOK(c, gin.H{"enrollment": e})
}
