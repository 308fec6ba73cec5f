package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/lecturegate-backend/internal/http/response"
	"github.com/yungbote/lecturegate-backend/internal/platform/apierr"
	"github.com/yungbote/lecturegate-backend/internal/platform/logger"
	"github.com/yungbote/lecturegate-backend/internal/services"
)

type GatingHandler struct {
	log      *logger.Logger
	gate     services.AccessGate
	progress services.ProgressService
}

func NewGatingHandler(log *logger.Logger, gate services.AccessGate, progress services.ProgressService) *GatingHandler {
	return &GatingHandler{
		log:      log.With("handler", "GatingHandler"),
		gate:     gate,
		progress: progress,
	}
}

// GET /api/status?courseId&learnerId
func (h *GatingHandler) Status(c *gin.Context) {
	ref, err := lectureRefFromQuery(c, false)
	if err != nil {
		respondErr(c, h.log, err, "bad_request")
		return
	}
	st, err := h.gate.Statuses(c.Request.Context(), ref.LearnerID, ref.CourseID)
	if err != nil {
		respondErr(c, h.log, err, "load_status_failed")
		return
	}
	response.RespondOK(c, st)
}

// GET /api/authorize-view?courseId&learnerId&lectureIndex
func (h *GatingHandler) AuthorizeView(c *gin.Context) {
	ref, err := lectureRefFromQuery(c, true)
	if err != nil {
		respondErr(c, h.log, err, "bad_request")
		return
	}
	d, err := h.gate.AuthorizeView(c.Request.Context(), ref.LearnerID, ref.CourseID, ref.Index)
	if err != nil {
		respondErr(c, h.log, err, "authorize_view_failed")
		return
	}
	if d.Denied {
		response.RespondDenied(c, apierr.DenialStatus(d.Reason), d.Reason, d.Status)
		return
	}
	response.RespondOK(c, gin.H{"allowed": true, "status": d.Status})
}

type submitRequest struct {
	CourseID     string   `json:"courseId"`
	LearnerID    string   `json:"learnerId"`
	LectureIndex *int     `json:"lectureIndex"`
	Answers      []string `json:"answers"`
}

// POST /api/submit
func (h *GatingHandler) Submit(c *gin.Context) {
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badJSON(c, err)
		return
	}
	ref, err := bodyRef(req.CourseID, req.LearnerID, req.LectureIndex)
	if err != nil {
		respondErr(c, h.log, err, "bad_request")
		return
	}
	d, err := h.gate.AuthorizeSubmission(c.Request.Context(), ref.LearnerID, ref.CourseID, ref.Index, req.Answers)
	if err != nil {
		respondErr(c, h.log, err, "submit_failed")
		return
	}
	if d.Denied {
		response.RespondDenied(c, apierr.DenialStatus(d.Reason), d.Reason, "")
		return
	}
	response.RespondOK(c, gin.H{
		"attempt":       d.Attempt,
		"progress":      d.Progress,
		"status":        d.Status,
		"next_unlocked": d.NextUnlocked,
	})
}

type viewRequest struct {
	CourseID         string `json:"courseId"`
	LearnerID        string `json:"learnerId"`
	LectureIndex     *int   `json:"lectureIndex"`
	TimeSpentSeconds int    `json:"timeSpentSeconds"`
	FullyViewed      bool   `json:"fullyViewed"`
}

// POST /api/view
func (h *GatingHandler) RecordView(c *gin.Context) {
	var req viewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badJSON(c, err)
		return
	}
	ref, err := bodyRef(req.CourseID, req.LearnerID, req.LectureIndex)
	if err != nil {
		respondErr(c, h.log, err, "bad_request")
		return
	}
	res, err := h.progress.RecordView(c.Request.Context(), ref.LearnerID, ref.CourseID, ref.Index, services.ViewEvent{
		TimeSpent:   time.Duration(req.TimeSpentSeconds) * time.Second,
		FullyViewed: req.FullyViewed,
	})
	if err != nil {
		respondErr(c, h.log, err, "record_view_failed")
		return
	}
	if res.Denied {
		response.RespondDenied(c, apierr.DenialStatus(res.Reason), res.Reason, "")
		return
	}
	response.RespondOK(c, gin.H{"progress": res.Progress, "status": res.Status})
}

// GET /api/attempts?courseId&learnerId&lectureIndex
func (h *GatingHandler) ListAttempts(c *gin.Context) {
	ref, err := lectureRefFromQuery(c, true)
	if err != nil {
		respondErr(c, h.log, err, "bad_request")
		return
	}
	rows, err := h.gate.ListAttempts(c.Request.Context(), ref.LearnerID, ref.CourseID, ref.Index)
	if err != nil {
		respondErr(c, h.log, err, "list_attempts_failed")
		return
	}
	response.RespondOK(c, gin.H{"attempts": rows})
}

// GET /api/exam?courseId&learnerId&lectureIndex
func (h *GatingHandler) DescribeExam(c *gin.Context) {
	ref, err := lectureRefFromQuery(c, true)
	if err != nil {
		respondErr(c, h.log, err, "bad_request")
		return
	}
	info, err := h.gate.DescribeExam(c.Request.Context(), ref.LearnerID, ref.CourseID, ref.Index)
	if err != nil {
		respondErr(c, h.log, err, "describe_exam_failed")
		return
	}
	response.RespondOK(c, info)
}

func bodyRef(courseID, learnerID string, index *int) (lectureRef, error) {
	var ref lectureRef
	var err error
	if ref.CourseID, err = parseUUID(courseID, "invalid_course_id"); err != nil {
		return ref, err
	}
	if ref.LearnerID, err = parseUUID(learnerID, "invalid_learner_id"); err != nil {
		return ref, err
	}
	if index == nil || *index < 0 {
		return ref, apierr.New(http.StatusBadRequest, "invalid_lecture_index", nil)
	}
	ref.Index = *index
	return ref, nil
}

