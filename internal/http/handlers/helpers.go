package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/lecturegate-backend/internal/domain/learning"
	"github.com/yungbote/lecturegate-backend/internal/http/response"
	"github.com/yungbote/lecturegate-backend/internal/platform/apierr"
	"github.com/yungbote/lecturegate-backend/internal/platform/ctxutil"
	"github.com/yungbote/lecturegate-backend/internal/platform/logger"
)

func parseUUID(raw, code string) (uuid.UUID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return uuid.Nil, apierr.New(http.StatusBadRequest, code, fmt.Errorf("missing %s", strings.TrimPrefix(code, "invalid_")))
	}
	id, err := uuid.Parse(raw)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, apierr.New(http.StatusBadRequest, code, fmt.Errorf("malformed id %q", raw))
	}
	return id, nil
}

func parseIndex(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, apierr.New(http.StatusBadRequest, "invalid_lecture_index", errors.New("missing lectureIndex"))
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, apierr.New(http.StatusBadRequest, "invalid_lecture_index", fmt.Errorf("lectureIndex must be a non-negative integer, got %q", raw))
	}
	return n, nil
}

// lectureRef is the (course, learner, lecture) triple most gating endpoints take.
type lectureRef struct {
	CourseID  uuid.UUID
	LearnerID uuid.UUID
	Index     int
}

func lectureRefFromQuery(c *gin.Context, withIndex bool) (lectureRef, error) {
	var ref lectureRef
	var err error
	if ref.CourseID, err = parseUUID(c.Query("courseId"), "invalid_course_id"); err != nil {
		return ref, err
	}
	if ref.LearnerID, err = parseUUID(c.Query("learnerId"), "invalid_learner_id"); err != nil {
		return ref, err
	}
	if withIndex {
		if ref.Index, err = parseIndex(c.Query("lectureIndex")); err != nil {
			return ref, err
		}
	}
	return ref, nil
}

// respondErr writes err through the domain error mapping. Validation errors
// keep their flat body; server-side failures are logged.
func respondErr(c *gin.Context, log *logger.Logger, err error, fallbackCode string) {
	var ve *learning.ValidationError
	if errors.As(err, &ve) {
		response.RespondValidation(c, ve)
		return
	}
	ae := apierr.FromError(err, fallbackCode)
	if ae.Status >= 500 && log != nil {
		fields := append([]interface{}{"path", c.FullPath(), "code", ae.Code, "error", err}, ctxutil.LogFields(c.Request.Context())...)
		log.Error("request failed", fields...)
	}
	response.RespondError(c, ae.Status, ae.Code, ae.Err)
}

func badJSON(c *gin.Context, err error) {
	response.RespondError(c, http.StatusBadRequest, "invalid_json", err)
}
