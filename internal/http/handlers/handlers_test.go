package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/lecturegate-backend/internal/domain/learning"
	"github.com/yungbote/lecturegate-backend/internal/modules/assessment"
	"github.com/yungbote/lecturegate-backend/internal/platform/logger"
	"github.com/yungbote/lecturegate-backend/internal/services"
)

type fakeGate struct {
	view       services.ViewDecision
	submission services.SubmissionDecision
	err        error
	lastIndex  int
	lastAnswer []string
}

func (f *fakeGate) Statuses(context.Context, uuid.UUID, uuid.UUID) (services.CourseStatus, error) {
	current := 1
	return services.CourseStatus{
		Lectures: []learning.LectureState{{Index: 0, Status: learning.StatusCompleted}, {Index: 1, Status: learning.StatusUnlocked}},
		Current:  &current,
	}, f.err
}

func (f *fakeGate) AuthorizeView(_ context.Context, _, _ uuid.UUID, index int) (services.ViewDecision, error) {
	f.lastIndex = index
	return f.view, f.err
}

func (f *fakeGate) AuthorizeSubmission(_ context.Context, _, _ uuid.UUID, index int, answers []string) (services.SubmissionDecision, error) {
	f.lastIndex = index
	f.lastAnswer = answers
	return f.submission, f.err
}

func (f *fakeGate) ListAttempts(context.Context, uuid.UUID, uuid.UUID, int) ([]*learning.QuizAttempt, error) {
	return []*learning.QuizAttempt{}, f.err
}

func (f *fakeGate) DescribeExam(context.Context, uuid.UUID, uuid.UUID, int) (assessment.FormalExamInfo, error) {
	return assessment.FormalExamInfo{}, f.err
}

type fakeProgress struct{}

func (fakeProgress) RecordView(context.Context, uuid.UUID, uuid.UUID, int, services.ViewEvent) (services.ViewResult, error) {
	return services.ViewResult{Status: learning.StatusUnlocked}, nil
}

type fakeAuthoring struct {
	err error
}

func (f fakeAuthoring) ValidateQuiz([]learning.QuizQuestion) error { return f.err }

func (f fakeAuthoring) SaveCourse(_ context.Context, c *learning.Course) (*learning.Course, error) {
	return c, f.err
}

func (f fakeAuthoring) GetCourse(context.Context, uuid.UUID) (*learning.Course, error) {
	return nil, learning.NewNotFoundError("course", "")
}

func newTestRouter(t *testing.T, gate *fakeGate, authoring fakeAuthoring) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	gh := NewGatingHandler(log, gate, fakeProgress{})
	ah := NewAuthoringHandler(log, authoring)

	r := gin.New()
	r.GET("/api/status", gh.Status)
	r.GET("/api/authorize-view", gh.AuthorizeView)
	r.POST("/api/submit", gh.Submit)
	r.POST("/api/validate-quiz", ah.ValidateQuiz)
	r.POST("/api/courses", ah.CreateCourse)
	r.GET("/api/courses/:id", ah.GetCourse)
	return r
}

func do(r *gin.Engine, method, target string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestStatus(t *testing.T) {
	r := newTestRouter(t, &fakeGate{}, fakeAuthoring{})
	rec := do(r, http.MethodGet, "/api/status?courseId="+uuid.NewString()+"&learnerId="+uuid.NewString(), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: want=200 got=%d body=%s", rec.Code, rec.Body.String())
	}
	body := decode(t, rec)
	lectures, ok := body["lectures"].([]any)
	if !ok || len(lectures) != 2 || body["current"] != float64(1) {
		t.Fatalf("status body: unexpected %s", rec.Body.String())
	}
}

func TestStatusRejectsMalformedIDs(t *testing.T) {
	r := newTestRouter(t, &fakeGate{}, fakeAuthoring{})
	rec := do(r, http.MethodGet, "/api/status?courseId=nope&learnerId="+uuid.NewString(), nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: want=400 got=%d", rec.Code)
	}
	body := decode(t, rec)
	if body["error"].(map[string]any)["code"] != "invalid_course_id" {
		t.Fatalf("code: unexpected %s", rec.Body.String())
	}
}

func TestAuthorizeView(t *testing.T) {
	tests := []struct {
		name   string
		gate   *fakeGate
		status int
		check  func(t *testing.T, body map[string]any)
	}{
		{
			name:   "allowed",
			gate:   &fakeGate{view: services.ViewDecision{Allowed: true, Status: learning.StatusUnlocked}},
			status: http.StatusOK,
			check: func(t *testing.T, body map[string]any) {
				if body["allowed"] != true || body["status"] != "unlocked" {
					t.Fatalf("unexpected body %v", body)
				}
			},
		},
		{
			name:   "content completed",
			gate:   &fakeGate{view: services.ViewDecision{Allowed: true, Status: learning.StatusContentCompleted}},
			status: http.StatusOK,
			check: func(t *testing.T, body map[string]any) {
				if body["allowed"] != true || body["status"] != "content-completed" {
					t.Fatalf("unexpected body %v", body)
				}
			},
		},
		{
			name:   "locked",
			gate:   &fakeGate{view: services.ViewDecision{Denied: true, Reason: learning.DenyLocked, Status: learning.StatusLocked}},
			status: http.StatusForbidden,
			check: func(t *testing.T, body map[string]any) {
				if body["denied"] != true || body["reason"] != "Locked" {
					t.Fatalf("unexpected body %v", body)
				}
			},
		},
		{
			name:   "course missing",
			gate:   &fakeGate{err: learning.NewNotFoundError("course", "x")},
			status: http.StatusNotFound,
		},
		{
			name:   "store failure",
			gate:   &fakeGate{err: learning.NewUpstreamError("course.get", errors.New("db down"))},
			status: http.StatusBadGateway,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRouter(t, tt.gate, fakeAuthoring{})
			rec := do(r, http.MethodGet, "/api/authorize-view?courseId="+uuid.NewString()+"&learnerId="+uuid.NewString()+"&lectureIndex=2", nil)
			if rec.Code != tt.status {
				t.Fatalf("status: want=%d got=%d body=%s", tt.status, rec.Code, rec.Body.String())
			}
			if tt.gate.err == nil && tt.gate.lastIndex != 2 {
				t.Fatalf("lecture index: want=2 got=%d", tt.gate.lastIndex)
			}
			if tt.check != nil {
				tt.check(t, decode(t, rec))
			}
		})
	}
}

func TestAuthorizeViewRejectsBadIndex(t *testing.T) {
	r := newTestRouter(t, &fakeGate{}, fakeAuthoring{})
	rec := do(r, http.MethodGet, "/api/authorize-view?courseId="+uuid.NewString()+"&learnerId="+uuid.NewString()+"&lectureIndex=-1", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: want=400 got=%d", rec.Code)
	}
}

func TestSubmit(t *testing.T) {
	idx := 0
	gate := &fakeGate{submission: services.SubmissionDecision{
		Attempt: &learning.QuizAttempt{Score: 80, Passed: true, Source: learning.AttemptSourceInline},
		Status:  learning.StatusCompleted,
	}}
	r := newTestRouter(t, gate, fakeAuthoring{})
	rec := do(r, http.MethodPost, "/api/submit", submitRequest{
		CourseID:     uuid.NewString(),
		LearnerID:    uuid.NewString(),
		LectureIndex: &idx,
		Answers:      []string{"A", "B"},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status: want=200 got=%d body=%s", rec.Code, rec.Body.String())
	}
	if len(gate.lastAnswer) != 2 {
		t.Fatalf("answers: want 2 got %v", gate.lastAnswer)
	}
	attempt := decode(t, rec)["attempt"].(map[string]any)
	if attempt["score"] != float64(80) || attempt["passed"] != true {
		t.Fatalf("attempt: unexpected %v", attempt)
	}
}

func TestSubmitDenials(t *testing.T) {
	idx := 1
	tests := []struct {
		reason learning.DenialReason
		status int
	}{
		{learning.DenyNotEnrolled, http.StatusForbidden},
		{learning.DenyLocked, http.StatusForbidden},
		{learning.DenyNoAssessment, http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(string(tt.reason), func(t *testing.T) {
			gate := &fakeGate{submission: services.SubmissionDecision{Denied: true, Reason: tt.reason}}
			r := newTestRouter(t, gate, fakeAuthoring{})
			rec := do(r, http.MethodPost, "/api/submit", submitRequest{
				CourseID:     uuid.NewString(),
				LearnerID:    uuid.NewString(),
				LectureIndex: &idx,
			})
			if rec.Code != tt.status {
				t.Fatalf("status: want=%d got=%d", tt.status, rec.Code)
			}
			body := decode(t, rec)
			if body["denied"] != true || body["reason"] != string(tt.reason) {
				t.Fatalf("body: unexpected %v", body)
			}
		})
	}
}

func TestSubmitRequiresLectureIndex(t *testing.T) {
	r := newTestRouter(t, &fakeGate{}, fakeAuthoring{})
	rec := do(r, http.MethodPost, "/api/submit", map[string]any{
		"courseId":  uuid.NewString(),
		"learnerId": uuid.NewString(),
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: want=400 got=%d", rec.Code)
	}
}

func TestValidateQuiz(t *testing.T) {
	r := newTestRouter(t, &fakeGate{}, fakeAuthoring{})
	rec := do(r, http.MethodPost, "/api/validate-quiz", validateQuizRequest{})
	if rec.Code != http.StatusOK || decode(t, rec)["ok"] != true {
		t.Fatalf("valid quiz: want 200 ok got=%d body=%s", rec.Code, rec.Body.String())
	}

	r = newTestRouter(t, &fakeGate{}, fakeAuthoring{err: learning.NewValidationError(assessment.CodeMinQuestions, "questions", "too few")})
	rec = do(r, http.MethodPost, "/api/validate-quiz", validateQuizRequest{})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("invalid quiz: want=422 got=%d", rec.Code)
	}
	body := decode(t, rec)
	if body["error"] != assessment.CodeMinQuestions || body["field"] != "questions" {
		t.Fatalf("invalid quiz body: unexpected %v", body)
	}
}

func TestCreateCourse(t *testing.T) {
	r := newTestRouter(t, &fakeGate{}, fakeAuthoring{})
	rec := do(r, http.MethodPost, "/api/courses", map[string]any{"code": "10001", "title": "c"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: want=201 got=%d", rec.Code)
	}

	r = newTestRouter(t, &fakeGate{}, fakeAuthoring{err: services.ErrCourseExists})
	rec = do(r, http.MethodPost, "/api/courses", map[string]any{"code": "10001"})
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate: want=409 got=%d", rec.Code)
	}

	rec = do(r, http.MethodGet, "/api/courses/"+uuid.NewString(), nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get missing: want=404 got=%d", rec.Code)
	}
}
