package examsvc

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/lecturegate-backend/internal/domain/learning"
	"github.com/yungbote/lecturegate-backend/internal/platform/logger"
)

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func newTestClient(t *testing.T, maxRetries int, rt roundTripperFunc) *Client {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	c, err := New(Options{
		BaseURL:    "http://exams.local/",
		Timeout:    2 * time.Second,
		MaxRetries: maxRetries,
		HTTPClient: &http.Client{Transport: rt},
	}, log)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	c.backoff = time.Millisecond
	return c
}

func TestNewRequiresBaseURL(t *testing.T) {
	log, _ := logger.New("test")
	if _, err := New(Options{BaseURL: "  "}, log); err == nil {
		t.Fatalf("expected error for empty base url")
	}
}

func TestGetExam(t *testing.T) {
	c := newTestClient(t, 0, func(r *http.Request) (*http.Response, error) {
		if r.Method != http.MethodGet {
			t.Fatalf("method: want=GET got=%s", r.Method)
		}
		if r.URL.Path != "/v1/exams/exam-1" {
			t.Fatalf("path: want=/v1/exams/exam-1 got=%s", r.URL.Path)
		}
		return jsonResponse(200, `{"id":"exam-1","title":"Midterm","passing_score":70,"max_attempts":3}`), nil
	})

	exam, err := c.GetExam(context.Background(), "exam-1")
	if err != nil {
		t.Fatalf("GetExam: %v", err)
	}
	if exam.ID != "exam-1" || exam.PassingScore != 70 || exam.MaxAttempts != 3 {
		t.Fatalf("unexpected exam: %+v", exam)
	}
}

func TestGetExamNotFound(t *testing.T) {
	c := newTestClient(t, 2, func(r *http.Request) (*http.Response, error) {
		return jsonResponse(404, `{"error":{"message":"no such exam","code":"not_found"}}`), nil
	})

	_, err := c.GetExam(context.Background(), "missing")
	if !errors.Is(err, learning.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestSubmitExamAttemptRetriesWithStableIdempotencyKey(t *testing.T) {
	learnerID := uuid.New()
	var calls int32
	var firstKey string
	c := newTestClient(t, 2, func(r *http.Request) (*http.Response, error) {
		n := atomic.AddInt32(&calls, 1)
		key := r.Header.Get("Idempotency-Key")
		if key == "" {
			t.Fatalf("missing Idempotency-Key")
		}
		if n == 1 {
			firstKey = key
			return jsonResponse(503, `{"error":{"message":"busy"}}`), nil
		}
		if key != firstKey {
			t.Fatalf("idempotency key changed: want=%s got=%s", firstKey, key)
		}
		var body submitAttemptRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body.LearnerID != learnerID || len(body.Answers) != 2 {
			t.Fatalf("unexpected body: %+v", body)
		}
		return jsonResponse(201, `{"score":80,"passed":true,"correct_answers":4,"total_questions":5}`), nil
	})

	res, err := c.SubmitExamAttempt(context.Background(), "exam-1", learnerID, []string{"A", "B"})
	if err != nil {
		t.Fatalf("SubmitExamAttempt: %v", err)
	}
	if atomic.LoadInt32(&calls) != 2 {
		t.Fatalf("calls: want=2 got=%d", calls)
	}
	if res.Score != 80 || !res.Passed || res.CorrectAnswers != 4 || res.TotalQuestions != 5 {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestSubmitExamAttemptDoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	c := newTestClient(t, 3, func(r *http.Request) (*http.Response, error) {
		atomic.AddInt32(&calls, 1)
		return jsonResponse(400, `{"error":{"message":"bad answers","code":"invalid"}}`), nil
	})

	_, err := c.SubmitExamAttempt(context.Background(), "exam-1", uuid.New(), nil)
	var herr *HTTPError
	if !errors.As(err, &herr) {
		t.Fatalf("want *HTTPError, got %T %v", err, err)
	}
	if herr.StatusCode != 400 || herr.Code != "invalid" || herr.Message != "bad answers" {
		t.Fatalf("unexpected http error: %+v", herr)
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Fatalf("calls: want=1 got=%d", calls)
	}
}

func TestSubmitExamAttemptRejectsIncompleteResponse(t *testing.T) {
	c := newTestClient(t, 0, func(r *http.Request) (*http.Response, error) {
		return jsonResponse(200, `{"score":80}`), nil
	})

	if _, err := c.SubmitExamAttempt(context.Background(), "exam-1", uuid.New(), []string{"A"}); err == nil {
		t.Fatalf("expected error for incomplete response")
	}
}

func TestSubmitExamAttemptTransportErrorExhaustsRetries(t *testing.T) {
	var calls int32
	c := newTestClient(t, 2, func(r *http.Request) (*http.Response, error) {
		atomic.AddInt32(&calls, 1)
		return nil, errors.New("connection reset")
	})

	if _, err := c.SubmitExamAttempt(context.Background(), "exam-1", uuid.New(), []string{"A"}); err == nil {
		t.Fatalf("expected error")
	}
	if atomic.LoadInt32(&calls) != 3 {
		t.Fatalf("calls: want=3 got=%d", calls)
	}
}

func TestGetAttemptCount(t *testing.T) {
	learnerID := uuid.New()
	c := newTestClient(t, 0, func(r *http.Request) (*http.Response, error) {
		if r.URL.Path != "/v1/exams/exam-1/attempts/count" {
			t.Fatalf("path: got=%s", r.URL.Path)
		}
		if got := r.URL.Query().Get("learner_id"); got != learnerID.String() {
			t.Fatalf("learner_id: want=%s got=%s", learnerID, got)
		}
		return jsonResponse(200, `{"count":2}`), nil
	})

	n, err := c.GetAttemptCount(context.Background(), "exam-1", learnerID)
	if err != nil {
		t.Fatalf("GetAttemptCount: %v", err)
	}
	if n != 2 {
		t.Fatalf("count: want=2 got=%d", n)
	}
}

func TestParseHTTPErrorFallsBackToBody(t *testing.T) {
	err := parseHTTPError(502, []byte("upstream gone"))
	var herr *HTTPError
	if !errors.As(err, &herr) {
		t.Fatalf("want *HTTPError")
	}
	if herr.Body != "upstream gone" || herr.Message != "" {
		t.Fatalf("unexpected: %+v", herr)
	}
	if !strings.Contains(herr.Error(), "status=502") {
		t.Fatalf("error string: %s", herr.Error())
	}
}
