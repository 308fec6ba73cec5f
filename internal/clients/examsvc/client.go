package examsvc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/yungbote/lecturegate-backend/internal/domain/learning"
	"github.com/yungbote/lecturegate-backend/internal/observability"
	"github.com/yungbote/lecturegate-backend/internal/platform/envutil"
	"github.com/yungbote/lecturegate-backend/internal/platform/httpx"
	"github.com/yungbote/lecturegate-backend/internal/platform/logger"
)

type Options struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	MaxRetries int
	HTTPClient *http.Client
	Metrics    *observability.Metrics
}

// Client talks to the external exam service. It never grades locally.
type Client struct {
	baseURL    string
	apiKey     string
	timeout    time.Duration
	maxRetries int
	backoff    time.Duration
	httpClient *http.Client
	metrics    *observability.Metrics
	log        *logger.Logger
}

func New(opts Options, baseLog *logger.Logger) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("exam service baseURL required")
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	maxRetries := opts.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	}
	return &Client{
		baseURL:    baseURL,
		apiKey:     strings.TrimSpace(opts.APIKey),
		timeout:    timeout,
		maxRetries: maxRetries,
		backoff:    250 * time.Millisecond,
		httpClient: hc,
		metrics:    opts.Metrics,
		log:        baseLog.With("client", "ExamServiceClient"),
	}, nil
}

func NewFromEnv(baseLog *logger.Logger, metrics *observability.Metrics) (*Client, error) {
	return New(Options{
		Metrics:    metrics,
		BaseURL:    envutil.String("EXAM_SERVICE_URL", ""),
		APIKey:     envutil.String("EXAM_SERVICE_API_KEY", ""),
		Timeout:    time.Duration(envutil.Int("EXAM_SERVICE_TIMEOUT_SECONDS", 10)) * time.Second,
		MaxRetries: envutil.Int("EXAM_SERVICE_MAX_RETRIES", 2),
	}, baseLog)
}

func (c *Client) GetExam(ctx context.Context, examID string) (*learning.FormalExam, error) {
	var out learning.FormalExam
	err := c.doJSON(ctx, "get_exam", http.MethodGet, examPath(examID), nil, "", &out)
	if err != nil {
		return nil, c.mapError("exam", examID, err)
	}
	if strings.TrimSpace(out.ID) == "" {
		return nil, fmt.Errorf("exam %s: response missing id", examID)
	}
	return &out, nil
}

// SubmitExamAttempt posts one attempt. Retries reuse a single idempotency key
// so the exam service counts the attempt once.
func (c *Client) SubmitExamAttempt(ctx context.Context, examID string, learnerID uuid.UUID, answers []string) (*learning.ExamAttemptResult, error) {
	if answers == nil {
		answers = []string{}
	}
	req := submitAttemptRequest{LearnerID: learnerID, Answers: answers}
	var resp submitAttemptResponse
	if err := c.doJSON(ctx, "submit_attempt", http.MethodPost, examPath(examID)+"/attempts", req, uuid.NewString(), &resp); err != nil {
		return nil, c.mapError("exam", examID, err)
	}
	if resp.Score == nil || resp.Passed == nil || resp.CorrectAnswers == nil || resp.TotalQuestions == nil {
		return nil, fmt.Errorf("exam %s: attempt response missing fields", examID)
	}
	return &learning.ExamAttemptResult{
		Score:          *resp.Score,
		Passed:         *resp.Passed,
		CorrectAnswers: *resp.CorrectAnswers,
		TotalQuestions: *resp.TotalQuestions,
	}, nil
}

func (c *Client) GetAttemptCount(ctx context.Context, examID string, learnerID uuid.UUID) (int, error) {
	q := url.Values{}
	q.Set("learner_id", learnerID.String())
	var resp attemptCountResponse
	if err := c.doJSON(ctx, "attempt_count", http.MethodGet, examPath(examID)+"/attempts/count?"+q.Encode(), nil, "", &resp); err != nil {
		return 0, c.mapError("exam", examID, err)
	}
	if resp.Count == nil {
		return 0, fmt.Errorf("exam %s: attempt count missing", examID)
	}
	return *resp.Count, nil
}

func (c *Client) mapError(resource, key string, err error) error {
	var herr *HTTPError
	if errors.As(err, &herr) && herr.StatusCode == http.StatusNotFound {
		return learning.NewNotFoundError(resource, key)
	}
	return err
}

func callStatus(err error) string {
	if err == nil {
		return "ok"
	}
	var herr *HTTPError
	if errors.As(err, &herr) {
		return strconv.Itoa(herr.StatusCode)
	}
	return "error"
}

func examPath(examID string) string {
	return "/v1/exams/" + url.PathEscape(strings.TrimSpace(examID))
}

func (c *Client) doJSON(ctx context.Context, op, method, path string, body any, idempotencyKey string, out any) (err error) {
	start := time.Now()
	defer func() { c.metrics.ObserveExamCall(op, callStatus(err), time.Since(start)) }()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}

	ctx2, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var lastErr error
	backoff := c.backoff
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if ctx2.Err() != nil {
			return ctx2.Err()
		}

		req, err := http.NewRequestWithContext(ctx2, method, c.baseURL+path, bytes.NewReader(buf.Bytes()))
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if c.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.apiKey)
		}
		if idempotencyKey != "" {
			req.Header.Set("Idempotency-Key", idempotencyKey)
		}

		var resp *http.Response
		resp, err = c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			if !httpx.IsRetryableError(err) {
				return err
			}
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
			_ = resp.Body.Close()
			if readErr != nil {
				return readErr
			}
			if resp.StatusCode < 200 || resp.StatusCode >= 300 {
				lastErr = parseHTTPError(resp.StatusCode, raw)
				if !httpx.IsRetryableHTTPStatus(resp.StatusCode) {
					return lastErr
				}
				backoff = httpx.RetryAfterDuration(resp, backoff, 5*time.Second)
			} else {
				if out == nil {
					return nil
				}
				if err := json.Unmarshal(raw, out); err != nil {
					return fmt.Errorf("decode exam service response: %w", err)
				}
				return nil
			}
		}

		if attempt < c.maxRetries {
			c.log.Warn("exam service call failed, retrying",
				"method", method,
				"path", path,
				"attempt", attempt+1,
				"error", lastErr,
			)
			select {
			case <-ctx2.Done():
				return ctx2.Err()
			case <-time.After(httpx.JitterSleep(backoff)):
			}
			backoff *= 2
		}
	}

	if lastErr == nil {
		lastErr = errors.New("exam service request failed")
	}
	return lastErr
}
