package httpx

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"
)

type statusErr int

func (e statusErr) Error() string       { return fmt.Sprintf("status %d", int(e)) }
func (e statusErr) HTTPStatusCode() int { return int(e) }

func TestIsRetryableHTTPStatus(t *testing.T) {
	for _, code := range []int{408, 429, 500, 502, 503, 599} {
		if !IsRetryableHTTPStatus(code) {
			t.Fatalf("%d should be retryable", code)
		}
	}
	for _, code := range []int{200, 400, 401, 404, 409, 422} {
		if IsRetryableHTTPStatus(code) {
			t.Fatalf("%d should not be retryable", code)
		}
	}
}

func TestIsRetryableError(t *testing.T) {
	if IsRetryableError(nil) || IsRetryableError(context.Canceled) {
		t.Fatalf("nil and canceled are final")
	}
	if !IsRetryableError(context.DeadlineExceeded) {
		t.Fatalf("deadline should be retryable")
	}
	if !IsRetryableError(fmt.Errorf("wrap: %w", statusErr(503))) {
		t.Fatalf("503 should be retryable")
	}
	if IsRetryableError(statusErr(404)) || IsRetryableError(errors.New("decode failed")) {
		t.Fatalf("404 and plain errors are final")
	}
}

func TestRetryAfterDuration(t *testing.T) {
	resp := &http.Response{Header: http.Header{}}
	resp.Header.Set("Retry-After", "3")
	if got := RetryAfterDuration(resp, time.Second, 0); got != 3*time.Second {
		t.Fatalf("want=3s got=%s", got)
	}
	if got := RetryAfterDuration(resp, time.Second, 2*time.Second); got != 2*time.Second {
		t.Fatalf("capped: want=2s got=%s", got)
	}
	if got := RetryAfterDuration(nil, time.Second, 0); got != time.Second {
		t.Fatalf("fallback: want=1s got=%s", got)
	}
}

func TestJitterSleep(t *testing.T) {
	if JitterSleep(0) != 0 {
		t.Fatalf("zero base")
	}
	for i := 0; i < 50; i++ {
		got := JitterSleep(time.Second)
		if got < 800*time.Millisecond || got > 1200*time.Millisecond {
			t.Fatalf("out of band: %s", got)
		}
	}
}
