package redis

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/lecturegate-backend/internal/platform/logger"
)

func newTestLocker(t *testing.T) *Locker {
	t.Helper()
	addr := strings.TrimSpace(os.Getenv("TEST_REDIS_ADDR"))
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	l, err := NewLocker(log, LockerOptions{
		Addr:      addr,
		Prefix:    "lecturegate-test:" + uuid.NewString() + ":",
		TTL:       5 * time.Second,
		RetryWait: 5 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("NewLocker: %v", err)
	}
	t.Cleanup(func() { _ = l.Close() })
	return l
}

func TestNewLockerRequiresAddr(t *testing.T) {
	log, _ := logger.New("test")
	if _, err := NewLocker(log, LockerOptions{}); err == nil {
		t.Fatalf("expected error for missing addr")
	}
	if _, err := NewLocker(nil, LockerOptions{Addr: "localhost:6379"}); err == nil {
		t.Fatalf("expected error for nil logger")
	}
}

func TestLockerExcludesSecondHolder(t *testing.T) {
	l := newTestLocker(t)
	unlock, err := l.Lock(context.Background(), "k")
	if err != nil {
		t.Fatalf("Lock: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := l.Lock(ctx, "k"); !errors.Is(err, ErrLockTimeout) {
		t.Fatalf("want ErrLockTimeout, got %v", err)
	}

	unlock()
	unlock2, err := l.Lock(context.Background(), "k")
	if err != nil {
		t.Fatalf("Lock after unlock: %v", err)
	}
	unlock2()
}
