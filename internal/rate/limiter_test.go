package rate_test

import (
	"context"
	"testing"
	"time"

	"github.com/socis-ca/website/internal/rate"
)

func TestMemoryLimiterWithinWindow(t *testing.T) {
	l := rate.NewMemoryLimiter(3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		res, err := l.Allow(ctx, "1.2.3.4")
		if err != nil {
			t.Fatalf("allow: %v", err)
		}
		if !res.Allowed {
			t.Fatalf("hit %d should pass", i+1)
		}
	}

	res, err := l.Allow(ctx, "1.2.3.4")
	if err != nil {
		t.Fatalf("allow: %v", err)
	}
	if res.Allowed {
		t.Fatal("4th hit should be rejected")
	}
	if res.RetryAfter <= 0 || res.RetryAfter > time.Minute {
		t.Fatalf("RetryAfter = %v", res.RetryAfter)
	}
}

func TestMemoryLimiterKeysAreIndependent(t *testing.T) {
	l := rate.NewMemoryLimiter(1, time.Minute)
	ctx := context.Background()

	if res, _ := l.Allow(ctx, "a"); !res.Allowed {
		t.Fatal("first hit for a should pass")
	}
	if res, _ := l.Allow(ctx, "a"); res.Allowed {
		t.Fatal("second hit for a should be rejected")
	}
	if res, _ := l.Allow(ctx, "b"); !res.Allowed {
		t.Fatal("b has its own window")
	}
}

func TestMemoryLimiterWindowResets(t *testing.T) {
	l := rate.NewMemoryLimiter(1, 20*time.Millisecond)
	ctx := context.Background()

	if res, _ := l.Allow(ctx, "k"); !res.Allowed {
		t.Fatal("first hit should pass")
	}
	if res, _ := l.Allow(ctx, "k"); res.Allowed {
		t.Fatal("second hit should be rejected")
	}

	time.Sleep(25 * time.Millisecond)
	if res, _ := l.Allow(ctx, "k"); !res.Allowed {
		t.Fatal("hit after window reset should pass")
	}
}
