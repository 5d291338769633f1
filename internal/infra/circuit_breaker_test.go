package infra

import (
	"errors"
	"testing"
	"time"
)

func TestBreakerOpensAfterThreshold(t *testing.T) {
	cb := NewCircuitBreaker("test", 3, time.Minute)
	boom := errors.New("boom")

	for i := 0; i < 3; i++ {
		if err := cb.Do(func() error { return boom }); !errors.Is(err, boom) {
			t.Fatalf("call %d: err = %v, want boom", i, err)
		}
	}

	if err := cb.Do(func() error { return nil }); !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("err = %v, want ErrCircuitOpen", err)
	}
}

func TestBreakerHalfOpenProbe(t *testing.T) {
	cb := NewCircuitBreaker("test", 1, 10*time.Millisecond)
	boom := errors.New("boom")

	cb.Do(func() error { return boom })
	if err := cb.Do(func() error { return nil }); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("breaker should be open, got %v", err)
	}

	time.Sleep(20 * time.Millisecond)

	called := false
	if err := cb.Do(func() error { called = true; return nil }); err != nil {
		t.Fatalf("probe failed: %v", err)
	}
	if !called {
		t.Fatal("probe was not let through after cooldown")
	}

	// A successful probe fully closes the breaker.
	if err := cb.Do(func() error { return nil }); err != nil {
		t.Errorf("breaker should be closed, got %v", err)
	}
}

func TestBreakerSuccessResetsCount(t *testing.T) {
	cb := NewCircuitBreaker("test", 2, time.Minute)
	boom := errors.New("boom")

	cb.Do(func() error { return boom })
	cb.Do(func() error { return nil })
	cb.Do(func() error { return boom })

	// Two failures total but never two in a row.
	if err := cb.Do(func() error { return nil }); err != nil {
		t.Errorf("breaker must stay closed, got %v", err)
	}
}
