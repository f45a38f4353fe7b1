package pacing

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestFixed_Waits(t *testing.T) {
	p := Fixed{Interval: 30 * time.Millisecond}
	start := time.Now()
	if err := p.Wait(context.Background()); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if d := time.Since(start); d < 30*time.Millisecond {
		t.Errorf("waited %v, want >= 30ms", d)
	}
}

func TestFixed_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Fixed{Interval: time.Hour}.Wait(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestTokenBucket_BurstThenWait(t *testing.T) {
	b := NewTokenBucket(40*time.Millisecond, 2)
	ctx := context.Background()
	start := time.Now()
	for i := 0; i < 2; i++ {
		if err := b.Wait(ctx); err != nil {
			t.Fatal(err)
		}
	}
	if d := time.Since(start); d > 30*time.Millisecond {
		t.Errorf("burst took %v, want immediate", d)
	}
	if err := b.Wait(ctx); err != nil {
		t.Fatal(err)
	}
	if d := time.Since(start); d < 30*time.Millisecond {
		t.Errorf("third wait returned after %v, want throttled", d)
	}
}

func TestNew(t *testing.T) {
	for _, s := range []string{"", StrategyFixed, StrategyTokenBucket, StrategyNone} {
		if _, err := New(s, time.Millisecond, 1); err != nil {
			t.Errorf("New(%q): %v", s, err)
		}
	}
	if _, err := New("leaky", time.Millisecond, 1); err == nil {
		t.Error("expected error for unknown strategy")
	}
}
