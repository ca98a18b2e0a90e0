package time

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestSleep_Elapses(t *testing.T) {
	start := time.Now()
	if err := Sleep(context.Background(), 15*time.Millisecond); err != nil {
		t.Fatalf("Sleep err = %v", err)
	}
	if time.Since(start) < 15*time.Millisecond {
		t.Fatalf("Sleep returned early")
	}
}

func TestSleep_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := Sleep(ctx, time.Hour); err != context.Canceled {
		t.Fatalf("Sleep err = %v, want canceled", err)
	}
	if err := Sleep(context.Background(), 0); err != nil {
		t.Fatalf("zero Sleep err = %v", err)
	}
}

func TestSystem_AfterFunc(t *testing.T) {
	var fired atomic.Bool
	done := make(chan struct{})
	System{}.AfterFunc(5*time.Millisecond, func() {
		fired.Store(true)
		close(done)
	})
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timer never fired")
	}
	if !fired.Load() {
		t.Fatal("fired flag not set")
	}

	tm := System{}.AfterFunc(time.Hour, func() { t.Error("should not fire") })
	if !tm.Stop() {
		t.Fatal("Stop on pending timer should report true")
	}
	if Ms(1500*time.Millisecond) != 1500 {
		t.Fatal("Ms mismatch")
	}
}
