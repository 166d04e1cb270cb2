package lifecycle_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/JaimeStill/clerk/pkg/lifecycle"
)

func TestStartupMarksReady(t *testing.T) {
	lc := lifecycle.New()
	var ran atomic.Int32

	for range 3 {
		lc.OnStartup(func() { ran.Add(1) })
	}

	if lc.Ready() {
		t.Fatal("Ready() = true before WaitForStartup")
	}
	lc.WaitForStartup()

	if got := ran.Load(); got != 3 {
		t.Errorf("startup hooks ran = %d, want 3", got)
	}
	if !lc.Ready() {
		t.Error("Ready() = false after WaitForStartup")
	}
}

func TestShutdownReleasesHooks(t *testing.T) {
	lc := lifecycle.New()
	var closed atomic.Bool

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		closed.Store(true)
	})
	lc.WaitForStartup()

	if err := lc.Shutdown(time.Second); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
	if !closed.Load() {
		t.Error("shutdown hook did not run")
	}
	if lc.Ready() {
		t.Error("Ready() = true after Shutdown")
	}
}

func TestShutdownTimeout(t *testing.T) {
	lc := lifecycle.New()
	release := make(chan struct{})
	defer close(release)

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		<-release
	})

	if err := lc.Shutdown(10 * time.Millisecond); err == nil {
		t.Error("Shutdown() error = nil, want timeout")
	}
}
