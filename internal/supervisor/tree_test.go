// Shutterfeed - Photo Sharing Feed and Social Graph Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shutterfeed

package supervisor

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tomtom215/shutterfeed/internal/audit"
)

// countingService counts Serve calls and fails the first failures of them.
type countingService struct {
	name     string
	failures int32
	starts   atomic.Int32
}

func (s *countingService) Serve(ctx context.Context) error {
	n := s.starts.Add(1)
	if n <= s.failures {
		return errors.New("simulated failure")
	}
	<-ctx.Done()
	return ctx.Err()
}

func (s *countingService) String() string { return s.name }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestNewSupervisorTree_Defaults(t *testing.T) {
	tree, err := NewSupervisorTree(testLogger(), TreeConfig{})
	if err != nil {
		t.Fatalf("NewSupervisorTree() error = %v", err)
	}
	if tree.Root() == nil {
		t.Fatal("root supervisor should not be nil")
	}
	if tree.config != DefaultTreeConfig() {
		t.Errorf("config = %+v, want defaults %+v", tree.config, DefaultTreeConfig())
	}

	custom, err := NewSupervisorTree(nil, TreeConfig{FailureThreshold: 2, ShutdownTimeout: time.Second})
	if err != nil {
		t.Fatalf("NewSupervisorTree() error = %v", err)
	}
	if custom.config.FailureThreshold != 2 || custom.config.ShutdownTimeout != time.Second {
		t.Errorf("custom values lost: %+v", custom.config)
	}
	if custom.config.FailureDecay != 30 || custom.logger == nil {
		t.Errorf("zero fields should take defaults: %+v", custom.config)
	}
}

func TestSupervisorTree_Lifecycle(t *testing.T) {
	tree, err := NewSupervisorTree(testLogger(), TreeConfig{
		FailureBackoff:  10 * time.Millisecond,
		ShutdownTimeout: time.Second,
	})
	if err != nil {
		t.Fatalf("NewSupervisorTree() error = %v", err)
	}

	data := &countingService{name: "data"}
	api := &countingService{name: "api"}
	tree.AddDataService(data)
	tree.AddAPIService(api)

	ctx, cancel := context.WithCancel(context.Background())
	done := tree.ServeBackground(ctx)

	deadline := time.Now().Add(time.Second)
	for (data.starts.Load() == 0 || api.starts.Load() == 0) && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if data.starts.Load() == 0 || api.starts.Load() == 0 {
		t.Fatalf("services not started: data=%d api=%d", data.starts.Load(), api.starts.Load())
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("tree did not stop")
	}

	report, err := tree.UnstoppedServiceReport()
	if err != nil {
		t.Fatalf("UnstoppedServiceReport() error = %v", err)
	}
	if len(report) != 0 {
		t.Errorf("unstopped services: %v", report)
	}
}

func TestSupervisorTree_RestartsFailedDataService(t *testing.T) {
	tree, err := NewSupervisorTree(testLogger(), TreeConfig{
		FailureThreshold: 10,
		FailureBackoff:   10 * time.Millisecond,
		ShutdownTimeout:  time.Second,
	})
	if err != nil {
		t.Fatalf("NewSupervisorTree() error = %v", err)
	}

	flaky := &countingService{name: "flaky", failures: 2}
	api := &countingService{name: "api"}
	tree.AddDataService(flaky)
	tree.AddAPIService(api)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := tree.ServeBackground(ctx)

	deadline := time.Now().Add(2 * time.Second)
	for flaky.starts.Load() < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if flaky.starts.Load() < 3 {
		t.Errorf("flaky service started %d times, want at least 3", flaky.starts.Load())
	}
	if api.starts.Load() != 1 {
		t.Errorf("api service restarted: starts = %d, want 1", api.starts.Load())
	}

	cancel()
	<-done
}

func TestSupervisorTree_RunsAuditLogger(t *testing.T) {
	tree, err := NewSupervisorTree(testLogger(), TreeConfig{ShutdownTimeout: time.Second})
	if err != nil {
		t.Fatalf("NewSupervisorTree() error = %v", err)
	}

	store := audit.NewMemoryStore(10)
	logger := audit.NewLogger(store, &audit.Config{Enabled: true, BufferSize: 10})
	tree.AddDataService(logger)

	ctx, cancel := context.WithCancel(context.Background())
	done := tree.ServeBackground(ctx)

	logger.Log(context.Background(), &audit.Event{
		Type:       audit.EventTypePostDeleted,
		ActorID:    "actor",
		TargetType: audit.TargetPost,
		TargetID:   "post",
	})

	deadline := time.Now().Add(2 * time.Second)
	for store.Len() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if store.Len() != 1 {
		t.Errorf("stored events = %d, want 1", store.Len())
	}

	cancel()
	<-done
}
