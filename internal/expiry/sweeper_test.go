package expiry

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type fakeExpirer struct {
	mu      sync.Mutex
	batches []int
	err     error
	calls   int
}

func (f *fakeExpirer) ExpireOverdue(_ context.Context, batchSize int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return 0, f.err
	}
	if len(f.batches) == 0 {
		return 0, nil
	}
	n := f.batches[0]
	f.batches = f.batches[1:]
	return n, nil
}

func (f *fakeExpirer) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestNewSweeperValidates(t *testing.T) {
	tests := []struct {
		name string
		cfg  SweeperConfig
	}{
		{"missing expirer", SweeperConfig{PollingInterval: time.Second, BatchSize: 1}},
		{"zero interval", SweeperConfig{Expirer: &fakeExpirer{}, BatchSize: 1}},
		{"zero batch", SweeperConfig{Expirer: &fakeExpirer{}, PollingInterval: time.Second}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewSweeper(tt.cfg); err == nil {
				t.Error("Expected validation error")
			}
		})
	}
}

func TestSweepDrainsFullBatches(t *testing.T) {
	f := &fakeExpirer{batches: []int{2, 2, 1}}
	s, err := NewSweeper(SweeperConfig{Expirer: f, PollingInterval: time.Hour, BatchSize: 2})
	if err != nil {
		t.Fatalf("NewSweeper failed: %v", err)
	}

	if total := s.Sweep(context.Background()); total != 5 {
		t.Errorf("Expected 5 expired, got %d", total)
	}
	if f.callCount() != 3 {
		t.Errorf("Expected 3 batches, got %d", f.callCount())
	}
}

func TestSweepStopsOnError(t *testing.T) {
	f := &fakeExpirer{err: errors.New("db locked")}
	s, err := NewSweeper(SweeperConfig{Expirer: f, PollingInterval: time.Hour, BatchSize: 2})
	if err != nil {
		t.Fatalf("NewSweeper failed: %v", err)
	}

	if total := s.Sweep(context.Background()); total != 0 {
		t.Errorf("Expected 0 expired, got %d", total)
	}
	if f.callCount() != 1 {
		t.Errorf("Expected a single attempt, got %d", f.callCount())
	}
}

func TestStartRunsImmediatelyAndStops(t *testing.T) {
	f := &fakeExpirer{}
	s, err := NewSweeper(SweeperConfig{Expirer: f, PollingInterval: time.Hour, BatchSize: 10})
	if err != nil {
		t.Fatalf("NewSweeper failed: %v", err)
	}

	s.Start(context.Background())
	deadline := time.After(2 * time.Second)
	for f.callCount() == 0 {
		select {
		case <-deadline:
			t.Fatal("Sweeper did not run on start")
		case <-time.After(5 * time.Millisecond):
		}
	}
	s.Stop()

	select {
	case <-s.Done():
	default:
		t.Error("Expected Done to be closed after Stop")
	}
}

func TestContextCancelStopsLoop(t *testing.T) {
	s, err := NewSweeper(SweeperConfig{Expirer: &fakeExpirer{}, PollingInterval: time.Hour, BatchSize: 10})
	if err != nil {
		t.Fatalf("NewSweeper failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	cancel()

	select {
	case <-s.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("Sweeper did not exit after context cancel")
	}
}
