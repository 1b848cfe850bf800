package bot

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
)

// MockRunner records runs and optionally blocks until released.
type MockRunner struct {
	mu      sync.Mutex
	runs    []*Run
	release chan struct{}
	started chan struct{}
}

func NewMockRunner(blocking bool) *MockRunner {
	m := &MockRunner{started: make(chan struct{}, 16)}
	if blocking {
		m.release = make(chan struct{})
	}
	return m
}

func (m *MockRunner) Run(_ context.Context, run *Run) {
	m.mu.Lock()
	m.runs = append(m.runs, run)
	m.mu.Unlock()
	m.started <- struct{}{}
	if m.release != nil {
		<-m.release
	}
}

func (m *MockRunner) RunCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.runs)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestRunManager_Start(t *testing.T) {
	t.Run("starts run successfully", func(t *testing.T) {
		runner := NewMockRunner(false)
		manager := NewRunManager(runner)

		run, err := manager.Start(context.Background(), RunOptions{
			UserID:    "U1",
			ChannelID: "C1",
			MessageTS: "1700000000.123456",
		})

		if err != nil {
			t.Fatalf("Start() unexpected error: %v", err)
		}
		if run == nil {
			t.Fatal("Start() returned nil run")
		}
		if run.ID == uuid.Nil {
			t.Error("run.ID should not be nil")
		}

		<-runner.started
		if runner.RunCount() != 1 {
			t.Errorf("runner called %d times, want 1", runner.RunCount())
		}
	})

	t.Run("rejects duplicate in-flight run", func(t *testing.T) {
		runner := NewMockRunner(true)
		manager := NewRunManager(runner)
		opts := RunOptions{UserID: "U1", ChannelID: "C1", MessageTS: "1700000000.123456"}

		if _, err := manager.Start(context.Background(), opts); err != nil {
			t.Fatalf("first Start() error: %v", err)
		}
		<-runner.started

		if _, err := manager.Start(context.Background(), opts); err != ErrAlreadyRunning {
			t.Errorf("second Start() error = %v, want ErrAlreadyRunning", err)
		}

		close(runner.release)
	})

	t.Run("allows concurrent runs for different messages", func(t *testing.T) {
		runner := NewMockRunner(true)
		manager := NewRunManager(runner)

		if _, err := manager.Start(context.Background(), RunOptions{UserID: "U1", ChannelID: "C1", MessageTS: "1.000001"}); err != nil {
			t.Fatalf("first Start() error: %v", err)
		}
		if _, err := manager.Start(context.Background(), RunOptions{UserID: "U1", ChannelID: "C1", MessageTS: "2.000001"}); err != nil {
			t.Errorf("different message Start() error: %v", err)
		}
		if _, err := manager.Start(context.Background(), RunOptions{UserID: "U2", ChannelID: "C1", MessageTS: "1.000001"}); err != nil {
			t.Errorf("different user Start() error: %v", err)
		}

		if got := manager.Active(); got != 3 {
			t.Errorf("Active() = %d, want 3", got)
		}

		close(runner.release)
		waitFor(t, func() bool { return manager.Active() == 0 })
	})

	t.Run("same message can run again after completion", func(t *testing.T) {
		runner := NewMockRunner(false)
		manager := NewRunManager(runner)
		opts := RunOptions{UserID: "U1", ChannelID: "C1", MessageTS: "1700000000.123456"}

		if _, err := manager.Start(context.Background(), opts); err != nil {
			t.Fatalf("first Start() error: %v", err)
		}
		<-runner.started
		waitFor(t, func() bool { return manager.Active() == 0 })

		if _, err := manager.Start(context.Background(), opts); err != nil {
			t.Errorf("restart after completion error: %v", err)
		}
	})
}
