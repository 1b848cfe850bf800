package bot

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// errors
var (
	ErrAlreadyRunning = errors.New("a report for this message is already being computed")
)

// RunOptions identifies one report request.
type RunOptions struct {
	UserID      string
	ChannelID   string
	MessageTS   string
	ResponseURL string // set for slash commands, empty for shortcuts
}

// Run represents an in-flight report computation.
type Run struct {
	ID        uuid.UUID
	StartedAt time.Time
	Options   RunOptions
}

// Runner executes one report computation end to end.
type Runner interface {
	Run(ctx context.Context, run *Run)
}

// RunManager tracks in-flight report computations.
// At most one run per (requesting user, channel, message) is allowed.
// thread-safe
type RunManager struct {
	mu     sync.Mutex
	active map[string]*Run
	runner Runner
}

// NewRunManager creates a new run manager.
func NewRunManager(runner Runner) *RunManager {
	return &RunManager{
		active: make(map[string]*Run),
		runner: runner,
	}
}

func runKey(o RunOptions) string {
	return o.UserID + "/" + o.ChannelID + "/" + o.MessageTS
}

// Start launches a report computation in the background.
// Returns ErrAlreadyRunning if the same requester already has a run in
// flight for the same message.
func (m *RunManager) Start(_ context.Context, opts RunOptions) (*Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := runKey(opts)
	if _, ok := m.active[key]; ok {
		return nil, ErrAlreadyRunning
	}

	run := &Run{
		ID:        uuid.New(),
		StartedAt: time.Now(),
		Options:   opts,
	}
	m.active[key] = run

	// IMPORTANT: Use background context, NOT the HTTP request context!
	// The handler acks immediately and returns, which cancels the request
	// context — the computation must keep running after the ack.
	go func() {
		defer m.finish(key)
		m.runner.Run(context.Background(), run)
	}()

	return run, nil
}

func (m *RunManager) finish(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.active, key)
}

// Active returns the number of in-flight runs.
func (m *RunManager) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.active)
}
