package application

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bnema/solana-wallet-cli/internal/log"
)

var ErrBusy = errors.New("an operation is already running")

const defaultStatusResetDelay = 3 * time.Second

type OperationPhase string

const (
	OperationIdle      OperationPhase = "idle"
	OperationRunning   OperationPhase = "running"
	OperationSucceeded OperationPhase = "succeeded"
	OperationFailed    OperationPhase = "failed"
)

// OperationStatus is the externally visible state of the one operation the
// orchestrator allows in flight. Message carries the success summary or the
// failure text for terminal phases.
type OperationStatus struct {
	Phase   OperationPhase
	Label   string
	Message string
}

func (s OperationStatus) Idle() bool    { return s.Phase == OperationIdle }
func (s OperationStatus) Running() bool { return s.Phase == OperationRunning }

// Orchestrator serializes gateway operations: one runs at a time, its
// outcome stays visible for the reset delay, then the status returns to
// idle. The reset timer belongs to the orchestrator and is stopped whenever
// a newer operation starts, so a stale timer can never clear a fresh
// status.
type Orchestrator struct {
	resetDelay time.Duration

	mu         sync.Mutex
	status     OperationStatus
	resetTimer *time.Timer
	notify     func()
}

func NewOrchestrator(resetDelay time.Duration) *Orchestrator {
	if resetDelay <= 0 {
		resetDelay = defaultStatusResetDelay
	}

	return &Orchestrator{
		resetDelay: resetDelay,
		status:     OperationStatus{Phase: OperationIdle},
	}
}

// Notify registers a callback invoked after every status change. One
// observer is enough for the terminal surfaces; a later registration
// replaces the earlier one.
func (o *Orchestrator) Notify(fn func()) {
	o.mu.Lock()
	o.notify = fn
	o.mu.Unlock()
}

func (o *Orchestrator) Status() OperationStatus {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.status
}

// Run executes op under the single-flight guard. A second Run while one is
// in flight fails immediately with ErrBusy; nothing queues. The terminal
// status is recorded and observers are notified before the error is
// returned to the caller.
func (o *Orchestrator) Run(ctx context.Context, label string, op func(context.Context) (string, error)) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	o.mu.Lock()
	if o.status.Phase == OperationRunning {
		o.mu.Unlock()
		return ErrBusy
	}
	if o.resetTimer != nil {
		o.resetTimer.Stop()
		o.resetTimer = nil
	}
	o.status = OperationStatus{Phase: OperationRunning, Label: label}
	notify := o.notify
	o.mu.Unlock()

	logger := log.Op.With().Str("operation", label).Str("id", shortOperationID()).Logger()
	logger.Debug().Msg("operation started")
	if notify != nil {
		notify()
	}

	message, err := op(ctx)

	o.mu.Lock()
	if err != nil {
		o.status = OperationStatus{Phase: OperationFailed, Label: label, Message: err.Error()}
	} else {
		o.status = OperationStatus{Phase: OperationSucceeded, Label: label, Message: message}
	}
	o.armResetLocked()
	notify = o.notify
	o.mu.Unlock()

	if err != nil {
		logger.Debug().Err(err).Msg("operation failed")
	} else {
		logger.Debug().Msg("operation succeeded")
	}
	if notify != nil {
		notify()
	}

	return err
}

// Close stops a pending reset timer. The last terminal status stays on
// record; there is no observer left to care once the surfaces shut down.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.resetTimer != nil {
		o.resetTimer.Stop()
		o.resetTimer = nil
	}
}

func (o *Orchestrator) armResetLocked() {
	if o.resetTimer != nil {
		o.resetTimer.Stop()
	}
	o.resetTimer = time.AfterFunc(o.resetDelay, o.reset)
}

func (o *Orchestrator) reset() {
	o.mu.Lock()
	// A newer operation may have started between this timer firing and
	// acquiring the lock; its status is not ours to clear.
	if o.status.Phase == OperationRunning {
		o.mu.Unlock()
		return
	}
	o.status = OperationStatus{Phase: OperationIdle}
	o.resetTimer = nil
	notify := o.notify
	o.mu.Unlock()

	if notify != nil {
		notify()
	}
}

func shortOperationID() string {
	return uuid.NewString()[:8]
}
