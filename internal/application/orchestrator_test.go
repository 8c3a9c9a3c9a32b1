package application

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunReportsSuccessThenResets(t *testing.T) {
	t.Parallel()

	orchestrator := NewOrchestrator(50 * time.Millisecond)
	defer orchestrator.Close()

	var observed OperationPhase
	err := orchestrator.Run(context.Background(), "create token", func(context.Context) (string, error) {
		observed = orchestrator.Status().Phase
		return "token created", nil
	})
	require.NoError(t, err)
	assert.Equal(t, OperationRunning, observed)

	status := orchestrator.Status()
	assert.Equal(t, OperationSucceeded, status.Phase)
	assert.Equal(t, "create token", status.Label)
	assert.Equal(t, "token created", status.Message)

	require.Eventually(t, func() bool {
		return orchestrator.Status().Idle()
	}, time.Second, 5*time.Millisecond)
}

func TestRunReportsFailureBeforeReturning(t *testing.T) {
	t.Parallel()

	orchestrator := NewOrchestrator(time.Minute)
	defer orchestrator.Close()

	var phases []OperationPhase
	var mu sync.Mutex
	orchestrator.Notify(func() {
		mu.Lock()
		phases = append(phases, orchestrator.Status().Phase)
		mu.Unlock()
	})

	boom := errors.New("minting failed: no mint authority")
	err := orchestrator.Run(context.Background(), "mint", func(context.Context) (string, error) {
		return "", boom
	})
	require.ErrorIs(t, err, boom)

	status := orchestrator.Status()
	assert.Equal(t, OperationFailed, status.Phase)
	assert.Equal(t, boom.Error(), status.Message)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, phases, 2)
	assert.Equal(t, OperationRunning, phases[0])
	assert.Equal(t, OperationFailed, phases[1])
}

func TestRunRejectsOverlappingOperation(t *testing.T) {
	t.Parallel()

	orchestrator := NewOrchestrator(time.Minute)
	defer orchestrator.Close()

	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- orchestrator.Run(context.Background(), "send", func(context.Context) (string, error) {
			<-release
			return "sent", nil
		})
	}()

	require.Eventually(t, func() bool {
		return orchestrator.Status().Running()
	}, time.Second, 5*time.Millisecond)

	err := orchestrator.Run(context.Background(), "mint", func(context.Context) (string, error) {
		return "", nil
	})
	require.ErrorIs(t, err, ErrBusy)

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, OperationSucceeded, orchestrator.Status().Phase)
}

func TestStaleResetTimerCannotClearNewerStatus(t *testing.T) {
	t.Parallel()

	orchestrator := NewOrchestrator(30 * time.Millisecond)
	defer orchestrator.Close()

	require.NoError(t, orchestrator.Run(context.Background(), "first", func(context.Context) (string, error) {
		return "done", nil
	}))
	require.Equal(t, OperationSucceeded, orchestrator.Status().Phase)

	// Start the second operation while the first one's reset timer is
	// still pending, and hold it well past that timer's deadline.
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- orchestrator.Run(context.Background(), "second", func(context.Context) (string, error) {
			<-release
			return "also done", nil
		})
	}()

	require.Eventually(t, func() bool {
		return orchestrator.Status().Running()
	}, time.Second, 5*time.Millisecond)

	time.Sleep(60 * time.Millisecond)
	status := orchestrator.Status()
	assert.Equal(t, OperationRunning, status.Phase)
	assert.Equal(t, "second", status.Label)

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, "also done", orchestrator.Status().Message)
}

func TestCloseStopsPendingReset(t *testing.T) {
	t.Parallel()

	orchestrator := NewOrchestrator(20 * time.Millisecond)

	require.NoError(t, orchestrator.Run(context.Background(), "airdrop", func(context.Context) (string, error) {
		return "funded", nil
	}))
	orchestrator.Close()

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, OperationSucceeded, orchestrator.Status().Phase)
}

func TestRunHonorsCanceledContext(t *testing.T) {
	t.Parallel()

	orchestrator := NewOrchestrator(time.Minute)
	defer orchestrator.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := orchestrator.Run(ctx, "noop", func(context.Context) (string, error) {
		called = true
		return "", nil
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
	assert.True(t, orchestrator.Status().Idle())
}

func TestStatusIdleByDefault(t *testing.T) {
	t.Parallel()

	orchestrator := NewOrchestrator(0)
	defer orchestrator.Close()

	status := orchestrator.Status()
	assert.True(t, status.Idle())
	assert.Empty(t, status.Label)
	assert.Empty(t, status.Message)
}
