package refresh

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fitprime-classes/internal/apperror"
)

// blockingRefresher signals each call on started and waits for release.
type blockingRefresher struct {
	calls   atomic.Int32
	started chan struct{}
	release chan struct{}
}

func newBlockingRefresher() *blockingRefresher {
	return &blockingRefresher{
		started: make(chan struct{}, 10),
		release: make(chan struct{}),
	}
}

func (b *blockingRefresher) Refresh(ctx context.Context) error {
	b.calls.Add(1)
	b.started <- struct{}{}
	select {
	case <-b.release:
	case <-ctx.Done():
	}
	return nil
}

func waitStarted(t *testing.T, b *blockingRefresher) {
	t.Helper()
	select {
	case <-b.started:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for refresh to start")
	}
}

func TestParseReason(t *testing.T) {
	testCases := []struct {
		input    string
		expected Reason
		valid    bool
	}{
		{"focus", ReasonFocus, true},
		{"visibility", ReasonVisibility, true},
		{"manual", ReasonManual, true},
		{"", ReasonManual, true},
		{"interval", "", false},
		{"shake", "", false},
	}

	for _, tc := range testCases {
		got, err := ParseReason(tc.input)
		if tc.valid {
			require.NoError(t, err, tc.input)
			assert.Equal(t, tc.expected, got)
		} else {
			var verr *apperror.ValidationError
			assert.ErrorAs(t, err, &verr, tc.input)
		}
	}
}

func TestWorker_TriggerCoalesces(t *testing.T) {
	w := NewWorker(RefreshFunc(func(context.Context) error { return nil }), 0)

	assert.True(t, w.Trigger(ReasonFocus))
	assert.False(t, w.Trigger(ReasonVisibility), "second trigger merges into the queued one")

	select {
	case reason := <-w.pending:
		assert.Equal(t, ReasonFocus, reason)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for queued trigger")
	}
}

func TestWorker_OneFollowUpPerBurst(t *testing.T) {
	r := newBlockingRefresher()
	w := NewWorker(r, 0)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	w.Trigger(ReasonFocus)
	waitStarted(t, r)

	// A burst while the first refresh is running.
	w.Trigger(ReasonVisibility)
	w.Trigger(ReasonFocus)
	w.Trigger(ReasonManual)

	r.release <- struct{}{}
	waitStarted(t, r)
	r.release <- struct{}{}

	// Nothing else may start.
	select {
	case <-r.started:
		t.Fatal("unexpected third refresh")
	case <-time.After(100 * time.Millisecond):
	}
	assert.Equal(t, int32(2), r.calls.Load())
}

func TestWorker_Interval(t *testing.T) {
	var calls atomic.Int32
	w := NewWorker(RefreshFunc(func(context.Context) error {
		calls.Add(1)
		return errors.New("backend down")
	}), 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	assert.Eventually(t, func() bool { return calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
}

func TestWorker_StopsOnCancel(t *testing.T) {
	w := NewWorker(RefreshFunc(func(context.Context) error { return nil }), 0)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}
