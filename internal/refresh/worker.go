package refresh

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"fitprime-classes/internal/apperror"
)

// Reason says why a refresh was requested.
type Reason string

const (
	ReasonFocus      Reason = "focus"
	ReasonVisibility Reason = "visibility"
	ReasonManual     Reason = "manual"
	ReasonUser       Reason = "user"
	ReasonInterval   Reason = "interval"
)

// ParseReason accepts the reasons a client may send.
func ParseReason(s string) (Reason, error) {
	switch r := Reason(s); r {
	case ReasonFocus, ReasonVisibility, ReasonManual:
		return r, nil
	case "":
		return ReasonManual, nil
	default:
		return "", apperror.Validation("reason", fmt.Sprintf("motivo desconocido %q", s))
	}
}

// Refresher reloads the class list.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// RefreshFunc adapts a function to Refresher.
type RefreshFunc func(ctx context.Context) error

func (f RefreshFunc) Refresh(ctx context.Context) error { return f(ctx) }

// Worker runs refreshes one at a time. Triggers that arrive while a refresh
// is running collapse into a single follow-up refresh.
type Worker struct {
	pending   chan Reason
	refresher Refresher
	interval  time.Duration
}

// NewWorker creates a worker. An interval of zero disables periodic refreshes.
func NewWorker(r Refresher, interval time.Duration) *Worker {
	return &Worker{
		pending:   make(chan Reason, 1), // one queued follow-up at most
		refresher: r,
		interval:  interval,
	}
}

// Trigger requests a refresh. It never blocks and reports false when the
// request was merged into one already queued.
func (w *Worker) Trigger(reason Reason) bool {
	select {
	case w.pending <- reason:
		return true
	default:
		return false
	}
}

// Run processes triggers until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	log.Printf("Refresh worker started (interval %s)", w.interval)

	var tick <-chan time.Time
	if w.interval > 0 {
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case reason := <-w.pending:
			w.refresh(ctx, reason)
		case <-tick:
			w.refresh(ctx, ReasonInterval)
		case <-ctx.Done():
			log.Println("Refresh worker shutting down")
			return
		}
	}
}

func (w *Worker) refresh(ctx context.Context, reason Reason) {
	log.Printf("Refreshing classes (%s)", reason)
	err := w.refresher.Refresh(ctx)
	switch {
	case err == nil, errors.Is(err, apperror.ErrSuperseded):
	case ctx.Err() != nil:
		// Shutting down.
	default:
		log.Printf("Error refreshing classes (%s): %v", reason, err)
	}
}
