/*
scheduler.go - Pay period rollover watcher

PURPOSE:
  A long-running server crosses pay period boundaries. The watcher checks
  periodically whether "today" has moved into a new period and, when it has,
  posts a notice with the closed period's take-home and reloads shifts.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Remembers the period it last saw; the first check only records it
  - A rollover happens when today is past the end of that period. The next
    period is the one starting the day after, so windows past the end of
    the period table keep a 14-day cadence instead of moving daily
  - Never writes to the store

USAGE:
  watcher := NewPeriodWatcher(handler)
  watcher.Start()
  // ... later
  watcher.Stop()

SEE ALSO:
  - payroll/period.go: CurrentAndPrevious
  - state.go: Notices
*/
package api

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/amauryrb/hwtimesheet/payroll"
)

// PeriodWatcher announces pay period rollovers.
type PeriodWatcher struct {
	Handler       *Handler
	CheckInterval time.Duration
	Enabled       bool

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex

	last payroll.PayPeriod
	seen bool
}

// NewPeriodWatcher creates a watcher that checks every hour.
func NewPeriodWatcher(h *Handler) *PeriodWatcher {
	return &PeriodWatcher{
		Handler:       h,
		CheckInterval: time.Hour,
		Enabled:       true,
	}
}

// Start begins the watcher.
func (pw *PeriodWatcher) Start() {
	pw.mu.Lock()
	defer pw.mu.Unlock()

	if !pw.Enabled {
		pw.Handler.Logger.Info("period watcher disabled")
		return
	}
	if pw.ticker != nil {
		return
	}

	pw.ticker = time.NewTicker(pw.CheckInterval)
	pw.stop = make(chan struct{})
	pw.wg.Add(1)
	go pw.run()

	pw.Handler.Logger.Info("period watcher started", zap.Duration("interval", pw.CheckInterval))
}

// Stop stops the watcher and waits for a running check to finish.
func (pw *PeriodWatcher) Stop() {
	pw.mu.Lock()
	defer pw.mu.Unlock()

	if pw.ticker == nil {
		return
	}
	pw.ticker.Stop()
	close(pw.stop)
	pw.wg.Wait()
	pw.ticker = nil
	pw.Handler.Logger.Info("period watcher stopped")
}

func (pw *PeriodWatcher) run() {
	defer pw.wg.Done()

	pw.Check(context.Background())
	for {
		select {
		case <-pw.ticker.C:
			pw.Check(context.Background())
		case <-pw.stop:
			return
		}
	}
}

// Check compares today with the last period seen and reports whether a
// rollover was announced.
func (pw *PeriodWatcher) Check(ctx context.Context) bool {
	h := pw.Handler
	today := payroll.DateOf(h.Service.Today())

	if !pw.seen || today.Before(pw.last.Start) {
		pw.last = payroll.ResolvePeriod(today)
		pw.seen = true
		return false
	}
	if !today.After(pw.last.End) {
		return false
	}

	closed := pw.last
	current := payroll.PeriodAfter(closed)
	for today.After(current.End) {
		closed = current
		current = payroll.PeriodAfter(current)
	}
	pw.last = current

	msg := fmt.Sprintf("📅 New pay period: %s", current.Describe())
	report, err := h.Service.PeriodReport(ctx, closed.Start, h.State.Snapshot().Params)
	if err != nil {
		h.Logger.Warn("failed to total closed period", zap.Error(err))
	} else {
		msg = fmt.Sprintf("%s (last period take-home $%s)", msg, report.Pay.AfterTax.StringFixed(2))
	}

	h.changed(ctx, NoticeInfo, msg)
	h.Logger.Info("pay period rolled over",
		zap.String("closed", closed.Describe()),
		zap.String("opened", current.Describe()))
	return true
}
