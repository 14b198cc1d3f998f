/*
scheduler.go - Automated plan activation and payout scheduler

PURPOSE:
  Periodically processes the plan activation queue and runs the payout
  cycle (payout factor recalculation, certificate payouts for each
  active day, expired-cooperation sweep).

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Activation runs first so freshly approved plans join the same cycle
  - Every step is idempotent: re-running a cycle pays nothing twice

CONFIGURATION:
  - CheckInterval: How often to run (default: 1 hour)
  - Enabled: Whether scheduler is active (default: true)

USAGE:
  scheduler := NewEconomyScheduler(handler)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - handlers.go: TriggerActivation / TriggerPayoutCycle (manual runs)
  - economy/update_plans_and_payout.go: The cycle itself
*/
package api

import (
	"context"
	"log"
	"sync"
	"time"
)

// EconomyScheduler runs plan activation and the payout cycle on a timer.
type EconomyScheduler struct {
	Handler       *Handler
	CheckInterval time.Duration
	Enabled       bool

	ticker *time.Ticker
	stop   chan bool
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewEconomyScheduler creates a new scheduler.
func NewEconomyScheduler(handler *Handler) *EconomyScheduler {
	return &EconomyScheduler{
		Handler:       handler,
		CheckInterval: 1 * time.Hour,
		Enabled:       true,
		stop:          make(chan bool),
	}
}

// Start begins the scheduler.
func (es *EconomyScheduler) Start() {
	es.mu.Lock()
	defer es.mu.Unlock()

	if !es.Enabled {
		log.Println("[Scheduler] Disabled, not starting")
		return
	}

	es.ticker = time.NewTicker(es.CheckInterval)
	es.wg.Add(1)

	go es.run()

	log.Printf("[Scheduler] Started with check interval: %v", es.CheckInterval)
}

// Stop stops the scheduler.
func (es *EconomyScheduler) Stop() {
	es.mu.Lock()
	defer es.mu.Unlock()

	if es.ticker != nil {
		es.ticker.Stop()
		close(es.stop)
		es.wg.Wait()
		log.Println("[Scheduler] Stopped")
	}
}

func (es *EconomyScheduler) run() {
	defer es.wg.Done()

	// Run immediately on start
	es.runCycle()

	for {
		select {
		case <-es.ticker.C:
			es.runCycle()
		case <-es.stop:
			return
		}
	}
}

func (es *EconomyScheduler) runCycle() {
	ctx := context.Background()
	now := es.Handler.Clock.Now()

	log.Printf("[Scheduler] Running economy cycle at %v", now)

	activated, err := es.Handler.ActivatePlans.Activate(ctx)
	if err != nil {
		log.Printf("[Scheduler] Error activating plans: %v", err)
	} else if activated > 0 {
		log.Printf("[Scheduler] Activated %d plans", activated)
	}

	if err := es.Handler.PayoutCycle.Run(ctx); err != nil {
		log.Printf("[Scheduler] Error running payout cycle: %v", err)
		return
	}

	factor, err := es.Handler.Payout.Latest(ctx)
	if err == nil {
		log.Printf("[Scheduler] Cycle completed, payout factor: %s", factor.String())
	}
}

// RunNow triggers an immediate cycle (for testing/admin).
func (es *EconomyScheduler) RunNow() {
	es.runCycle()
}

// GetNextRunTime returns when the next scheduled cycle will occur.
func (es *EconomyScheduler) GetNextRunTime() time.Time {
	return time.Now().Add(es.CheckInterval)
}
