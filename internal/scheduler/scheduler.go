// Package scheduler refreshes the market cache on a fixed interval.
package scheduler

import (
	"log"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/dense-analysis/cryptodash/internal/database"
	"github.com/dense-analysis/cryptodash/internal/fetch"
)

// Scheduler drives periodic market data refreshes in the background.
type Scheduler struct {
	cron   *gocron.Scheduler
	client *fetch.Client
}

// NewScheduler creates a scheduler that refreshes with the given client.
func NewScheduler(client *fetch.Client) *Scheduler {
	return &Scheduler{
		cron:   gocron.NewScheduler(time.UTC),
		client: client,
	}
}

// Start begins the refresh schedule on a background goroutine.
//
// Missed ticks are not replayed, and a failed cycle does not change the
// schedule. Request handling is never blocked by a running cycle.
func (scheduler *Scheduler) Start(interval time.Duration) {
	if _, err := scheduler.cron.Every(interval).Do(scheduler.runCycle); err != nil {
		log.Printf("failed to schedule market refresh: %s", err)

		return
	}

	scheduler.cron.StartAsync()
	log.Printf("Refreshing market data every %s", interval)
}

// Stop halts the refresh schedule.
func (scheduler *Scheduler) Stop() {
	scheduler.cron.Stop()
}

// runCycle runs one fetch cycle with its own scoped connection.
//
// The connection is never shared with request handlers.
func (scheduler *Scheduler) runCycle() {
	conn, err := database.Connect()

	if err != nil {
		log.Printf("fetch cycle skipped, connection error: %s", err)

		return
	}

	defer conn.Close()

	if err := scheduler.client.FetchAll(conn); err != nil {
		log.Printf("fetch cycle failed: %s", err)
	}
}
