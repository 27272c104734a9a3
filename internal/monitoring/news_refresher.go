package monitoring

import (
	"context"
	"fmt"
	"time"

	"github.com/m0nesy/f1kz-be/internal/services"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// NewsRefresher periodically regenerates the cached AI news feed so the
// news page never waits on the model.
type NewsRefresher struct {
	newsSvc  services.NewsServiceProvider
	schedule cron.Schedule
	ticker   *time.Ticker
	done     chan bool
	nextRun  time.Time
}

// NewNewsRefresher creates a refresher driven by a standard cron expression.
func NewNewsRefresher(newsSvc services.NewsServiceProvider, cronExpr string) (*NewsRefresher, error) {
	schedule, err := cron.ParseStandard(cronExpr)
	if err != nil {
		return nil, fmt.Errorf("invalid news refresh cron expression: %w", err)
	}
	return &NewsRefresher{
		newsSvc:  newsSvc,
		schedule: schedule,
		done:     make(chan bool),
	}, nil
}

// Run starts the refresher's ticking loop.
func (nr *NewsRefresher) Run() {
	log.Info().Msg("Starting background news refresher...")
	nr.ticker = time.NewTicker(30 * time.Second)
	defer nr.ticker.Stop()

	// Generate a feed immediately on start
	nr.refresh()
	nr.nextRun = nr.schedule.Next(time.Now())

	for {
		select {
		case <-nr.done:
			log.Info().Msg("Stopping background news refresher.")
			return
		case now := <-nr.ticker.C:
			if now.Before(nr.nextRun) {
				continue
			}
			nr.refresh()
			nr.nextRun = nr.schedule.Next(now)
		}
	}
}

// Stop halts the refresher.
func (nr *NewsRefresher) Stop() {
	nr.done <- true
}

func (nr *NewsRefresher) refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if _, err := nr.newsSvc.Refresh(ctx); err != nil {
		log.Error().Err(err).Msg("Scheduled news refresh failed")
	}
}
