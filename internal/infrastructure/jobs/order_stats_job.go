// Package jobs holds the scheduled background tasks of the orders API.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/sistema-pedidos/orders-api/internal/api/metrics"
	"github.com/sistema-pedidos/orders-api/internal/core/domain"
)

// DefaultOrderStatsSchedule refreshes the status gauge once a minute.
const DefaultOrderStatsSchedule = "@every 1m"

const statsTimeout = 10 * time.Second

// StatusCounter is the slice of the order store the job reads.
type StatusCounter interface {
	CountByStatus(ctx context.Context) (map[domain.OrderStatus]int64, error)
}

// OrderStatsJob periodically publishes the number of orders per status.
type OrderStatsJob struct {
	counter  StatusCounter
	schedule string
	cron     *cron.Cron
	log      zerolog.Logger
}

func NewOrderStatsJob(counter StatusCounter, schedule string, log zerolog.Logger) *OrderStatsJob {
	if schedule == "" {
		schedule = DefaultOrderStatsSchedule
	}
	return &OrderStatsJob{
		counter:  counter,
		schedule: schedule,
		cron:     cron.New(),
		log:      log.With().Str("component", "order_stats_job").Logger(),
	}
}

// Start registers the refresh on the schedule and starts the scheduler.
func (j *OrderStatsJob) Start() error {
	if _, err := j.cron.AddFunc(j.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), statsTimeout)
		defer cancel()
		if err := j.Refresh(ctx); err != nil {
			j.log.Error().Err(err).Msg("order stats refresh failed")
		}
	}); err != nil {
		return fmt.Errorf("order stats job: schedule %q: %w", j.schedule, err)
	}

	j.cron.Start()
	j.log.Info().Str("schedule", j.schedule).Msg("order stats job started")
	return nil
}

// Stop halts the scheduler and waits for a running refresh to finish.
func (j *OrderStatsJob) Stop() {
	<-j.cron.Stop().Done()
	j.log.Info().Msg("order stats job stopped")
}

// Refresh reads the counts once and sets the gauge. Statuses without orders
// are reported as zero.
func (j *OrderStatsJob) Refresh(ctx context.Context) error {
	counts, err := j.counter.CountByStatus(ctx)
	if err != nil {
		return fmt.Errorf("count orders by status: %w", err)
	}
	for _, status := range domain.AllStatuses {
		metrics.OrdersByStatus.WithLabelValues(status.String()).Set(float64(counts[status]))
	}
	return nil
}
