package autoscaler

import (
	"context"
	"log"
	"time"

	"mailscout/pkg/monitoring"
	"mailscout/pkg/queue"
)

// Autoscaler runs the queue-depth-driven control loop: sample, compute
// a desired fleet size, reconcile with hysteresis.
type Autoscaler struct {
	broker   queue.Broker
	driver   Driver
	queueKey string

	minWorkers int
	maxWorkers int
	chunkSize  int
	interval   time.Duration

	idleChecksBeforeScaleDown int
	idleStreak                int
}

// Config carries the tunables LoadAutoscalerConfig produces.
type Config struct {
	QueueKey                  string
	MinWorkers                int
	MaxWorkers                int
	ChunkSize                 int
	Interval                  time.Duration
	IdleChecksBeforeScaleDown int
}

// New builds an Autoscaler against broker and driver.
func New(broker queue.Broker, driver Driver, cfg Config) *Autoscaler {
	return &Autoscaler{
		broker:                    broker,
		driver:                    driver,
		queueKey:                  cfg.QueueKey,
		minWorkers:                cfg.MinWorkers,
		maxWorkers:                cfg.MaxWorkers,
		chunkSize:                 cfg.ChunkSize,
		interval:                  cfg.Interval,
		idleChecksBeforeScaleDown: cfg.IdleChecksBeforeScaleDown,
	}
}

// Run loops until ctx is cancelled, running one reconciliation cycle
// per interval.
func (a *Autoscaler) Run(ctx context.Context) {
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	a.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.tick(ctx)
		}
	}
}

func (a *Autoscaler) tick(ctx context.Context) {
	depth, err := a.broker.QueueDepth(ctx, a.queueKey)
	if err != nil {
		log.Printf("autoscaler: queue depth sample failed: %v", err)
		return
	}

	current, err := a.driver.ListWorkers(ctx)
	if err != nil {
		log.Printf("autoscaler: list workers failed: %v", err)
		return
	}

	needed := a.desiredWorkers(depth)
	monitoring.RecordQueueDepth(depth)
	monitoring.RecordFleetSizes(needed, current)

	switch {
	case needed > current:
		a.idleStreak = 0
		if err := a.driver.ScaleTo(ctx, needed); err != nil {
			log.Printf("autoscaler: scale up to %d failed: %v", needed, err)
			return
		}
		log.Printf("autoscaler: scaled up %d -> %d (queue depth %d)", current, needed, depth)

	case needed < current:
		a.idleStreak++
		if a.idleStreak < a.idleChecksBeforeScaleDown {
			return
		}
		if err := a.driver.ScaleTo(ctx, needed); err != nil {
			log.Printf("autoscaler: scale down to %d failed: %v", needed, err)
			return
		}
		log.Printf("autoscaler: scaled down %d -> %d (queue depth %d)", current, needed, depth)
		a.idleStreak = 0

	default:
		a.idleStreak = 0
	}
}

// desiredWorkers computes the needed worker count from queue depth:
//
//	needed = ceil(q / CHUNK_SIZE)
//	if 0 < q < CHUNK_SIZE: needed = min(q, MAX_WORKERS)
//	needed = clamp(needed, MIN_WORKERS, MAX_WORKERS)
func (a *Autoscaler) desiredWorkers(depth int64) int {
	q := int(depth)
	chunkSize := a.chunkSize
	if chunkSize <= 0 {
		chunkSize = 1
	}

	needed := (q + chunkSize - 1) / chunkSize
	if q > 0 && q < chunkSize {
		needed = min(q, a.maxWorkers)
	}
	return min(max(needed, a.minWorkers), a.maxWorkers)
}
