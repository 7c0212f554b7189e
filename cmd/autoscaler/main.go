// Command autoscaler runs the C5 control loop: sample queue depth,
// compute the desired worker fleet size with hysteresis, and reconcile
// it through whichever orchestrator driver the environment selects.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"mailscout/internal/autoscaler"
	"mailscout/internal/config"
	"mailscout/pkg/queue"
)

func main() {
	cfg, err := config.LoadAutoscalerConfig()
	if err != nil {
		log.Fatalf("autoscaler: config error: %v", err)
	}

	broker, err := queue.NewRedisBroker(cfg.RedisURL)
	if err != nil {
		log.Fatalf("autoscaler: failed to connect to broker: %v", err)
	}
	defer broker.Close()

	var driver autoscaler.Driver
	if cfg.UseCloudDriver() {
		log.Printf("autoscaler: using cloud driver for app %s", cfg.CloudAppName)
		driver = autoscaler.NewCloudDriver("https://api.machines.dev/v1", cfg.CloudAppName, cfg.CloudRegion, cfg.WorkerImage, cfg.CloudAPIToken)
	} else {
		log.Printf("autoscaler: using local compose driver (file=%s project=%s)", cfg.ComposeFile, cfg.ComposeProject)
		driver = autoscaler.NewComposeDriver(cfg.ComposeFile, cfg.ComposeProject)
	}

	a := autoscaler.New(broker, driver, autoscaler.Config{
		QueueKey:                  cfg.QueueKey,
		MinWorkers:                cfg.MinWorkers,
		MaxWorkers:                cfg.MaxWorkers,
		ChunkSize:                 cfg.ChunkSize,
		Interval:                  cfg.Interval,
		IdleChecksBeforeScaleDown: cfg.IdleChecksBeforeScaleDown,
	})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Printf("autoscaler: starting, interval=%s min=%d max=%d", cfg.Interval, cfg.MinWorkers, cfg.MaxWorkers)
	a.Run(ctx)
	log.Println("autoscaler: shut down")
	os.Exit(0)
}
