// Command worker runs the long-lived C3 worker runtime: pop a payload
// off the broker queue, verify every address under the concurrency
// governor, bulk-persist the verdicts, and repeat until terminated.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"mailscout/internal/config"
	"mailscout/internal/worker"
	"mailscout/pkg/governor"
	"mailscout/pkg/queue"
	"mailscout/pkg/store"
	"mailscout/pkg/verifier"
)

func main() {
	cfg, err := config.LoadWorkerConfig()
	if err != nil {
		log.Fatalf("worker: config error: %v", err)
	}

	broker, err := queue.NewRedisBroker(cfg.RedisURL)
	if err != nil {
		log.Fatalf("worker: failed to connect to broker: %v", err)
	}
	defer broker.Close()

	st, err := store.NewPostgresStore(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("worker: failed to connect to store: %v", err)
	}
	defer st.Close()

	gov := governor.New(governor.Config{
		GlobalConcurrency: cfg.WorkerConcurrency,
		DNSConcurrency:    cfg.DNSConcurrency,
		SMTPConcurrency:   cfg.SMTPConcurrency,
	})
	kernel := verifier.NewKernel(gov)

	w := worker.New(broker, st, kernel, gov, cfg.QueueKey)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Printf("worker: starting, queue=%s concurrency=%d", cfg.QueueKey, cfg.WorkerConcurrency)
	w.Run(ctx)
	log.Println("worker: shut down")
	os.Exit(0)
}
