// Command apiserver runs the minimal HTTP ingress stub: job submission
// and status polling backed by the C4 job producer.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mailscout/internal/api"
	"mailscout/internal/config"
	"mailscout/internal/producer"
	"mailscout/pkg/monitoring"
	"mailscout/pkg/queue"
	"mailscout/pkg/store"
)

func main() {
	cfg, err := config.LoadProducerConfig()
	if err != nil {
		log.Fatalf("apiserver: config error: %v", err)
	}

	broker, err := queue.NewRedisBroker(cfg.RedisURL)
	if err != nil {
		log.Fatalf("apiserver: failed to connect to broker: %v", err)
	}
	defer broker.Close()

	st, err := store.NewPostgresStore(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("apiserver: failed to connect to store: %v", err)
	}
	defer st.Close()

	p := producer.New(st, broker, cfg.QueueKey, cfg.ChunkSize)
	handler := api.NewHandler(p)

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)
	mux.Handle("/metrics", monitoring.PrometheusHandler())

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           monitoring.MetricsMiddleware(mux),
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	go func() {
		<-ctx.Done()
		log.Println("apiserver: shutting down")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("apiserver: shutdown error: %v", err)
		}
	}()

	log.Printf("apiserver: starting on :%s", port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("apiserver: server failed: %v", err)
	}
}
