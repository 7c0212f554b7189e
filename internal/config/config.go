// Package config reads the environment-variable configuration for each
// binary (worker, autoscaler, producer/ingress). There is no config
// file format: every setting is an environment variable, read once at
// startup, fatal on a missing required value.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

func requireEnv(key string) (string, error) {
	v := os.Getenv(key)
	if v == "" {
		return "", fmt.Errorf("%s environment variable is required", key)
	}
	return v, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOrDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func envDurationOrDefault(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	secs, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return time.Duration(secs) * time.Second
}

// WorkerConfig configures the C3 worker runtime.
type WorkerConfig struct {
	RedisURL        string
	QueueKey        string
	DatabaseURL     string
	LogLevel        string
	WorkerConcurrency int
	DNSConcurrency    int
	SMTPConcurrency   int
}

// LoadWorkerConfig reads WorkerConfig from the environment. REDIS_URL
// and DATABASE_URL are required; everything else has a default.
func LoadWorkerConfig() (WorkerConfig, error) {
	redisURL, err := requireEnv("REDIS_URL")
	if err != nil {
		return WorkerConfig{}, err
	}
	databaseURL, err := requireEnv("DATABASE_URL")
	if err != nil {
		return WorkerConfig{}, err
	}
	return WorkerConfig{
		RedisURL:          redisURL,
		QueueKey:          envOrDefault("QUEUE_KEY", "mailscout:jobs"),
		DatabaseURL:       databaseURL,
		LogLevel:          envOrDefault("LOG_LEVEL", "info"),
		WorkerConcurrency: envIntOrDefault("WORKER_CONCURRENCY", 50),
		DNSConcurrency:    envIntOrDefault("DNS_CONCURRENCY", 50),
		SMTPConcurrency:   envIntOrDefault("SMTP_CONCURRENCY", 25),
	}, nil
}

// AutoscalerConfig configures the C5 control loop.
type AutoscalerConfig struct {
	RedisURL                 string
	QueueKey                 string
	MinWorkers               int
	MaxWorkers               int
	ChunkSize                int
	Interval                 time.Duration
	IdleChecksBeforeScaleDown int

	ComposeFile    string
	ComposeProject string

	CloudAPIToken string
	CloudAppName  string
	CloudRegion   string
	WorkerImage   string
}

// UseCloudDriver reports whether the cloud-app-name variable is set.
func (c AutoscalerConfig) UseCloudDriver() bool {
	return c.CloudAppName != ""
}

// LoadAutoscalerConfig reads AutoscalerConfig from the environment.
func LoadAutoscalerConfig() (AutoscalerConfig, error) {
	redisURL, err := requireEnv("REDIS_URL")
	if err != nil {
		return AutoscalerConfig{}, err
	}
	minWorkers := envIntOrDefault("MIN_WORKERS", 1)
	if minWorkers < 1 {
		return AutoscalerConfig{}, fmt.Errorf("MIN_WORKERS must be >= 1, got %d", minWorkers)
	}
	return AutoscalerConfig{
		RedisURL:                  redisURL,
		QueueKey:                  envOrDefault("QUEUE_KEY", "mailscout:jobs"),
		MinWorkers:                minWorkers,
		MaxWorkers:                envIntOrDefault("MAX_WORKERS", 10),
		ChunkSize:                 envIntOrDefault("CHUNK_SIZE", 1000),
		Interval:                  envDurationOrDefault("INTERVAL", 15*time.Second),
		IdleChecksBeforeScaleDown: envIntOrDefault("IDLE_CHECKS_BEFORE_SCALE_DOWN", 3),
		ComposeFile:               os.Getenv("COMPOSE_FILE"),
		ComposeProject:            os.Getenv("COMPOSE_PROJECT"),
		CloudAPIToken:             os.Getenv("API_TOKEN"),
		CloudAppName:              os.Getenv("APP_NAME"),
		CloudRegion:               os.Getenv("REGION"),
		WorkerImage:               os.Getenv("WORKER_IMAGE"),
	}, nil
}

// ProducerConfig configures the C4 job producer, as embedded in the
// ingress process.
type ProducerConfig struct {
	RedisURL    string
	QueueKey    string
	DatabaseURL string
	ChunkSize   int
}

// LoadProducerConfig reads ProducerConfig from the environment.
func LoadProducerConfig() (ProducerConfig, error) {
	redisURL, err := requireEnv("REDIS_URL")
	if err != nil {
		return ProducerConfig{}, err
	}
	databaseURL, err := requireEnv("DATABASE_URL")
	if err != nil {
		return ProducerConfig{}, err
	}
	return ProducerConfig{
		RedisURL:    redisURL,
		QueueKey:    envOrDefault("QUEUE_KEY", "mailscout:jobs"),
		DatabaseURL: databaseURL,
		ChunkSize:   envIntOrDefault("CHUNK_SIZE", 1000),
	}, nil
}
