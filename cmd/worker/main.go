package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"asistencia/internal/attendance"
	"asistencia/internal/config"
	"asistencia/internal/queue"
	"asistencia/internal/store"
)

// Worker consumes write events from the queue and keeps the monthly stats
// cache in redis warm, so the admin dashboard reads fresh aggregates without
// hitting Postgres on every load.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("shutdown signal received")
		cancel()
	}()

	db, err := store.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer db.Close()

	redisClient := store.NewRedis(cfg.RedisAddr)
	defer redisClient.Close()

	var events queue.Queue
	if cfg.QueueBackend == "memory" {
		events = queue.NewInMemory(64)
	} else {
		events = queue.NewRedisQueue(redisClient.Client, "")
	}

	repo := attendance.NewRepository(db.Client)
	cache := attendance.NewStatsCache(redisClient.Client)
	svc := attendance.NewService(repo, cache, nil)

	messages, err := events.Consume(ctx)
	if err != nil {
		log.Fatalf("queue consume init failed: %v", err)
	}

	log.Println("worker started, waiting for write events...")
	for msg := range messages {
		switch msg.Type {
		case queue.TypeAttendance:
			stats, err := svc.RefreshMonthStats(ctx)
			if err != nil {
				log.Printf("stats refresh failed for %s: %v", msg.Body, err)
				continue
			}
			log.Printf("month stats refreshed after %s: total=%d present=%d absent=%d",
				msg.Body, stats.Total, stats.Present, stats.Absent)
		case queue.TypeRequest:
			// Nothing to aggregate yet; logged for the audit trail.
			log.Printf("request event %s", msg.Body)
		default:
			log.Printf("skipping unknown event type %q", msg.Type)
		}
	}

	log.Println("worker stopped")
}
