package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/clinicdesk/clinic-scheduling/internal/clinic"
	"github.com/clinicdesk/clinic-scheduling/internal/config"
	"github.com/clinicdesk/clinic-scheduling/internal/db"
	redisclient "github.com/clinicdesk/clinic-scheduling/internal/redis"
)

// The status worker periodically flips upcoming appointments whose window
// has passed to completed, so past/future history filters stay truthful
// without any write happening on the read path.
func main() {
	log := zerolog.New(os.Stderr).With().Timestamp().Str("service", "status-worker").Logger()
	log.Info().Msg("status-worker starting up")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load error")
	}

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
	pgPool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
	cancelPg()
	if err != nil {
		log.Fatal().Err(err).Msg("postgres connection error")
	}
	defer pgPool.Close()

	rdb, err := redisclient.NewRedisClient(cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection error")
	}
	defer func() { _ = rdb.Close() }()

	repo := clinic.NewPgRepository(pgPool)
	locker := redisclient.NewRedisScheduleLocker(rdb, cfg.LockTTL)
	appointments := clinic.NewAppointmentService(repo, locker, log)

	log.Info().Dur("interval", cfg.WorkerInterval).Msg("worker loop starting")

	ticker := time.NewTicker(cfg.WorkerInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rootCtx.Done():
			log.Info().Msg("shutting down status-worker")
			return
		case <-ticker.C:
			runCtx, cancel := context.WithTimeout(rootCtx, cfg.WorkerInterval)
			n, err := appointments.CompletePastAppointments(runCtx)
			cancel()
			if err != nil {
				log.Error().Err(err).Msg("completing past appointments failed")
				continue
			}
			if n > 0 {
				log.Info().Int64("completed", n).Msg("status sweep done")
			}
		}
	}
}
