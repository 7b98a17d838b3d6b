// Command simulate hammers the booking endpoint with concurrent requests for
// a small set of doctors and slots, then checks the database for overlapping
// appointments. Useful for demonstrating that contention resolves into
// conflicts rather than double-bookings.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"os"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/clinicdesk/clinic-scheduling/internal/config"
	"github.com/clinicdesk/clinic-scheduling/internal/db"
	"github.com/clinicdesk/clinic-scheduling/internal/token"
)

type simConfig struct {
	APIBaseURL string
	Workers    int
	Requests   int
	Doctors    int
	Date       time.Time
}

type counters struct {
	booked    int64
	conflicts int64
	errors    int64
}

func main() {
	log := zerolog.New(os.Stderr).With().Timestamp().Str("service", "simulate").Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load error")
	}

	sim := simConfig{
		APIBaseURL: getEnv("SIM_API_URL", "http://127.0.0.1:"+cfg.HTTPPort),
		Workers:    getEnvInt("SIM_WORKERS", 20),
		Requests:   getEnvInt("SIM_REQUESTS", 500),
		Doctors:    getEnvInt("SIM_DOCTORS", 5),
		Date:       time.Now().AddDate(0, 0, 1),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	pool, err := db.ConnectPostgres(ctx, cfg.PostgresDSN)
	cancel()
	if err != nil {
		log.Fatal().Err(err).Msg("connect postgres")
	}
	defer pool.Close()

	doctorIDs, err := sampleDoctors(context.Background(), pool, sim.Doctors)
	if err != nil {
		log.Fatal().Err(err).Msg("load doctors")
	}
	patientEmails, err := samplePatients(context.Background(), pool, sim.Workers)
	if err != nil {
		log.Fatal().Err(err).Msg("load patients")
	}
	if len(doctorIDs) == 0 || len(patientEmails) == 0 {
		log.Fatal().Msg("run the seed command first")
	}

	tokens := token.NewManager(cfg.JWTSecret, cfg.TokenTTL)
	var c counters
	var wg sync.WaitGroup

	perWorker := sim.Requests / sim.Workers
	start := time.Now()

	for w := 0; w < sim.Workers; w++ {
		email := patientEmails[w%len(patientEmails)]
		bearer, err := tokens.Generate(email)
		if err != nil {
			log.Fatal().Err(err).Msg("mint token")
		}

		wg.Add(1)
		go func(bearer string) {
			defer wg.Done()
			client := &http.Client{Timeout: 5 * time.Second}
			for i := 0; i < perWorker; i++ {
				doctorID := doctorIDs[rand.Intn(len(doctorIDs))]
				hour := 9 + rand.Intn(8)
				startTime := time.Date(sim.Date.Year(), sim.Date.Month(), sim.Date.Day(), hour, 0, 0, 0, time.UTC)
				book(client, sim.APIBaseURL, bearer, doctorID, startTime, &c)
			}
		}(bearer)
	}

	wg.Wait()
	elapsed := time.Since(start)

	dupes, err := countOverlaps(context.Background(), pool)
	if err != nil {
		log.Fatal().Err(err).Msg("overlap check")
	}

	log.Info().
		Int64("booked", atomic.LoadInt64(&c.booked)).
		Int64("conflicts", atomic.LoadInt64(&c.conflicts)).
		Int64("errors", atomic.LoadInt64(&c.errors)).
		Dur("elapsed", elapsed).
		Int("overlapping_pairs", dupes).
		Msg("simulation finished")

	if dupes > 0 {
		log.Error().Msg("DOUBLE BOOKING DETECTED")
		os.Exit(1)
	}
}

func book(client *http.Client, baseURL, bearer string, doctorID uuid.UUID, start time.Time, c *counters) {
	body, _ := json.Marshal(map[string]any{
		"doctor_id":  doctorID.String(),
		"start_time": start.Format(time.RFC3339),
	})

	req, err := http.NewRequest(http.MethodPost, baseURL+"/appointments", bytes.NewReader(body))
	if err != nil {
		atomic.AddInt64(&c.errors, 1)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+bearer)

	resp, err := client.Do(req)
	if err != nil {
		atomic.AddInt64(&c.errors, 1)
		return
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusCreated:
		atomic.AddInt64(&c.booked, 1)
	case http.StatusConflict:
		atomic.AddInt64(&c.conflicts, 1)
	default:
		atomic.AddInt64(&c.errors, 1)
	}
}

func sampleDoctors(ctx context.Context, pool *pgxpool.Pool, limit int) ([]uuid.UUID, error) {
	rows, err := pool.Query(ctx, `SELECT id FROM doctors LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func samplePatients(ctx context.Context, pool *pgxpool.Pool, limit int) ([]string, error) {
	rows, err := pool.Query(ctx, `SELECT email FROM patients LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var emails []string
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, err
		}
		emails = append(emails, email)
	}
	return emails, rows.Err()
}

// countOverlaps counts pairs of appointments for the same doctor whose
// 59-minute windows intersect. Zero is the only acceptable answer.
func countOverlaps(ctx context.Context, pool *pgxpool.Pool) (int, error) {
	var n int
	err := pool.QueryRow(ctx, `
		SELECT count(*)
		FROM appointments a
		JOIN appointments b
		  ON a.doctor_id = b.doctor_id
		 AND a.id < b.id
		 AND abs(extract(epoch FROM a.start_time - b.start_time)) < 59 * 60
	`).Scan(&n)
	return n, err
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
