package monitoring

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store persists system and API metrics in Postgres. Writes are
// best-effort and never block request handling.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) RecordSystemMetrics(cpu float64, memUsed, memTotal, diskUsed, diskTotal uint64) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := s.pool.Exec(ctx, `
		INSERT INTO metrics_system (time, cpu_percent, mem_used, mem_total, disk_used, disk_total)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, time.Now(), cpu, memUsed, memTotal, diskUsed, diskTotal)

	return err
}

func (s *Store) RecordAPIMetric(method, path string, status int, duration time.Duration, ip string) {
	// Run in background to not block the request.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		_, err := s.pool.Exec(ctx, `
			INSERT INTO metrics_api (time, method, path, status_code, duration_ms, ip_address)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, time.Now(), method, path, status, float64(duration.Milliseconds()), ip)

		if err != nil {
			log.Printf("[Monitoring] Failed to record API metric: %v", err)
		}
	}()
}

type APISummary struct {
	TotalRequests int64   `json:"total_requests"`
	AvgDuration   float64 `json:"avg_duration"`
	ErrorRate     float64 `json:"error_rate"`
}

type TimePoint struct {
	Time  time.Time `json:"time"`
	Value float64   `json:"value"`
}

func (s *Store) GetAPISummary(ctx context.Context, duration time.Duration) (APISummary, error) {
	var summary APISummary
	err := s.pool.QueryRow(ctx, `
		SELECT
			COUNT(*) as total,
			COALESCE(AVG(duration_ms), 0) as avg_lat,
			COALESCE(SUM(CASE WHEN status_code >= 500 THEN 1 ELSE 0 END)::float / NULLIF(COUNT(*), 0), 0) as err_rate
		FROM metrics_api
		WHERE time > NOW() - $1::interval
	`, duration.String()).Scan(&summary.TotalRequests, &summary.AvgDuration, &summary.ErrorRate)

	return summary, err
}

func (s *Store) GetCPUTrend(ctx context.Context, duration time.Duration) ([]TimePoint, error) {
	return s.trend(ctx, "AVG(cpu_percent)", duration)
}

func (s *Store) GetMemoryTrend(ctx context.Context, duration time.Duration) ([]TimePoint, error) {
	return s.trend(ctx, "AVG(mem_used::float / NULLIF(mem_total, 0) * 100)", duration)
}

func (s *Store) GetDiskTrend(ctx context.Context, duration time.Duration) ([]TimePoint, error) {
	return s.trend(ctx, "AVG(disk_used::float / NULLIF(disk_total, 0) * 100)", duration)
}

func (s *Store) trend(ctx context.Context, expr string, duration time.Duration) ([]TimePoint, error) {
	rows, err := s.pool.Query(ctx, fmt.Sprintf(`
		SELECT date_trunc('minute', time) as bucket, %s
		FROM metrics_system
		WHERE time > NOW() - $1::interval
		GROUP BY bucket
		ORDER BY bucket
	`, expr), duration.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []TimePoint
	for rows.Next() {
		var p TimePoint
		if err := rows.Scan(&p.Time, &p.Value); err != nil {
			continue
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

// APILog is a single recorded API request.
type APILog struct {
	Time       time.Time `json:"time"`
	Method     string    `json:"method"`
	Path       string    `json:"path"`
	StatusCode int       `json:"status_code"`
	Duration   float64   `json:"duration_ms"`
	IPAddress  string    `json:"ip_address"`
}

func (s *Store) GetAPILogs(ctx context.Context, duration time.Duration, errorsOnly bool, limit, offset int) ([]APILog, error) {
	query := `
		SELECT time, method, path, status_code, duration_ms, ip_address
		FROM metrics_api
		WHERE time > NOW() - $1::interval
	`
	if errorsOnly {
		query += " AND status_code >= 400"
	}
	query += " ORDER BY time DESC LIMIT $2 OFFSET $3"

	rows, err := s.pool.Query(ctx, query, duration.String(), limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []APILog
	for rows.Next() {
		var l APILog
		if err := rows.Scan(&l.Time, &l.Method, &l.Path, &l.StatusCode, &l.Duration, &l.IPAddress); err != nil {
			continue
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
