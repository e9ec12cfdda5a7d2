package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

const pingTimeout = 3 * time.Second

// Health is the database section of GET /health.
type Health struct {
	Healthy   bool      `json:"healthy"`
	Latency   string    `json:"latency"`
	Error     string    `json:"error,omitempty"`
	Pool      Pool      `json:"pool"`
	Pressure  []string  `json:"pressure,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
}

// Pool is the part of sql.DBStats shown to operators.
type Pool struct {
	MaxOpen  int    `json:"max_open"`
	Open     int    `json:"open"`
	InUse    int    `json:"in_use"`
	Idle     int    `json:"idle"`
	Waits    int64  `json:"waits"`
	WaitTime string `json:"wait_time"`
}

func poolOf(s sql.DBStats) Pool {
	return Pool{
		MaxOpen:  s.MaxOpenConnections,
		Open:     s.OpenConnections,
		InUse:    s.InUse,
		Idle:     s.Idle,
		Waits:    s.WaitCount,
		WaitTime: s.WaitDuration.String(),
	}
}

// Health pings MySQL and reports the pool state.
func (db *DB) Health(ctx context.Context) Health {
	started := time.Now()
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	err := db.PingContext(pingCtx)
	stats := db.Stats()

	h := Health{
		Healthy:   err == nil,
		Latency:   time.Since(started).Round(time.Microsecond).String(),
		Pool:      poolOf(stats),
		Pressure:  pressure(stats),
		CheckedAt: started.UTC(),
	}
	if err != nil {
		h.Error = err.Error()
		slog.Error("MySQL ping failed", "error", err, "latency", h.Latency)
	}
	for _, p := range h.Pressure {
		slog.Warn("MySQL pool under pressure", "detail", p)
	}
	return h
}

// pressure lists what looks wrong with the pool: nearly every connection
// busy, or callers having waited more than a second in total for one.
func pressure(s sql.DBStats) []string {
	var out []string
	if s.MaxOpenConnections > 0 && s.InUse*10 >= s.MaxOpenConnections*9 {
		out = append(out, fmt.Sprintf("%d of %d connections in use", s.InUse, s.MaxOpenConnections))
	}
	if s.WaitCount > 0 && s.WaitDuration > time.Second {
		out = append(out, fmt.Sprintf("%d waits for a connection, %s in total", s.WaitCount, s.WaitDuration))
	}
	return out
}
