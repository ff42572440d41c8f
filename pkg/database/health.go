package database

import (
	"context"
	stdsql "database/sql"
	"time"
)

// HealthStatus reports connection pool health.
type HealthStatus struct {
	Connected      bool   `json:"connected"`
	OpenConns      int    `json:"open_connections"`
	InUse          int    `json:"in_use"`
	Idle           int    `json:"idle"`
	PingDurationMS int64  `json:"ping_duration_ms"`
	Error          string `json:"error,omitempty"`
}

// Health pings the database and reports pool statistics.
func Health(ctx context.Context, db *stdsql.DB) (HealthStatus, error) {
	start := time.Now()
	err := db.PingContext(ctx)
	stats := db.Stats()

	status := HealthStatus{
		Connected:      err == nil,
		OpenConns:      stats.OpenConnections,
		InUse:          stats.InUse,
		Idle:           stats.Idle,
		PingDurationMS: time.Since(start).Milliseconds(),
	}
	if err != nil {
		status.Error = err.Error()
	}
	return status, err
}
