package constants

import "time"

const (
	ExternalAPITimeout = 10 * time.Second
	DatabaseTimeout    = 5 * time.Second
	RequestTimeout     = 30 * time.Second
)

const (
	DBMaxOpenConns    = 100
	DBMaxIdleConns    = 10
	DBConnMaxLifetime = 1 * time.Hour
	DBMaxIdleTime     = 10 * time.Minute
)

const (
	// RolloverWorkers bounds the per-member fan-out of the nightly job.
	RolloverWorkers = 8

	// RolloverRunTimeout caps one whole nightly run.
	RolloverRunTimeout = 30 * time.Minute
)

const (
	ShutdownTimeout = 5 * time.Second
)

const (
	DefaultTimezone = "Asia/Kolkata"
)
