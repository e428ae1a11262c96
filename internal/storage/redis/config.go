package redis

import "time"

// Config holds Redis connection and behavior settings
type Config struct {
	// URL is the Redis connection URL (e.g., redis://localhost:6379)
	URL string

	// Pool settings
	PoolSize     int
	MinIdleConns int

	// DialTimeout bounds the initial connection check
	DialTimeout time.Duration

	// IndexedFields get a case-folded secondary index so FindOne on them
	// is a set lookup instead of a collection scan
	IndexedFields []string
}

// DefaultConfig returns sensible defaults for Redis configuration
func DefaultConfig() Config {
	return Config{
		URL:           "redis://localhost:6379",
		PoolSize:      10,
		MinIdleConns:  2,
		DialTimeout:   5 * time.Second,
		IndexedFields: []string{"uuid", "dni"},
	}
}
