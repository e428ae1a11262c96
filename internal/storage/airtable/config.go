package airtable

import "time"

// Config holds Airtable connection and behavior settings
type Config struct {
	// BaseURL is the REST endpoint root
	BaseURL string

	// APIKey is the personal access token sent as a bearer token
	APIKey string

	// BaseID identifies the Airtable base (appXXXXXXXX)
	BaseID string

	// Tables maps logical collection names to Airtable table names.
	// Collections without an entry use their logical name.
	Tables map[string]string

	// RequestsPerSecond throttles outbound calls; Airtable allows 5 per base
	RequestsPerSecond float64
	Burst             int

	// Timeout bounds each HTTP request
	Timeout time.Duration
}

// DefaultConfig returns sensible defaults for Airtable configuration
func DefaultConfig() Config {
	return Config{
		BaseURL:           "https://api.airtable.com/v0",
		Tables:            map[string]string{},
		RequestsPerSecond: 5,
		Burst:             5,
		Timeout:           15 * time.Second,
	}
}

func (c Config) table(collection string) string {
	if t, ok := c.Tables[collection]; ok && t != "" {
		return t
	}
	return collection
}
