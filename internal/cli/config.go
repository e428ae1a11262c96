package cli

import (
	"os"
)

// Config holds CLI configuration
type Config struct {
	ServerURL  string
	AdminToken string
	Output     string
	Verbose    bool

	// Station identity sent with every request
	Site      string
	Role      string
	SessionID string
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		ServerURL:  getEnvOrDefault("REGISTRO_SERVER", "http://localhost:8080"),
		AdminToken: os.Getenv("REGISTRO_ADMIN_TOKEN"),
		Output:     "text",
		Verbose:    false,
		Site:       os.Getenv("REGISTRO_SEDE"),
		Role:       os.Getenv("REGISTRO_ROL"),
		SessionID:  os.Getenv("REGISTRO_SESSION_ID"),
	}
}

// Station returns the station headers to send, skipping empty values
func (c *Config) Station() map[string]string {
	h := map[string]string{}
	if c.Site != "" {
		h["X-Sede"] = c.Site
	}
	if c.Role != "" {
		h["X-Rol"] = c.Role
	}
	if c.SessionID != "" {
		h["X-Session-Id"] = c.SessionID
	}
	return h
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
