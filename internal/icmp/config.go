package icmp

import "time"

// Config is the configuration of the Parameter Problem sender.
type Config struct {
	// Bind is the local address of the raw ICMP socket, empty for any.
	Bind string `yaml:"bind"`
	// RateLimitWindow is the minimal interval between two messages sent to
	// the same host. Zero disables rate limiting.
	RateLimitWindow time.Duration `yaml:"rate_limit_window"`
	// RateLimitSize is the number of hosts tracked by the rate limiter.
	RateLimitSize int `yaml:"rate_limit_size"`
}

// Default sets the default values for the configuration.
func (m *Config) Default() {
	m.Bind = "0.0.0.0"
	m.RateLimitWindow = time.Second
	m.RateLimitSize = 4096
}
