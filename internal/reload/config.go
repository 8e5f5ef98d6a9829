package reload

import "time"

// Config is the configuration of the config file watcher.
type Config struct {
	// Watch enables reloading on config file changes.
	Watch bool `yaml:"watch"`
	// Debounce is the quiet period after the last file event before the
	// configuration is reloaded.
	Debounce time.Duration `yaml:"debounce"`
}

// Default sets the default values for the configuration.
func (m *Config) Default() {
	m.Watch = true
	m.Debounce = 500 * time.Millisecond
}
