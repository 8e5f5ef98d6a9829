package app

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"github.com/yanet-platform/tripso/internal/icmp"
	"github.com/yanet-platform/tripso/internal/monitoring/logger"
	"github.com/yanet-platform/tripso/internal/queue"
	"github.com/yanet-platform/tripso/internal/reload"
	"github.com/yanet-platform/tripso/internal/server"
	"github.com/yanet-platform/tripso/internal/translator"
)

type Config struct {
	Logger     *logger.Config     `yaml:"logging"`
	Translator *translator.Config `yaml:"translator"`
	Queue      *queue.Config      `yaml:"queue"`
	ICMP       *icmp.Config       `yaml:"icmp"`
	Server     *server.Config     `yaml:"server"`
	Reload     *reload.Config     `yaml:"reload"`
}

// DefaultConfig returns a configuration with every section set to its
// defaults. The translation mode is left unset.
func DefaultConfig() Config {
	config := Config{
		Logger:     &logger.Config{},
		Translator: &translator.Config{},
		Queue:      &queue.Config{},
		ICMP:       &icmp.Config{},
		Server:     &server.Config{},
		Reload:     &reload.Config{},
	}
	config.Logger.Default()
	config.Translator.Default()
	config.Queue.Default()
	config.ICMP.Default()
	config.Server.Default()
	config.Reload.Default()

	return config
}

// Prepare validates the configuration. Sections set to null in the file get
// their defaults back.
func (m *Config) Prepare() error {
	defaults := DefaultConfig()
	if m.Logger == nil {
		m.Logger = defaults.Logger
	}
	if m.Translator == nil {
		m.Translator = defaults.Translator
	}
	if m.Queue == nil {
		m.Queue = defaults.Queue
	}
	if m.ICMP == nil {
		m.ICMP = defaults.ICMP
	}
	if m.Server == nil {
		m.Server = defaults.Server
	}
	if m.Reload == nil {
		m.Reload = defaults.Reload
	}

	return m.Translator.Prepare()
}

// LoadConfig reads the YAML configuration at path over the defaults and
// validates it.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}

	config := DefaultConfig()
	if err = yaml.UnmarshalStrict(data, &config); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Prepare(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return config, nil
}
