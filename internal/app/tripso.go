package app

import (
	"context"
	"fmt"
	"time"

	log "go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/yanet-platform/tripso/internal/icmp"
	"github.com/yanet-platform/tripso/internal/monitoring/metrics/prometheus"
	"github.com/yanet-platform/tripso/internal/queue"
	"github.com/yanet-platform/tripso/internal/reload"
	"github.com/yanet-platform/tripso/internal/server"
	"github.com/yanet-platform/tripso/internal/translator"
)

// Tripso is the label translation service: it reads packets from the
// netfilter queue, translates them and serves the management endpoints.
type Tripso struct {
	config Config

	translator *translator.Translator
	notifier   *icmp.Sender
	queue      *queue.Queue
	watcher    *reload.Watcher

	server *server.Server

	metrics *prometheus.Provider
	logger  *log.Logger
}

// New creates a new instance of the service. configPath is watched for
// changes when reloading is enabled.
func New(config Config, configPath string, logger *log.Logger) (*Tripso, error) {
	provider := prometheus.NewProvider(logger)

	notifier, err := icmp.New(config.ICMP, provider, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create icmp sender: %w", err)
	}

	processor, err := translator.New(config.Translator, notifier, provider, logger)
	if err != nil {
		notifier.Close()
		return nil, fmt.Errorf("failed to create translator: %w", err)
	}

	nfq, err := queue.New(config.Queue, processor, logger)
	if err != nil {
		notifier.Close()
		return nil, fmt.Errorf("failed to create queue: %w", err)
	}

	m := &Tripso{
		config:     config,
		translator: processor,
		notifier:   notifier,
		queue:      nfq,
		metrics:    provider,
		logger:     logger,
	}

	m.server = server.New(config.Server, provider, func() any { return m.translator.Status() }, logger)
	if config.Reload.Watch && configPath != "" {
		m.watcher = reload.New(configPath, config.Reload, m.reload, logger)
	}

	return m, nil
}

// Run starts all components of the service and manages their lifecycle.
func (m *Tripso) Run(ctx context.Context) error {
	wg, ctx := errgroup.WithContext(ctx)

	wg.Go(func() error {
		return m.queue.Run(ctx)
	})

	wg.Go(func() error {
		return m.server.Run(ctx)
	})

	if m.watcher != nil {
		wg.Go(func() error {
			return m.watcher.Run(ctx)
		})
	}

	m.server.SetServing(true)

	// Handle graceful shutdown when the context is cancelled.
	wg.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		m.server.SetServing(false)
		m.queue.Stop()
		m.server.Stop()
		m.notifier.Close()

		if err := m.metrics.Shutdown(shutdownCtx); err != nil {
			m.logger.Error("failed to shutdown metrics", log.Error(err))
		}

		return ctx.Err()
	})

	return wg.Wait()
}

// reload applies the translator section of the configuration at path.
// Other sections require a restart.
func (m *Tripso) reload(_ context.Context, path string) error {
	config, err := LoadConfig(path)
	if err != nil {
		return err
	}

	return m.translator.Update(config.Translator)
}
