package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path"
	"syscall"

	"github.com/spf13/cobra"
	log "go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/yanet-platform/tripso/internal/app"
	"github.com/yanet-platform/tripso/internal/monitoring/logger"
)

func main() {
	cmd := &cobra.Command{
		Use:           path.Base(os.Args[0]),
		Short:         "Translates IPv4 security labels between Astra and CIPSO",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(runCmd(), translateCmd())

	// Execute the command. If an error occurs, print it and exit with a
	// non-zero status code.
	if err := cmd.Execute(); err != nil {
		fmt.Printf("ERROR: %s\n", err.Error())
		os.Exit(1)
	}
}

func runCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Translate packets of a netfilter queue",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(configPath)
		},
	}

	// Add a flag to specify the path to the config file.
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to the config file (required).")
	if err := cmd.MarkFlagRequired("config"); err != nil {
		panic("Logic error: `config` flag not exists in the program")
	}

	return cmd
}

func run(configPath string) error {
	// Create a base context.
	ctx := context.Background()

	// Load the application configuration from the specified config path.
	config, err := app.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := logger.New(ctx, config.Logger)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info(
		"starting tripso",
		log.Stringer("mode", config.Translator.Mode),
		log.Uint32("doi", config.Translator.DOI),
		log.Uint16("nfqueue", config.Queue.NfQueue),
		log.String("http_addr", config.Server.HTTPAddr),
	)

	// Create an error group with a derived context for managing goroutines.
	wg, ctx := errgroup.WithContext(ctx)

	// Add a goroutine to the error group that waits for an interruption signal.
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	wg.Go(func() error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case s := <-ch:
			return errors.New(s.String())
		}
	})

	service, err := app.New(config, configPath, logger)
	if err != nil {
		return fmt.Errorf("failed to init tripso: %w", err)
	}

	wg.Go(func() error {
		return service.Run(ctx)
	})

	// Wait for all goroutines in the error group to complete.
	return wg.Wait()
}
