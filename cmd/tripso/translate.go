package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	log "go.uber.org/zap"

	"github.com/yanet-platform/tripso/internal/monitoring/logger"
	"github.com/yanet-platform/tripso/internal/monitoring/metrics"
	"github.com/yanet-platform/tripso/internal/offline"
	"github.com/yanet-platform/tripso/internal/translator"
	"github.com/yanet-platform/tripso/pkg/ipopt"
)

type translateOptions struct {
	toCipso bool
	toAstra bool
	in      string
	out     string
	doi     uint32
	debug   uint
}

func translateCmd() *cobra.Command {
	var opts translateOptions
	cmd := &cobra.Command{
		Use:   "translate",
		Short: "Translate the packets of a pcap file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return translatePcap(cmd.Context(), &opts)
		},
	}

	flags := cmd.Flags()
	flags.BoolVar(&opts.toCipso, "to-cipso", false, "Translate Astra labels into CIPSO.")
	flags.BoolVar(&opts.toAstra, "to-astra", false, "Translate CIPSO labels into Astra.")
	flags.StringVar(&opts.in, "in", "", "Input pcap file (required).")
	flags.StringVar(&opts.out, "out", "", "Output pcap file (required).")
	flags.Uint32Var(&opts.doi, "doi", 1, "CIPSO domain of interpretation.")
	flags.UintVar(&opts.debug, "debug", 0, "Trace level, 2 logs every translated label.")

	cmd.MarkFlagsMutuallyExclusive("to-cipso", "to-astra")
	cmd.MarkFlagsOneRequired("to-cipso", "to-astra")
	for _, name := range []string{"in", "out"} {
		if err := cmd.MarkFlagRequired(name); err != nil {
			panic(fmt.Sprintf("Logic error: `%s` flag not exists in the program", name))
		}
	}

	return cmd
}

func (m *translateOptions) config() *translator.Config {
	config := &translator.Config{}
	config.Default()
	config.DOI = m.doi
	config.Debug = m.debug
	switch {
	case m.toCipso:
		config.Mode = ipopt.ToCipso
	case m.toAstra:
		config.Mode = ipopt.ToAstra
	}
	return config
}

func translatePcap(ctx context.Context, opts *translateOptions) error {
	logConfig := &logger.Config{}
	logConfig.Default()
	logConfig.Encoding = "console"
	logger, err := logger.New(ctx, logConfig)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	processor, err := translator.New(opts.config(), translator.NopNotifier{}, &metrics.NopProvider{}, logger)
	if err != nil {
		return err
	}

	in, err := os.Open(opts.in)
	if err != nil {
		return fmt.Errorf("failed to open input: %w", err)
	}
	defer in.Close()

	out, err := os.Create(opts.out)
	if err != nil {
		return fmt.Errorf("failed to create output: %w", err)
	}

	stats, err := offline.Translate(in, out, processor, logger)
	if closeErr := out.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("failed to close output: %w", closeErr)
	}
	if err != nil {
		return err
	}

	logger.Info(
		"capture translated",
		log.String("in", opts.in),
		log.String("out", opts.out),
		log.Int("packets", stats.Packets),
		log.Int("modified", stats.Modified),
		log.Int("dropped", stats.Dropped),
	)

	return nil
}
