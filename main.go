package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/maastricht-university/clinote/affect"
	"github.com/maastricht-university/clinote/cache"
	"github.com/maastricht-university/clinote/clients"
	"github.com/maastricht-university/clinote/config"
	"github.com/maastricht-university/clinote/entities"
	"github.com/maastricht-university/clinote/events"
	"github.com/maastricht-university/clinote/logger"
	"github.com/maastricht-university/clinote/narrative"
	"github.com/maastricht-university/clinote/orchestrator"
	"github.com/maastricht-university/clinote/server"
	"github.com/maastricht-university/clinote/soap"
	"github.com/maastricht-university/clinote/transcript"
)

// Exit codes.
const (
	exitError      = 1
	exitFormat     = 2
	exitIncomplete = 3
)

var configPath string

func main() {
	rootCmd := &cobra.Command{
		Use:           "clinote",
		Short:         "Turn doctor-patient transcripts into structured clinical reports",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default config/<CONFIG_ENV>/config.yaml)")

	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(serveCmd())

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		logger.Log.WithError(err).Error("clinote failed")
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	var fe *transcript.FormatError
	var ie *orchestrator.IncompletePipelineError
	switch {
	case errors.As(err, &fe):
		return exitFormat
	case errors.As(err, &ie):
		return exitIncomplete
	}
	return exitError
}

func runCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "run <transcript>",
		Short: "Process one transcript file and write the report documents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if out == "" {
				out = cfg.Paths.Outputs
			}
			p, closeFn, err := build(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer closeFn()

			if _, err := p.Run(cmd.Context(), args[0], out); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "report written to %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "output directory (default paths.outputs)")
	return cmd
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the report API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			p, closeFn, err := build(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeFn()
			if err := p.Check(); err != nil {
				return err
			}
			return server.New(p, cfg.Server, cfg.Paths.Outputs).Start(ctx)
		},
	}
}

// build constructs every collaborator once and injects it into the pipeline.
// Unconfigured collaborators stay nil and their stage uses its fallback.
func build(ctx context.Context, cfg *config.Root) (*orchestrator.Pipeline, func(), error) {
	logger.Init(cfg.Pipeline.LogLvl, cfg.Pipeline.LogFormat)
	log := logger.WithFields(map[string]interface{}{"name": cfg.Pipeline.Name, "version": cfg.Pipeline.Version})

	var closers []func() error
	closeAll := func() {
		for _, c := range closers {
			if err := c(); err != nil {
				log.WithError(err).Warn("close failed")
			}
		}
	}

	var store cache.Store
	if cfg.Cache.RedisAddr != "" {
		r, err := cache.NewRedis(ctx, cfg.Cache.RedisAddr, cfg.Cache.Password, cfg.Cache.DB)
		if err != nil {
			log.WithError(err).Warn("response cache disabled")
		} else {
			store = r
			closers = append(closers, r.Close)
		}
	}
	h := clients.NewHTTP(
		clients.WithRetry(cfg.HTTP.Retries, cfg.HTTP.Backoff),
		clients.WithCache(store, cfg.Cache.TTL),
	)
	svc := cfg.Services

	lexicon, err := entities.LoadLexicon(cfg.Rules.Lexicon)
	if err != nil {
		return nil, closeAll, fmt.Errorf("lexicon: %w", err)
	}
	var tagger entities.Tagger
	if svc.Tagger.Enabled() {
		tagger = clients.NewTagger(h, svc.Tagger.URL)
	}
	resolverOpts := []entities.Option{entities.WithTimeout(svc.Tagger.Timeout)}
	if svc.Keyphrases.Enabled() {
		resolverOpts = append(resolverOpts, entities.WithPhraseExtractor(clients.NewKeyphrases(h, svc.Keyphrases.URL)))
	}
	resolver := entities.NewResolver(tagger, lexicon, resolverOpts...)

	var summarizer narrative.Summarizer
	if svc.Summarizer.Enabled() {
		summarizer = clients.NewSummarizer(h, svc.Summarizer.URL)
	}
	narrator := narrative.New(summarizer, cfg.Narrative.MaxLength, cfg.Narrative.TopK, svc.Summarizer.Timeout)

	sentimentCfg, err := affect.LoadSentiment(cfg.Rules.Sentiment)
	if err != nil {
		return nil, closeAll, fmt.Errorf("sentiment rules: %w", err)
	}
	intentCfg, err := affect.LoadIntents(cfg.Rules.Intent)
	if err != nil {
		return nil, closeAll, fmt.Errorf("intent rules: %w", err)
	}
	var model affect.SentimentClassifier
	if svc.Sentiment.Enabled() {
		model = clients.NewSentiment(h, svc.Sentiment.URL)
	}
	classifier, err := affect.New(model, sentimentCfg, intentCfg, svc.Sentiment.Timeout)
	if err != nil {
		return nil, closeAll, err
	}

	soapCfg, err := soap.LoadRules(cfg.Rules.SOAP)
	if err != nil {
		return nil, closeAll, fmt.Errorf("soap rules: %w", err)
	}
	assembler, err := soap.NewAssembler(soapCfg)
	if err != nil {
		return nil, closeAll, err
	}

	var pub events.Publisher = events.Nop{}
	if len(cfg.Events.Brokers) > 0 {
		k := events.NewKafka(cfg.Events.Brokers, cfg.Events.Topic)
		pub = k
		closers = append(closers, k.Close)
	}

	log.WithFields(map[string]interface{}{
		"tagger":     svc.Tagger.Enabled(),
		"summarizer": svc.Summarizer.Enabled(),
		"sentiment":  svc.Sentiment.Enabled(),
		"keyphrases": svc.Keyphrases.Enabled(),
		"cache":      store != nil,
		"events":     len(cfg.Events.Brokers) > 0,
	}).Info("pipeline configured")

	return orchestrator.NewPipeline(resolver, narrator, classifier, assembler,
		orchestrator.WithPublisher(pub),
		orchestrator.WithSegmenter(transcript.NewSegmenter(cfg.Transcript.Roles...)),
	), closeAll, nil
}
