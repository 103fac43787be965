package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/rahul/voyage/internal/agent"
	"github.com/rahul/voyage/internal/gateway"
	"github.com/rahul/voyage/internal/governance"
	"github.com/rahul/voyage/internal/observability"
	"github.com/rahul/voyage/internal/tools"
	"github.com/rahul/voyage/internal/trip"
	"github.com/rahul/voyage/pkg/config"
)

// errRejected is returned after the rejection message has been shown.
var errRejected = errors.New("request rejected")

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "voyage",
		Short:         "Multi-agent travel concierge",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "voyage.yaml", "path to the YAML config file")

	root.AddCommand(newPlanCmd(&configPath), newTelegramCmd(&configPath))
	return root
}

func newPlanCmd(configPath *string) *cobra.Command {
	var origin, destination string

	cmd := &cobra.Command{
		Use:   "plan [trip details...]",
		Short: "Plan a trip from a free-text description",
		Example: `  voyage plan --origin Nagpur --destination Mumbai "Budget 5000 Rs, Flight 2000 Rs, 3 Days"
  voyage plan "2 days in Goa"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(*configPath)
			if err != nil {
				return err
			}
			log.SetOutput(observability.NewTermWriter())

			pipeline, err := buildPipeline(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			term := gateway.NewTerminal(os.Stdout)
			if term.Interactive {
				observability.PrintBanner(os.Stderr)
			}

			req := trip.Request{
				Origin:      origin,
				Destination: destination,
				FreeText:    strings.Join(args, " "),
			}
			final := term.Render(pipeline.Run(cmd.Context(), req))

			log.Printf("[ DONE ] request=%s stage=%s", final.RequestID, final.Stage)
			if final.Stage == agent.StageRejected {
				return errRejected
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&origin, "origin", "o", "", "origin city (defaults to the configured home city)")
	cmd.Flags().StringVarP(&destination, "destination", "d", "", "destination city (detected from the details when empty)")
	return cmd
}

func newTelegramCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "telegram",
		Short: "Serve travel plans over a Telegram bot",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(*configPath)
			if err != nil {
				return err
			}
			log.SetOutput(observability.NewTermWriter())
			observability.PrintBanner(os.Stderr)

			tgCfg, ok := cfg.GetTelegramConfig()
			if !ok {
				return errors.New("telegram gateway is not enabled or token is missing")
			}

			ctx := cmd.Context()
			pipeline, err := buildPipeline(ctx, cfg)
			if err != nil {
				return err
			}

			tg, err := gateway.NewTelegramGateway(tgCfg.Token, pipeline)
			if err != nil {
				return err
			}

			go func() {
				ticker := time.NewTicker(30 * time.Second)
				defer ticker.Stop()
				for {
					select {
					case <-ctx.Done():
						return
					case <-ticker.C:
						observability.Heartbeat()
					}
				}
			}()

			errc := make(chan error, 1)
			go func() {
				errc <- tg.Start()
			}()

			select {
			case <-ctx.Done():
				_ = tg.Stop()
				log.Println("\033[95m[ EXIT ] GATEWAY STOPPED. GOODBYE.\033[0m")
				return nil
			case err := <-errc:
				if err != nil {
					return fmt.Errorf("gateway critical error: %w", err)
				}
				return nil
			}
		},
	}
}

func buildPipeline(ctx context.Context, cfg *config.Config) (*agent.Pipeline, error) {
	generator, err := newGenerator(ctx, cfg)
	if err != nil {
		return nil, err
	}

	gov := governance.NewDefaultPolicyEngine()
	for _, pattern := range cfg.Policy.DenyPatterns {
		if err := gov.DenyText(pattern); err != nil {
			return nil, fmt.Errorf("invalid deny pattern %q: %w", pattern, err)
		}
	}

	pipeline := agent.NewPipeline(
		generator,
		tools.NewDefaultRegistry(),
		agent.NewPromptManager(cfg.App.PromptsDir),
		gov,
		observability.NewLogger(cfg.App.LogDir),
	)
	pipeline.Resolver = trip.Resolver{HomeCity: cfg.App.HomeCity}
	pipeline.Timeout = cfg.Synthesis.Timeout
	if cfg.App.Name != "" {
		pipeline.AppName = cfg.App.Name
	}
	return pipeline, nil
}

// newGenerator returns nil when no provider has a credential; the pipeline
// then rejects every request with the missing-key message.
func newGenerator(ctx context.Context, cfg *config.Config) (agent.Generator, error) {
	pName, pCfg := cfg.GetDefaultProvider()

	var (
		llm llms.Model
		err error
	)
	switch pName {
	case "":
		log.Println("Warning: No API key found. Please set GEMINI_API_KEY in environment variables.")
		return nil, nil
	case config.ProviderGoogleAI:
		opts := []googleai.Option{googleai.WithAPIKey(pCfg.APIKey)}
		if pCfg.Model != "" {
			opts = append(opts, googleai.WithDefaultModel(pCfg.Model))
		}
		llm, err = googleai.New(ctx, opts...)
	case config.ProviderOpenAI, config.ProviderOpenRouter:
		opts := []openai.Option{openai.WithToken(pCfg.APIKey)}
		if pCfg.Model != "" {
			opts = append(opts, openai.WithModel(pCfg.Model))
		}
		if pCfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(pCfg.BaseURL))
		}
		llm, err = openai.New(opts...)
	default:
		return nil, fmt.Errorf("provider %s not yet implemented", pName)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s provider: %w", pName, err)
	}

	return agent.NewModelGenerator(llm), nil
}
