package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/civicmesh/claimforge/internal/cache"
	"github.com/civicmesh/claimforge/internal/health"
	"github.com/civicmesh/claimforge/internal/llm"
	"github.com/civicmesh/claimforge/internal/model"
	"github.com/civicmesh/claimforge/internal/pipeline"
	"github.com/civicmesh/claimforge/internal/router"
	"github.com/civicmesh/claimforge/internal/stage"
	"github.com/civicmesh/claimforge/internal/store"
)

var (
	inputFile  string
	locale     string
	maxClaims  int
	storePath  string
	runTimeout time.Duration
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run [text]",
	Short: "Run the claim pipeline on one submission",
	Long: `Run atomizes a civic submission into checkable claims and enriches each
with evidence hypotheses, perspectives, and a quality rating.

The submission text comes from the argument, --file, or stdin.

Example:
  claimforge run "Der Bezirk sollte Tempo 30 vor allen Schulen einführen."
  claimforge run --file submission.txt --locale de-DE
  cat submission.txt | claimforge run`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPipeline,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&inputFile, "file", "", "read the submission from a file")
	runCmd.Flags().StringVar(&locale, "locale", "de-DE", "submission locale")
	runCmd.Flags().IntVar(&maxClaims, "max-claims", 0, "max claims to extract (0 uses the configured default)")
	runCmd.Flags().StringVar(&storePath, "store", "", "persist accepted claims to this SQLite file")
	runCmd.Flags().DurationVar(&runTimeout, "timeout", 5*time.Minute, "overall run timeout")
}

func runPipeline(cmd *cobra.Command, args []string) error {
	text, err := readSubmission(args)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if maxClaims > 0 {
		cfg.Pipeline.MaxClaims = maxClaims
	}
	if storePath != "" {
		cfg.Store.Path = storePath
	}

	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	p, cleanup, err := buildPipeline(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	if verbose {
		p.Events = func(e model.Event) {
			fmt.Fprintf(os.Stderr, "%s %s %s %s\n", e.At.Format(time.RFC3339), e.Type, e.Stage, e.CanonicalID)
		}
	}

	result, err := p.Run(ctx, model.RawSubmission{Text: text, Locale: locale})
	if err != nil {
		return fmt.Errorf("run failed: %w", err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Extracted %d claims, %d clusters\n", result.Stats.ExtractedClaims, result.Stats.Clusters)
		fmt.Fprintf(os.Stderr, "✓ Accepted %d, needs-info %d\n", result.Stats.Accepted, result.Stats.NeedsInfo)
	}

	out := json.NewEncoder(os.Stdout)
	out.SetIndent("", "  ")
	return out.Encode(result)
}

// buildPipeline assembles providers, health tracking, routing, and optional
// cache and store into one pipeline. The returned cleanup closes the store.
func buildPipeline(cfg *model.Config) (*pipeline.Pipeline, func(), error) {
	logger := newLogger()

	providers, errs := llm.BuildAll(cfg.Providers)
	for _, err := range errs {
		logger.Warn("provider skipped", "error", err.Error())
	}
	if len(providers) == 0 {
		return nil, nil, fmt.Errorf("no usable provider configured (set OPENAI_API_KEY or enable another provider)")
	}

	registry := health.NewRegistry()
	runner := &stage.Runner{
		Router:    router.New(cfg.Providers, registry),
		Providers: providers,
		Health:    registry,
		Timeout:   cfg.Pipeline.StageTimeout,
		Retries:   cfg.Pipeline.RetryBudget,
		Logger:    logger,
	}
	if cfg.Cache.Enabled {
		runner.Cache = cache.NewMemory(cfg.Cache.TTL)
		runner.CacheTTL = cfg.Cache.TTL
	}

	p := pipeline.New(runner, cfg.Pipeline)
	p.Logger = logger

	cleanup := func() {}
	if cfg.Store.Path != "" {
		s, err := store.Open(cfg.Store.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("open claim store: %w", err)
		}
		p.Store = s
		cleanup = func() { _ = s.Close() }
	}
	return p, cleanup, nil
}

func readSubmission(args []string) (string, error) {
	if len(args) == 1 && args[0] != "" {
		return args[0], nil
	}
	if inputFile != "" {
		data, err := os.ReadFile(inputFile)
		if err != nil {
			return "", fmt.Errorf("read submission file: %w", err)
		}
		return string(data), nil
	}

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", fmt.Errorf("no submission text: pass it as an argument, --file, or stdin")
	}
	return text, nil
}
