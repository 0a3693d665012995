package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/civicmesh/claimforge/internal/llm"
)

var healthTimeout time.Duration

// healthCmd represents the health command
var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the configured LLM providers",
	Long: `Health probes every enabled provider from the allow-list and reports
whether it is reachable. Routing health scores build up during runs; this
command only checks connectivity.`,
	RunE: runHealth,
}

func init() {
	rootCmd.AddCommand(healthCmd)
	healthCmd.Flags().DurationVar(&healthTimeout, "timeout", 10*time.Second, "per-provider probe timeout")
}

func runHealth(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	providers, errs := llm.BuildAll(cfg.Providers)
	for _, err := range errs {
		fmt.Printf("✗ %v\n", err)
	}
	if len(providers) == 0 {
		return fmt.Errorf("no usable provider configured")
	}

	for _, p := range cfg.Providers {
		provider, ok := providers[p.Name]
		if !ok {
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), healthTimeout)
		reachable := provider.Available(ctx)
		cancel()

		mark := "✓"
		status := "reachable"
		if !reachable {
			mark = "✗"
			status = "unreachable"
		}
		fmt.Printf("%s %-12s %-12s fast=%s strong=%s\n", mark, p.Name, status, p.FastModel, p.StrongModel)
	}
	return nil
}
