package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/civicmesh/claimforge/internal/worker"
)

var (
	batchConcurrency int
	batchLocale      string
	batchStorePath   string
	batchTimeout     time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Run the claim pipeline over a file of submissions",
	Long: `Batch reads submissions from a file (one per line, #-comments and blank
lines skipped) and runs the pipeline over them concurrently.

Example:
  claimforge batch submissions.txt --concurrency 4 --store claims.db`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 3, "submissions processed in parallel")
	batchCmd.Flags().StringVar(&batchLocale, "locale", "de-DE", "submission locale")
	batchCmd.Flags().StringVar(&batchStorePath, "store", "", "persist accepted claims to this SQLite file")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 30*time.Minute, "overall batch timeout")
}

// batchEntry is one line of the JSON output.
type batchEntry struct {
	Submission string          `json:"submission"`
	Error      string          `json:"error,omitempty"`
	Result     json.RawMessage `json:"result,omitempty"`
}

func runBatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if batchStorePath != "" {
		cfg.Store.Path = batchStorePath
	}

	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	p, cleanup, err := buildPipeline(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	pool := worker.NewPool(p, batchConcurrency)
	results, err := pool.ProcessFile(ctx, args[0], batchLocale)
	if err != nil {
		return err
	}

	var failed int
	entries := make([]batchEntry, 0, len(results))
	for _, r := range results {
		entry := batchEntry{Submission: r.Submission.Text}
		if r.Err != nil {
			failed++
			entry.Error = r.Err.Error()
		} else {
			payload, err := json.Marshal(r.Run)
			if err != nil {
				return fmt.Errorf("encode result: %w", err)
			}
			entry.Result = payload
		}
		entries = append(entries, entry)
	}

	out := json.NewEncoder(os.Stdout)
	out.SetIndent("", "  ")
	if err := out.Encode(entries); err != nil {
		return err
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Processed %d submissions, %d failed\n", len(results), failed)
	}
	if failed == len(results) && failed > 0 {
		return fmt.Errorf("every submission failed")
	}
	return nil
}
