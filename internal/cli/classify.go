package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/sprite-ai/revise/internal/ai"
	"github.com/sprite-ai/revise/internal/classify"
	"github.com/sprite-ai/revise/internal/config"
	"github.com/sprite-ai/revise/internal/stale"
)

var classifyCmd = &cobra.Command{
	Use:   "classify [comparison]",
	Short: "Classify hunks against the trust taxonomy",
	Long: `Label hunks with trustable change patterns. Mechanical changes are
labeled by built-in static rules; the rest go to the configured model.
Without an API key only the static rules run.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runClassify,
}

func init() {
	classifyCmd.Flags().Bool("all", false, "re-classify already labeled hunks too")
	classifyCmd.Flags().Duration("timeout", 2*time.Minute, "model request timeout")
}

func runClassify(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	store, _, err := openStore()
	if err != nil {
		return err
	}
	var arg string
	if len(args) == 1 {
		arg = args[0]
	}
	cmp := resolveComparison(store, arg)

	session, _, ds, err := openSession(cmp, cfg.ContextLines, cfg)
	if err != nil {
		return err
	}
	if ds == nil {
		fmt.Println("No changes to classify.")
		return nil
	}

	hunks := session.Hunks()
	gen := session.Generation()

	targets := classify.Unclassified(hunks, session.State())
	if all, _ := cmd.Flags().GetBool("all"); all {
		targets = hunks
	}
	if len(targets) == 0 {
		fmt.Println("Every hunk is already classified.")
		return nil
	}

	results := classify.Static(targets)
	remaining := targets[:0:0]
	for _, h := range targets {
		if _, ok := results[h.ID]; !ok {
			remaining = append(remaining, h)
		}
	}
	fmt.Printf("Static rules labeled %d of %d hunk(s)\n", len(results), len(targets))

	if len(remaining) > 0 {
		apiKey := cfg.ResolveAPIKey()
		if apiKey == "" {
			fmt.Fprintf(os.Stderr, "%d hunk(s) left unlabeled; set an API key to classify them\n", len(remaining))
		} else {
			timeout, _ := cmd.Flags().GetDuration("timeout")
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			svc := ai.NewService(apiKey, cfg.Model)
			aiResults, err := svc.Classify(ctx, remaining)
			if err != nil {
				return fmt.Errorf("classifying: %w", err)
			}
			for id, c := range aiResults {
				results[id] = c
			}
			fmt.Printf("Model labeled %d more hunk(s)\n", len(aiResults))
		}
	}

	if !session.MergeClassification(gen, results, stale.Fingerprint(hunks)) {
		return fmt.Errorf("comparison changed while classifying")
	}
	return nil
}
