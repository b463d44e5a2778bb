package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sprite-ai/revise/internal/config"
	"github.com/sprite-ai/revise/internal/tui"
)

var summaryCmd = &cobra.Command{
	Use:   "summary [comparison]",
	Short: "Print a review report",
	Long: `Print a plain-text report of the review: totals, per-file counts,
rejected hunks with their notes, and the review-wide notes. Use
--output-patch to write the approved hunks as a unified diff.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSummary,
}

func init() {
	summaryCmd.Flags().StringP("output-patch", "o", "", "write approved changes as a patch to file")
}

func runSummary(cmd *cobra.Command, args []string) error {
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
		fmt.Println("No changes to review.")
		return nil
	}

	r := &tui.Report{State: session.State(), Hunks: session.Hunks()}
	fmt.Print(r.Summary())

	patchPath, _ := cmd.Flags().GetString("output-patch")
	if patchPath != "" {
		patch := r.GeneratePatch()
		if patch == "" {
			fmt.Fprintln(os.Stderr, "No approved hunks, no patch written.")
			return nil
		}
		if err := os.WriteFile(patchPath, []byte(patch), 0o644); err != nil {
			return fmt.Errorf("writing patch: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Patch written to %s\n", patchPath)
	}
	return nil
}
