package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sprite-ai/revise/internal/aggregate"
	"github.com/sprite-ai/revise/internal/config"
	"github.com/sprite-ai/revise/internal/stale"
)

var statusCmd = &cobra.Command{
	Use:   "status [comparison]",
	Short: "Print review progress (non-interactive)",
	Long: `Print per-file review progress for a comparison. Without an argument
the most recently opened review is used.

Exit codes:
  0 — every hunk reviewed
  1 — pending hunks remain`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().Bool("files", false, "list per-file counts")
	statusCmd.Flags().Bool("tree", false, "print the directory tree with counts")
}

func runStatus(cmd *cobra.Command, args []string) error {
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

	st := session.State()
	hunks := session.Hunks()
	c := aggregate.SessionCounter(session)
	totals := c.Sum(hunks)

	fmt.Printf("Review %s\n", cmp.Key())
	fmt.Printf("  %d/%d reviewed (%d approved, %d trusted, %d rejected, %d deferred, %d pending)\n",
		totals.Reviewed(), totals.Total,
		totals.Approved, totals.Trusted, totals.Rejected, totals.SavedForLater, totals.Pending)

	art := stale.Check(st, hunks)
	if art.ClassifyStale || art.GroupsStale || art.NarrativeStale {
		fmt.Println("  note: the diff changed since AI artifacts were generated")
	}

	if files, _ := cmd.Flags().GetBool("files"); files {
		fmt.Println()
		for _, entry := range aggregate.FlatList(hunks, c, aggregate.SortPendingDesc) {
			fmt.Printf("  %-50s %d/%d\n", entry.Path, entry.Status.Reviewed(), entry.Status.Total)
		}
	}

	if tree, _ := cmd.Flags().GetBool("tree"); tree {
		fmt.Println()
		printTree(aggregate.BuildTree(hunks, c), "  ")
	}

	if totals.Pending > 0 {
		os.Exit(1)
	}
	return nil
}

func printTree(nodes []aggregate.Node, indent string) {
	for _, n := range nodes {
		fmt.Printf("%s%-40s %d/%d\n", indent, n.Name, n.Status.Reviewed(), n.Status.Total)
		printTree(n.Children, indent+"  ")
	}
}
