package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sprite-ai/revise/internal/config"
	"github.com/sprite-ai/revise/internal/review"
	"github.com/sprite-ai/revise/internal/trust"
)

var trustCmd = &cobra.Command{
	Use:   "trust",
	Short: "Manage the trust list",
	Long: `List, add, or remove trust patterns for the current review. Trusted
labels count matching hunks as reviewed without touching their explicit
status; removing a pattern immediately un-reviews the hunks it covered.

Patterns:
  imports:added    exact pattern id
  imports          whole category
  format:*         glob over pattern ids`,
	RunE: runTrustList,
}

var trustAddCmd = &cobra.Command{
	Use:   "add <pattern>",
	Short: "Add a trust pattern",
	Args:  cobra.ExactArgs(1),
	RunE:  runTrustAdd,
}

var trustRemoveCmd = &cobra.Command{
	Use:   "remove <pattern>",
	Short: "Remove a trust pattern",
	Args:  cobra.ExactArgs(1),
	RunE:  runTrustRemove,
}

var trustTaxonomyCmd = &cobra.Command{
	Use:   "taxonomy",
	Short: "List the trustable change categories",
	RunE:  runTrustTaxonomy,
}

func init() {
	trustCmd.AddCommand(trustAddCmd)
	trustCmd.AddCommand(trustRemoveCmd)
	trustCmd.AddCommand(trustTaxonomyCmd)
}

func runTrustList(cmd *cobra.Command, args []string) error {
	session, err := currentSession()
	if err != nil {
		return err
	}
	list := session.State().TrustList
	if len(list) == 0 {
		fmt.Println("Trust list is empty.")
		return nil
	}
	for _, p := range list {
		fmt.Println(p)
	}
	return nil
}

func runTrustAdd(cmd *cobra.Command, args []string) error {
	pattern := args[0]
	if !trust.KnownPattern(pattern) && !strings.ContainsAny(pattern, "*?[{") {
		fmt.Printf("Warning: %q is not in the taxonomy; it will only match future labels of that exact name.\n", pattern)
	}

	session, err := currentSession()
	if err != nil {
		return err
	}
	session.AddTrustPattern(pattern)
	fmt.Printf("Trusting %s\n", pattern)
	return nil
}

func runTrustRemove(cmd *cobra.Command, args []string) error {
	session, err := currentSession()
	if err != nil {
		return err
	}
	session.RemoveTrustPattern(args[0])
	fmt.Printf("Removed %s\n", args[0])
	return nil
}

func runTrustTaxonomy(cmd *cobra.Command, args []string) error {
	for _, cat := range trust.Taxonomy() {
		fmt.Printf("%s  (%s)\n", cat.ID, cat.Description)
		for _, p := range cat.Patterns {
			fmt.Printf("  %-24s %s\n", p.ID, p.Description)
		}
	}
	return nil
}

// currentSession opens the session for the recorded current review.
func currentSession() (*review.Session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	store, _, err := openStore()
	if err != nil {
		return nil, err
	}
	cmp := resolveComparison(store, "")
	session, _, ds, err := openSession(cmp, cfg.ContextLines, cfg)
	if err != nil {
		return nil, err
	}
	if ds == nil {
		return nil, fmt.Errorf("no changes to review for %s", cmp.Key())
	}
	return session, nil
}
