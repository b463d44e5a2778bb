package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sprite-ai/revise/internal/config"
	"github.com/sprite-ai/revise/internal/diff"
	"github.com/sprite-ai/revise/internal/model"
	"github.com/sprite-ai/revise/internal/review"
	"github.com/sprite-ai/revise/internal/storage"
	"github.com/sprite-ai/revise/internal/tui"
)

var reviewCmd = &cobra.Command{
	Use:   "review [comparison]",
	Short: "Open an interactive review session",
	Long: `Open an interactive TUI for reviewing changes. By default, reviews
the working tree against HEAD. Optionally specify a comparison.

Examples:
  revise review                    # working tree vs HEAD
  revise review main               # working tree vs main
  revise review main..HEAD         # committed range
  git diff | revise review -       # pipe any diff (not persisted)`,
	Args: cobra.MaximumNArgs(1),
	RunE: runReview,
}

func init() {
	reviewCmd.Flags().IntP("context", "C", 0, "lines of context around changes (default from config)")
	reviewCmd.Flags().Bool("stat", false, "print diff stats and exit (non-interactive)")
}

func runReview(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	contextLines := cfg.ContextLines
	if cmd.Flags().Changed("context") {
		contextLines, _ = cmd.Flags().GetInt("context")
	}

	// Piped diff: review without persistence.
	if len(args) == 1 && args[0] == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("reading stdin: %w", err)
		}
		ds, err := diff.Parse(string(data))
		if err != nil {
			return err
		}
		if len(ds.Files) == 0 {
			fmt.Println("No changes to review.")
			return nil
		}
		if stat, _ := cmd.Flags().GetBool("stat"); stat {
			return printStat(ds)
		}
		cmp := model.Comparison{Base: "stdin", Head: "stdin"}
		session := review.NewSession(review.NewState(cmp), ds.Hunks(), nil)
		return tui.Run(session)
	}

	var arg string
	if len(args) == 1 {
		arg = args[0]
	}
	cmp := parseComparison(arg)

	session, store, ds, err := openSession(cmp, contextLines, cfg)
	if err != nil {
		return err
	}
	if ds == nil {
		fmt.Println("No changes to review.")
		return nil
	}

	if stat, _ := cmd.Flags().GetBool("stat"); stat {
		return printStat(ds)
	}

	if err := store.SetCurrent(cmp); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not record current review: %v\n", err)
	}

	return tui.Run(session)
}

// parseComparison maps a command-line argument onto a comparison,
// following git diff conventions: no argument or a single ref diffs the
// working tree, a two-dot range diffs committed history.
func parseComparison(arg string) model.Comparison {
	if arg == "" {
		return model.Comparison{Base: "HEAD", Head: "HEAD", WorkingTree: true}
	}
	if base, head, ok := strings.Cut(arg, ".."); ok {
		// Tolerate three-dot ranges.
		head = strings.TrimPrefix(head, ".")
		return model.Comparison{Base: base, Head: head}
	}
	return model.Comparison{Base: arg, Head: "HEAD", WorkingTree: true}
}

// openSession loads (or starts) the review for a comparison: compute
// the diff, load persisted state, and bind both into a session backed
// by the store. Returns a nil diff set when there is nothing to review.
func openSession(cmp model.Comparison, contextLines int, cfg config.Config) (*review.Session, *storage.Store, *diff.DiffSet, error) {
	store, repoDir, err := openStore()
	if err != nil {
		return nil, nil, nil, err
	}

	raw, err := diff.GitDiffComparison(repoDir, cmp, contextLines)
	if err != nil {
		return nil, nil, nil, err
	}
	ds, err := diff.Parse(raw)
	if err != nil {
		return nil, nil, nil, err
	}

	if len(ds.Files) == 0 {
		return nil, store, nil, nil
	}

	state, err := store.Load(cmp)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("loading review state: %w", err)
	}

	session := review.NewSession(state, ds.Hunks(), store)
	if cfg.AutoApproveStaged && cmp.WorkingTree {
		staged, err := diff.StagedFiles(repoDir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not list staged files: %v\n", err)
		} else {
			session.SetStagedFiles(staged, true)
		}
	}
	return session, store, ds, nil
}

// openStore locates the enclosing repository and its review store.
func openStore() (*storage.Store, string, error) {
	repoDir, err := diff.GitRepoRoot()
	if err != nil {
		return nil, "", fmt.Errorf("not in a git repository (or git not installed): %w", err)
	}
	commonDir, err := diff.GitCommonDir(repoDir)
	if err != nil {
		return nil, "", fmt.Errorf("resolving git directory: %w", err)
	}
	return storage.New(commonDir), repoDir, nil
}

// resolveComparison picks the comparison for read-side commands: an
// explicit argument wins, then the recorded current review, then the
// working tree against HEAD.
func resolveComparison(store *storage.Store, arg string) model.Comparison {
	if arg != "" {
		return parseComparison(arg)
	}
	if store != nil {
		if cmp, ok, err := store.Current(); err == nil && ok {
			return cmp
		}
	}
	return parseComparison("")
}

func printStat(ds *diff.DiffSet) error {
	files, added, deleted := ds.Stats()
	fmt.Printf("%d file(s) changed, %d insertions(+), %d deletions(-)\n\n", files, added, deleted)
	for _, f := range ds.Files {
		status := "M"
		if f.IsNew {
			status = "A"
		} else if f.IsDeleted {
			status = "D"
		} else if f.IsRenamed {
			status = "R"
		}
		fmt.Printf("  %s %-50s %d hunk(s)\n", status, f.Name(), len(f.Hunks))
	}
	return nil
}
