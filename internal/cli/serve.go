package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sprite-ai/revise/internal/ai"
	"github.com/sprite-ai/revise/internal/api"
	"github.com/sprite-ai/revise/internal/config"
)

var serveCmd = &cobra.Command{
	Use:   "serve [comparison]",
	Short: "Start the HTTP API server",
	Long: `Serve the review over a local HTTP API, for browser frontends and
editor integrations. The server owns one review session; every surface
connected to it sees the same state.

Endpoints:
  GET  /api/state     — Full review state
  GET  /api/tree      — Directory tree with counts
  GET  /api/files     — Flat file list with counts
  GET  /api/symbols   — Per-symbol grouping
  POST /api/hunks/... — Hunk decisions
  POST /api/classify  — Run classification
  POST /api/groups    — Generate review groups
  GET  /api/ws        — WebSocket progress stream`,
	Args: cobra.MaximumNArgs(1),
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringP("addr", "a", "", "listen address (default from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	addr := cfg.ListenAddr
	if cmd.Flags().Changed("addr") {
		addr, _ = cmd.Flags().GetString("addr")
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

	session, store, ds, err := openSession(cmp, cfg.ContextLines, cfg)
	if err != nil {
		return err
	}
	if ds == nil {
		return fmt.Errorf("no changes to review for %s", cmp.Key())
	}
	if err := store.SetCurrent(cmp); err != nil {
		fmt.Printf("Warning: could not record current review: %v\n", err)
	}

	var svc api.Services
	if apiKey := cfg.ResolveAPIKey(); apiKey != "" {
		s := ai.NewService(apiKey, cfg.Model)
		svc = api.Services{Classifier: s, Grouper: s, Narrator: s}
	}

	srv := api.New(addr, session, svc)
	return srv.ListenAndServe()
}
