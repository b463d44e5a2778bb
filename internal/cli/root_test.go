package cli

import (
	"testing"

	"github.com/sprite-ai/revise/internal/model"
)

func TestRootCommandHasSubcommands(t *testing.T) {
	cmds := rootCmd.Commands()
	names := make(map[string]bool)
	for _, c := range cmds {
		names[c.Name()] = true
	}

	for _, want := range []string{"review", "status", "summary", "trust", "classify", "serve", "version"} {
		if !names[want] {
			t.Errorf("root command missing subcommand %q", want)
		}
	}
}

func TestParseComparison(t *testing.T) {
	tests := []struct {
		arg  string
		want model.Comparison
	}{
		{"", model.Comparison{Base: "HEAD", Head: "HEAD", WorkingTree: true}},
		{"main", model.Comparison{Base: "main", Head: "HEAD", WorkingTree: true}},
		{"main..HEAD", model.Comparison{Base: "main", Head: "HEAD"}},
		{"main...HEAD", model.Comparison{Base: "main", Head: "HEAD"}},
		{"v1.2.0..v1.3.0", model.Comparison{Base: "v1.2.0", Head: "v1.3.0"}},
	}
	for _, tt := range tests {
		if got := parseComparison(tt.arg); got != tt.want {
			t.Errorf("parseComparison(%q) = %+v, want %+v", tt.arg, got, tt.want)
		}
	}
}

func TestVersionOutput(t *testing.T) {
	// version vars are set via ldflags; in tests they have their defaults
	if version != "dev" {
		t.Errorf("expected default version %q, got %q", "dev", version)
	}
}
