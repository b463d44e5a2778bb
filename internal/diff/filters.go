package diff

import "strings"

// skipPatterns lists path fragments for files that are never worth
// reviewing hunk by hunk: build output, vendored dependencies, and
// other generated trees. Lockfiles stay in the diff — they are handled
// by classification instead, so they can be trusted rather than hidden.
var skipPatterns = []string{
	"node_modules/",
	"__pycache__/",
	".git/",
	"target/debug/",
	"target/release/",
	".next/",
	"dist/",
	"build/",
}

var skipSuffixes = []string{
	".pyc",
	".min.js",
	".min.css",
}

// ShouldSkip reports whether a path should be excluded from review.
func ShouldSkip(path string) bool {
	for _, p := range skipPatterns {
		if strings.HasPrefix(path, p) || strings.Contains(path, "/"+p) {
			return true
		}
	}
	for _, s := range skipSuffixes {
		if strings.HasSuffix(path, s) {
			return true
		}
	}
	return false
}
