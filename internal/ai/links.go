package ai

import (
	"net/url"
	"regexp"
	"strings"
)

// NarrativeLink is one review:// cross reference embedded in narrative
// text. Only the scheme, path, and hunk parameter are interpreted; the
// surrounding prose is never validated.
type NarrativeLink struct {
	FilePath string
	HunkID   string
}

var linkPattern = regexp.MustCompile(`review://[^\s)\]>"']+`)

// ParseLinks extracts every review:// link from narrative text, in
// order of appearance. Malformed links are skipped.
func ParseLinks(text string) []NarrativeLink {
	var out []NarrativeLink
	for _, raw := range linkPattern.FindAllString(text, -1) {
		raw = strings.TrimRight(raw, ".,;")
		u, err := url.Parse(raw)
		if err != nil || u.Scheme != "review" {
			continue
		}
		path := strings.TrimPrefix(u.Host+u.Path, "/")
		if path == "" {
			continue
		}
		out = append(out, NarrativeLink{
			FilePath: path,
			HunkID:   u.Query().Get("hunk"),
		})
	}
	return out
}

// LinkedFiles returns the unique file paths referenced by narrative
// links, in order of first appearance.
func LinkedFiles(text string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, l := range ParseLinks(text) {
		if !seen[l.FilePath] {
			seen[l.FilePath] = true
			out = append(out, l.FilePath)
		}
	}
	return out
}
