package trust

// Pattern is one entry in the trust taxonomy, identified by
// "category:subtype".
type Pattern struct {
	ID          string `json:"id"`
	Category    string `json:"category"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Category groups related patterns in the taxonomy.
type Category struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Patterns    []Pattern `json:"patterns"`
}

// Taxonomy returns the built-in set of trustable change patterns. The
// classifier emits labels from this set; users toggle entries (or whole
// categories) into their trust list.
func Taxonomy() []Category {
	return []Category{
		{
			ID: "imports", Name: "Imports", Description: "Changes to import statements",
			Patterns: []Pattern{
				{ID: "imports:added", Category: "imports", Name: "Added", Description: "New import statements added"},
				{ID: "imports:removed", Category: "imports", Name: "Removed", Description: "Import statements removed"},
				{ID: "imports:reordered", Category: "imports", Name: "Reordered", Description: "Import statements reordered"},
				{ID: "imports:modified", Category: "imports", Name: "Modified", Description: "Import statements changed"},
			},
		},
		{
			ID: "formatting", Name: "Formatting", Description: "Code style and formatting changes",
			Patterns: []Pattern{
				{ID: "formatting:whitespace", Category: "formatting", Name: "Whitespace", Description: "Whitespace-only changes (spaces, tabs, blank lines)"},
				{ID: "formatting:line-length", Category: "formatting", Name: "Line length", Description: "Line wrapping for length limits"},
				{ID: "formatting:style", Category: "formatting", Name: "Style", Description: "Code style changes (semicolons, quotes, etc.)"},
			},
		},
		{
			ID: "comments", Name: "Comments", Description: "Changes to code comments",
			Patterns: []Pattern{
				{ID: "comments:added", Category: "comments", Name: "Added", Description: "New comments added"},
				{ID: "comments:removed", Category: "comments", Name: "Removed", Description: "Comments removed"},
				{ID: "comments:modified", Category: "comments", Name: "Modified", Description: "Comments updated or corrected"},
			},
		},
		{
			ID: "types", Name: "Types", Description: "Type annotation changes",
			Patterns: []Pattern{
				{ID: "types:added", Category: "types", Name: "Added", Description: "Type annotations added"},
				{ID: "types:modified", Category: "types", Name: "Modified", Description: "Type annotations changed"},
				{ID: "types:removed", Category: "types", Name: "Removed", Description: "Type annotations removed"},
			},
		},
		{
			ID: "file", Name: "File", Description: "File-level operations",
			Patterns: []Pattern{
				{ID: "file:deleted", Category: "file", Name: "Deleted", Description: "Entire file deleted"},
				{ID: "file:renamed", Category: "file", Name: "Renamed", Description: "File renamed"},
				{ID: "file:moved", Category: "file", Name: "Moved", Description: "File moved to different directory"},
				{ID: "file:added-empty", Category: "file", Name: "Added empty", Description: "New empty file"},
			},
		},
		{
			ID: "generated", Name: "Generated", Description: "Auto-generated content",
			Patterns: []Pattern{
				{ID: "generated:lockfile", Category: "generated", Name: "Lock file", Description: "Package lock files (package-lock.json, yarn.lock, etc.)"},
				{ID: "generated:build", Category: "generated", Name: "Build output", Description: "Build artifacts and generated code"},
				{ID: "generated:schema", Category: "generated", Name: "Schema", Description: "Generated schema files"},
			},
		},
		{
			ID: "rename", Name: "Rename", Description: "Identifier renaming",
			Patterns: []Pattern{
				{ID: "rename:variable", Category: "rename", Name: "Variable", Description: "Variable renamed"},
				{ID: "rename:function", Category: "rename", Name: "Function", Description: "Function or method renamed"},
				{ID: "rename:class", Category: "rename", Name: "Class", Description: "Class or type renamed"},
			},
		},
		{
			ID: "move", Name: "Move", Description: "Code movement",
			Patterns: []Pattern{
				{ID: "move:code", Category: "move", Name: "Moved code", Description: "Identical content moved between files"},
			},
		},
		{
			ID: "code", Name: "Code", Description: "Code structure",
			Patterns: []Pattern{
				{ID: "code:extracted", Category: "code", Name: "Extracted", Description: "Code extracted to separate function/module"},
			},
		},
		{
			ID: "version", Name: "Version", Description: "Version number changes",
			Patterns: []Pattern{
				{ID: "version:bumped", Category: "version", Name: "Bumped", Description: "Version number incremented"},
			},
		},
		{
			ID: "remove", Name: "Remove", Description: "Code removal",
			Patterns: []Pattern{
				{ID: "remove:deprecated", Category: "remove", Name: "Deprecated", Description: "Deprecated code removed"},
				{ID: "remove:dead-code", Category: "remove", Name: "Dead code", Description: "Unreachable or unused code removed"},
			},
		},
	}
}

// KnownPattern reports whether id exists in the taxonomy, as either a
// pattern id or a bare category id.
func KnownPattern(id string) bool {
	for _, cat := range Taxonomy() {
		if cat.ID == id {
			return true
		}
		for _, p := range cat.Patterns {
			if p.ID == id {
				return true
			}
		}
	}
	return false
}
