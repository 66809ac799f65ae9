package render

import (
	"fmt"

	"github.com/hexops/gotextdiff"
	"github.com/hexops/gotextdiff/myers"
	"github.com/hexops/gotextdiff/span"
)

// Diff returns a unified diff turning current into fresh, or "" when equal
func Diff(path, current, fresh string) string {
	if current == fresh {
		return ""
	}
	edits := myers.ComputeEdits(span.URIFromPath(path), current, fresh)
	return fmt.Sprint(gotextdiff.ToUnified(path+" (on disk)", path+" (generated)", current, edits))
}
