package export

import (
	"fmt"
	"io"

	"github.com/kozaktomas/photo-culler/internal/media"
)

// PrintPreview lists the selected takes of every group without copying anything.
func PrintPreview(w io.Writer, groups []*media.Group) {
	selectedTotal := 0
	for _, g := range groups {
		selected := g.Selected()
		if len(selected) == 0 {
			fmt.Fprintf(w, "Group %d (%d photos): no selection\n", g.Index, g.Size())
			continue
		}
		fmt.Fprintf(w, "Group %d (%d photos):\n", g.Index, g.Size())
		for _, p := range selected {
			fmt.Fprintf(w, "  [%d] %s\n", p.Index, p.Name())
		}
		selectedTotal += len(selected)
	}
	fmt.Fprintf(w, "\n%d groups, %d photos selected\n", len(groups), selectedTotal)
}
