// Package bar maps clicks on the status bar to workspaces and produces the
// status text shown next to the workspace cells.
package bar

// Cells describes the row of equally wide workspace cells at the left edge
// of the bar.
type Cells struct {
	Width int
	Count int
}

// WorkspaceAt returns the 0-based workspace under bar coordinate x.
func (c Cells) WorkspaceAt(x int) (int, bool) {
	if c.Width <= 0 || x < 0 {
		return 0, false
	}
	index := x / c.Width
	if index >= c.Count {
		return 0, false
	}
	return index, true
}
