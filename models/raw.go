package models

// Grid is a sparse row → column → cell text map. Indices start at 1.
type Grid map[int]map[int]string

// Set stores a cell value, allocating the row on first use.
func (g Grid) Set(row, col int, value string) {
	if g[row] == nil {
		g[row] = make(map[int]string)
	}
	g[row][col] = value
}

// Cell returns the value at (row, col) and whether it was present.
func (g Grid) Cell(row, col int) (string, bool) {
	cols, ok := g[row]
	if !ok {
		return "", false
	}
	v, ok := cols[col]
	return v, ok
}

// RawView is what the rendering side hands to the extractor: either the
// visible text of the rendered frame split into trimmed non-empty lines,
// or a structured grid of cell values.
type RawView struct {
	Lines []string
	Grid  Grid
}

// Empty reports whether the view carries no usable content.
func (v *RawView) Empty() bool {
	return v == nil || (len(v.Lines) == 0 && len(v.Grid) == 0)
}
