package main

// SpatialCellSize is ~2x the largest entity radius so most circles land in
// at most four cells.
const SpatialCellSize = 80.0

// SpatialGrid is a broad-phase grid for collision and area queries. It is
// rebuilt from scratch each fixed step.
type SpatialGrid struct {
	cols, rows int
	cells      [][]string
}

// NewSpatialGrid sizes a grid to cover the given world bounds.
func NewSpatialGrid(width, height float64) *SpatialGrid {
	cols := int(width/SpatialCellSize) + 1
	rows := int(height/SpatialCellSize) + 1
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	return &SpatialGrid{
		cols:  cols,
		rows:  rows,
		cells: make([][]string, cols*rows),
	}
}

// Clear resets all cells (keeps allocated capacity)
func (g *SpatialGrid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
}

func (g *SpatialGrid) clampCell(c, max int) int {
	if c < 0 {
		return 0
	}
	if c >= max {
		return max - 1
	}
	return c
}

// InsertCircle adds an entity id to all cells overlapping its bounding box
func (g *SpatialGrid) InsertCircle(x, y, radius float64, id string) {
	minCX := g.clampCell(int((x-radius)/SpatialCellSize), g.cols)
	maxCX := g.clampCell(int((x+radius)/SpatialCellSize), g.cols)
	minCY := g.clampCell(int((y-radius)/SpatialCellSize), g.rows)
	maxCY := g.clampCell(int((y+radius)/SpatialCellSize), g.rows)
	for cy := minCY; cy <= maxCY; cy++ {
		for cx := minCX; cx <= maxCX; cx++ {
			idx := cy*g.cols + cx
			g.cells[idx] = append(g.cells[idx], id)
		}
	}
}

// QueryBuf appends ids in cells overlapping the given bounding box to buf
// and returns the extended slice, avoiding per-call allocation. Ids may
// repeat when a circle spans several cells; callers dedupe.
func (g *SpatialGrid) QueryBuf(x, y, radius float64, buf []string) []string {
	minCX := g.clampCell(int((x-radius)/SpatialCellSize), g.cols)
	maxCX := g.clampCell(int((x+radius)/SpatialCellSize), g.cols)
	minCY := g.clampCell(int((y-radius)/SpatialCellSize), g.rows)
	maxCY := g.clampCell(int((y+radius)/SpatialCellSize), g.rows)
	for cy := minCY; cy <= maxCY; cy++ {
		for cx := minCX; cx <= maxCX; cx++ {
			idx := cy*g.cols + cx
			buf = append(buf, g.cells[idx]...)
		}
	}
	return buf
}

// Query allocates and returns ids near the given circle
func (g *SpatialGrid) Query(x, y, radius float64) []string {
	return g.QueryBuf(x, y, radius, nil)
}
