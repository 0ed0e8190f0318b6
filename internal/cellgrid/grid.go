// Package cellgrid holds the virtual screen's 2-D array of cells and the
// row-rotation primitive used for scrolling.
//
// Rows are stored in a single contiguous H*W buffer; a row-offset table
// maps each logical row to a physical row within that buffer, so scrolling
// is an index permutation (reference swap) rather than a cell copy. This
// keeps the grid's memory footprint stable across the program's lifetime.
package cellgrid

import "github.com/javanhut/winpane/internal/attr"

// Cell is a single character cell: a byte and its attribute.
type Cell struct {
	Ch   byte
	Attr attr.Attr
}

func blank() Cell {
	return Cell{Ch: ' ', Attr: attr.Default()}
}

// Grid is the authoritative H-row by W-column image of the window.
type Grid struct {
	H, W int
	buf  []Cell
	rows []int // rows[logical] = physical row index into buf
}

// New allocates a zero-filled grid (space characters, default attributes).
func New(w, h int) *Grid {
	g := &Grid{
		H:    h,
		W:    w,
		buf:  make([]Cell, w*h),
		rows: make([]int, h),
	}
	for i := range g.buf {
		g.buf[i] = blank()
	}
	for i := range g.rows {
		g.rows[i] = i
	}
	return g
}

func (g *Grid) offset(r, c int) int {
	return g.rows[r]*g.W + c
}

// CellAt returns the cell at virtual (r, c). Out-of-range coordinates are
// impossible by construction (spec invariant 1) so no bounds error path
// exists here.
func (g *Grid) CellAt(r, c int) Cell {
	return g.buf[g.offset(r, c)]
}

// Set writes ch and attr into the cell at virtual (r, c).
func (g *Grid) Set(r, c int, ch byte, a attr.Attr) {
	g.buf[g.offset(r, c)] = Cell{Ch: ch, Attr: a}
}

// Reset blanks the cell at virtual (r, c) to a space with default attributes.
func (g *Grid) Reset(r, c int) {
	g.buf[g.offset(r, c)] = blank()
}

// ResetRow blanks an entire row.
func (g *Grid) ResetRow(r int) {
	for c := 0; c < g.W; c++ {
		g.Reset(r, c)
	}
}

// ResetAll blanks the entire grid.
func (g *Grid) ResetAll() {
	for r := 0; r < g.H; r++ {
		g.ResetRow(r)
	}
}

func (g *Grid) clearPhysicalRow(physical int) {
	base := physical * g.W
	for c := 0; c < g.W; c++ {
		g.buf[base+c] = blank()
	}
}

// RotateUp shifts the row references in [top, bot] upward by n, cycling the
// displaced rows to the bottom of the range and clearing them. Rows outside
// [top, bot] are untouched. It never copies cell contents for rows that
// survive the shift — only the row-offset table is permuted.
func (g *Grid) RotateUp(top, bot, n int) {
	for k := 0; k < n; k++ {
		temp := g.rows[top]
		copy(g.rows[top:bot], g.rows[top+1:bot+1])
		g.rows[bot] = temp
		g.clearPhysicalRow(temp)
	}
}

// RotateDown is the mirror of RotateUp: shifts [top, bot] downward by n,
// cycling the displaced rows to the top of the range and clearing them.
func (g *Grid) RotateDown(top, bot, n int) {
	for k := 0; k < n; k++ {
		temp := g.rows[bot]
		copy(g.rows[top+1:bot+1], g.rows[top:bot])
		g.rows[top] = temp
		g.clearPhysicalRow(temp)
	}
}
