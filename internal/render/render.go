// Package render implements the host-terminal-translated renderer: the
// component that turns virtual screen operations into the concrete escape
// sequences written to the enclosing terminal, confined to a rectangular
// sub-region and minimizing attribute re-emission.
package render

import (
	"io"
	"strconv"

	"github.com/javanhut/winpane/internal/attr"
	"github.com/javanhut/winpane/internal/cellgrid"
)

// Renderer draws a cellgrid.Grid onto a host terminal, translating every
// virtual (row, col) into a host position offset by (OriginY, OriginX).
// It implements screen.Host.
type Renderer struct {
	out      io.Writer
	grid     *cellgrid.Grid
	OriginY  int
	OriginX  int
	lastAttr attr.Attr
	haveLast bool
}

// New creates a Renderer that draws grid's cells to out, with the window's
// top-left corner at host position (originY, originX), both 0-based.
func New(out io.Writer, grid *cellgrid.Grid, originY, originX int) *Renderer {
	return &Renderer{out: out, grid: grid, OriginY: originY, OriginX: originX}
}

func (r *Renderer) write(p []byte) {
	r.out.Write(p)
}

func (r *Renderer) writeCSI(params ...int) {
	b := make([]byte, 0, 16)
	b = append(b, 0x1b, '[')
	for i, p := range params {
		if i > 0 {
			b = append(b, ';')
		}
		b = strconv.AppendInt(b, int64(p), 10)
	}
	r.write(b)
}

// MoveTo positions the host cursor at virtual (row, col), 1-based CUP.
func (r *Renderer) MoveTo(row, col int) {
	b := make([]byte, 0, 16)
	b = append(b, 0x1b, '[')
	b = strconv.AppendInt(b, int64(r.OriginY+row+1), 10)
	b = append(b, ';')
	b = strconv.AppendInt(b, int64(r.OriginX+col+1), 10)
	b = append(b, 'H')
	r.write(b)
}

// SetAutoWrap enables or disables the host's own DECAWM auto-wrap.
func (r *Renderer) SetAutoWrap(enabled bool) {
	if enabled {
		r.write([]byte("\x1b[?7h"))
	} else {
		r.write([]byte("\x1b[?7l"))
	}
}

// ApplyCurrentAttr emits the SGR sequence for a, skipping emission entirely
// when a is identical to the most recently applied attribute.
func (r *Renderer) ApplyCurrentAttr(a attr.Attr) {
	if r.haveLast && a == r.lastAttr {
		return
	}
	r.write([]byte("\x1b[0m"))
	codes := sgrCodes(a)
	if len(codes) > 0 {
		r.writeCSI(codes...)
		r.write([]byte{'m'})
	}
	r.lastAttr = a
	r.haveLast = true
}

// WriteByte writes a single already-positioned, already-styled byte.
func (r *Renderer) WriteByte(b byte) {
	r.write([]byte{b})
}

// DrawLine redraws grid cells [c0, c1] of virtual row, then restores the
// host cursor to virtual (curRow, curCol).
func (r *Renderer) DrawLine(row, c0, c1, curRow, curCol int) {
	r.MoveTo(row, c0)
	for c := c0; c <= c1; c++ {
		cell := r.grid.CellAt(row, c)
		r.ApplyCurrentAttr(cell.Attr)
		r.WriteByte(cell.Ch)
	}
	r.write([]byte("\x1b[0m"))
	r.haveLast = false
	r.MoveTo(curRow, curCol)
}

// Passthrough forwards a raw escape sequence verbatim to the host.
func (r *Renderer) Passthrough(seq []byte) {
	r.write(seq)
}

// sgrCodes translates a into the list of SGR parameters that reconstruct
// it from a clean (post CSI 0 m) state.
func sgrCodes(a attr.Attr) []int {
	var codes []int
	if a.Flags&attr.Bold != 0 {
		codes = append(codes, 1)
	}
	if a.Flags&attr.Faint != 0 {
		codes = append(codes, 2)
	}
	if a.Flags&attr.Italic != 0 {
		codes = append(codes, 3)
	}
	if a.Flags&attr.Underline != 0 {
		codes = append(codes, 4)
	}
	if a.Flags&attr.Blink != 0 {
		codes = append(codes, 5)
	}
	if a.Flags&attr.Reverse != 0 {
		codes = append(codes, 7)
	}
	if a.Flags&attr.Conceal != 0 {
		codes = append(codes, 8)
	}
	if a.Flags&attr.Strike != 0 {
		codes = append(codes, 9)
	}
	switch a.Fg.Kind {
	case attr.ColorIndexed16:
		n := int(a.Fg.Index)
		if n < 8 {
			codes = append(codes, 30+n)
		} else {
			codes = append(codes, 90+n-8)
		}
	case attr.ColorIndexed256:
		codes = append(codes, 38, 5, int(a.Fg.Index))
	}
	switch a.Bg.Kind {
	case attr.ColorIndexed16:
		n := int(a.Bg.Index)
		if n < 8 {
			codes = append(codes, 40+n)
		} else {
			codes = append(codes, 100+n-8)
		}
	case attr.ColorIndexed256:
		codes = append(codes, 48, 5, int(a.Bg.Index))
	}
	return codes
}
