// Package screen implements the virtual screen state machine: cursor
// position, scroll region, saved cursor, the pending-wrap flag, and the
// dispatch of every control function the stream parser recognizes. It
// mutates a cellgrid.Grid and an attr.Attr, and drives a Host to keep the
// enclosing terminal's view of the window in sync.
package screen

import (
	"strconv"

	"github.com/javanhut/winpane/internal/attr"
	"github.com/javanhut/winpane/internal/cellgrid"
)

// Host is the renderer-facing side of the screen: everything the state
// machine needs to keep the host terminal's view of the window translated
// and in sync. An implementation lives in package render.
type Host interface {
	// MoveTo positions the host cursor at virtual (row, col).
	MoveTo(row, col int)
	// SetAutoWrap enables or disables the host's own auto-wrap behavior.
	SetAutoWrap(enabled bool)
	// ApplyCurrentAttr emits the SGR sequence for a, without writing a cell.
	ApplyCurrentAttr(a attr.Attr)
	// WriteByte writes a single already-positioned, already-styled byte.
	WriteByte(b byte)
	// DrawLine redraws grid cells [c0, c1] of virtual row, then restores
	// the host cursor to virtual (curRow, curCol).
	DrawLine(row, c0, c1, curRow, curCol int)
	// Passthrough forwards a raw escape sequence verbatim.
	Passthrough(seq []byte)
}

// suppressedPrivateModes are DEC private modes with host-global effect
// (alternate screen, mouse/bracketed-paste reporting) that must never be
// forwarded, since their effects would escape the window.
var suppressedPrivateModes = map[int]struct{}{
	47: {}, 1047: {}, 1048: {}, 1049: {},
	1000: {}, 1001: {}, 1002: {}, 1003: {}, 1004: {},
	1005: {}, 1006: {}, 1015: {}, 1016: {},
	2004: {},
}

// Screen is the virtual screen state machine for one windowed sub-region.
type Screen struct {
	grid *cellgrid.Grid
	host Host

	H, W int

	vrow, vcol           int
	savedVrow, savedVcol int
	scrollTop, scrollBot int
	wrapPending          bool
	cur                  attr.Attr
}

// New creates a Screen over grid, reporting host translation through host.
// The scroll region initially spans the whole grid.
func New(grid *cellgrid.Grid, host Host) *Screen {
	return &Screen{
		grid:      grid,
		host:      host,
		H:         grid.H,
		W:         grid.W,
		scrollTop: 0,
		scrollBot: grid.H - 1,
		cur:       attr.Default(),
	}
}

// Cursor returns the current virtual cursor position.
func (s *Screen) Cursor() (row, col int) { return s.vrow, s.vcol }

// WrapPending reports whether the next printable write must first wrap.
func (s *Screen) WrapPending() bool { return s.wrapPending }

// ScrollRegion returns the current scroll region, inclusive.
func (s *Screen) ScrollRegion() (top, bottom int) { return s.scrollTop, s.scrollBot }

// CurrentAttr returns the SGR state applied to subsequent writes.
func (s *Screen) CurrentAttr() attr.Attr { return s.cur }

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func paramOr(params []int, idx, def int) int {
	if idx < len(params) {
		return params[idx]
	}
	return def
}

// paramN implements the "n = params[0] if present and > 0 else 1"
// convention shared by most CSI cursor-motion handlers.
func paramN(params []int, idx int) int {
	if idx < len(params) && params[idx] > 0 {
		return params[idx]
	}
	return 1
}

func (s *Screen) redrawRows(top, bot int) {
	for r := top; r <= bot; r++ {
		s.host.DrawLine(r, 0, s.W-1, s.vrow, s.vcol)
	}
}

func (s *Screen) eraseRow(r, c0, c1 int) {
	for c := c0; c <= c1; c++ {
		s.grid.Reset(r, c)
	}
}

func (s *Screen) scrollUp(n int) {
	s.grid.RotateUp(s.scrollTop, s.scrollBot, n)
	s.redrawRows(s.scrollTop, s.scrollBot)
}

func (s *Screen) scrollDown(n int) {
	s.grid.RotateDown(s.scrollTop, s.scrollBot, n)
	s.redrawRows(s.scrollTop, s.scrollBot)
}

// --- Dispatcher: printable write (spec 4.4.1) ---

// Printable processes one byte known to satisfy isprint.
func (s *Screen) Printable(b byte) {
	if s.wrapPending {
		if s.vrow < s.scrollBot {
			s.vrow++
		} else {
			s.scrollUp(1)
		}
		s.vcol = 0
		s.wrapPending = false
	}

	s.host.MoveTo(s.vrow, s.vcol)

	atLastCol := s.vcol == s.W-1
	if atLastCol {
		s.host.SetAutoWrap(false)
	}

	s.host.ApplyCurrentAttr(s.cur)
	s.host.WriteByte(b)
	s.grid.Set(s.vrow, s.vcol, b, s.cur)

	if atLastCol {
		s.host.SetAutoWrap(true)
		s.wrapPending = true
	} else {
		s.vcol++
	}
}

// --- Dispatcher: C0 controls (spec 4.4.2) ---

// C0 processes a non-printable byte seen in NORMAL state.
func (s *Screen) C0(b byte) {
	switch b {
	case '\n':
		if s.vrow < s.scrollBot {
			s.vrow++
		} else {
			s.scrollUp(1)
		}
		s.wrapPending = false
		s.host.MoveTo(s.vrow, s.vcol)
	case '\r':
		s.vcol = 0
		s.wrapPending = false
		s.host.MoveTo(s.vrow, s.vcol)
	case '\b':
		if s.vcol > 0 {
			s.vcol--
			s.wrapPending = false
			s.grid.Set(s.vrow, s.vcol, ' ', s.cur)
			s.host.DrawLine(s.vrow, s.vcol, s.vcol, s.vrow, s.vcol)
		}
	case 0x15: // NAK, Ctrl-U
		oldVcol := s.vcol
		s.eraseRow(s.vrow, 0, oldVcol)
		s.vcol = 0
		s.wrapPending = false
		s.host.DrawLine(s.vrow, 0, oldVcol, s.vrow, s.vcol)
	default:
		// other non-printable bytes are ignored
	}
}

// --- Dispatcher: ESC single-char sequences (spec 4.4.3) ---

// Esc processes a recognized single-char ESC sequence (7, 8, D, M).
func (s *Screen) Esc(b byte) {
	switch b {
	case '7':
		s.savedVrow, s.savedVcol = s.vrow, s.vcol
	case '8':
		s.restoreCursor()
	case 'D':
		if s.vrow < s.scrollBot {
			s.vrow++
		} else {
			s.scrollUp(1)
		}
		s.host.MoveTo(s.vrow, s.vcol)
	case 'M':
		if s.vrow > s.scrollTop {
			s.vrow--
		} else {
			s.scrollDown(1)
		}
		s.host.MoveTo(s.vrow, s.vcol)
	}
}

// EscUnknown forwards any other ESC + byte sequence verbatim.
func (s *Screen) EscUnknown(b byte) {
	s.host.Passthrough([]byte{0x1b, b})
}

func (s *Screen) restoreCursor() {
	s.vrow, s.vcol = s.savedVrow, s.savedVcol
	s.vrow = clamp(s.vrow, s.scrollTop, s.scrollBot)
	s.wrapPending = false
	s.host.MoveTo(s.vrow, s.vcol)
}

// --- Dispatcher: CSI sequences (spec 4.4.4-4.4.6) ---

// CSI processes a complete CSI sequence: params, final byte, and the
// private-marker / intermediate-byte flags collected by the parser.
func (s *Screen) CSI(params []int, final byte, private bool, intermediate byte) {
	if private {
		s.dispatchPrivate(params, final)
		return
	}
	if intermediate != 0 {
		s.host.Passthrough(buildCSI(params, final, false, intermediate))
		return
	}
	if !s.dispatchCSI(params, final) {
		s.host.Passthrough(buildCSI(params, final, false, 0))
	}
}

func (s *Screen) dispatchPrivate(params []int, final byte) {
	p := 0
	if len(params) > 0 {
		p = params[0]
	}
	if _, suppressed := suppressedPrivateModes[p]; suppressed {
		return
	}
	s.host.Passthrough(buildCSI(params, final, true, 0))
}

func (s *Screen) dispatchCSI(params []int, final byte) bool {
	switch final {
	case 'A': // CUU
		n := paramN(params, 0)
		s.vrow = clamp(s.vrow-n, s.scrollTop, s.H-1)
		s.wrapPending = false
		s.host.MoveTo(s.vrow, s.vcol)
	case 'B': // CUD
		n := paramN(params, 0)
		s.vrow = clamp(s.vrow+n, 0, s.scrollBot)
		s.wrapPending = false
		s.host.MoveTo(s.vrow, s.vcol)
	case 'C': // CUF
		n := paramN(params, 0)
		s.vcol = clamp(s.vcol+n, 0, s.W-1)
		s.wrapPending = false
		s.host.MoveTo(s.vrow, s.vcol)
	case 'D': // CUB
		n := paramN(params, 0)
		s.vcol = clamp(s.vcol-n, 0, s.W-1)
		s.wrapPending = false
		s.host.MoveTo(s.vrow, s.vcol)
	case 'H', 'f': // CUP
		n := paramN(params, 0)
		m := paramN(params, 1)
		s.vrow = clamp(n-1, 0, s.H-1)
		s.vcol = clamp(m-1, 0, s.W-1)
		s.wrapPending = false
		s.host.MoveTo(s.vrow, s.vcol)
	case 'G': // CHA
		n := paramN(params, 0)
		s.vcol = clamp(n-1, 0, s.W-1)
		s.wrapPending = false
		s.host.MoveTo(s.vrow, s.vcol)
	case 'J': // ED
		s.eraseDisplay(paramOr(params, 0, 0))
	case 'K': // EL
		s.eraseLine(paramOr(params, 0, 0))
	case 'L': // IL
		n := paramN(params, 0)
		if s.vrow >= s.scrollTop && s.vrow <= s.scrollBot {
			s.grid.RotateDown(s.vrow, s.scrollBot, n)
			s.redrawRows(s.vrow, s.scrollBot)
		}
	case 'M': // DL
		n := paramN(params, 0)
		if s.vrow >= s.scrollTop && s.vrow <= s.scrollBot {
			s.grid.RotateUp(s.vrow, s.scrollBot, n)
			s.redrawRows(s.vrow, s.scrollBot)
		}
	case '@': // ICH
		s.insertChars(paramN(params, 0))
	case 'P': // DCH
		s.deleteChars(paramN(params, 0))
	case 'X': // ECH
		s.eraseChars(paramN(params, 0))
	case 'r': // DECSTBM
		s.setScrollRegion(params)
	case 's': // SCP
		s.savedVrow, s.savedVcol = s.vrow, s.vcol
	case 'u': // RCP
		s.restoreCursor()
	case 'm': // SGR
		attr.ApplySGR(&s.cur, params)
	default:
		return false
	}
	return true
}

func (s *Screen) eraseDisplay(mode int) {
	switch mode {
	case 0:
		s.eraseRow(s.vrow, s.vcol, s.W-1)
		for r := s.vrow + 1; r < s.H; r++ {
			s.eraseRow(r, 0, s.W-1)
		}
		s.redrawRows(s.vrow, s.H-1)
	case 1:
		for r := 0; r < s.vrow; r++ {
			s.eraseRow(r, 0, s.W-1)
		}
		s.eraseRow(s.vrow, 0, s.vcol)
		s.redrawRows(0, s.vrow)
	case 2, 3:
		s.grid.ResetAll()
		s.cur = attr.Default()
		s.redrawRows(0, s.H-1)
	}
	s.host.MoveTo(s.vrow, s.vcol)
}

func (s *Screen) eraseLine(mode int) {
	switch mode {
	case 0:
		s.eraseRow(s.vrow, s.vcol, s.W-1)
	case 1:
		s.eraseRow(s.vrow, 0, s.vcol)
	case 2:
		s.eraseRow(s.vrow, 0, s.W-1)
	default:
		return
	}
	s.host.DrawLine(s.vrow, 0, s.W-1, s.vrow, s.vcol)
}

func (s *Screen) insertChars(n int) {
	if n > s.W-s.vcol {
		n = s.W - s.vcol
	}
	for c := s.W - 1; c >= s.vcol+n; c-- {
		cell := s.grid.CellAt(s.vrow, c-n)
		s.grid.Set(s.vrow, c, cell.Ch, cell.Attr)
	}
	s.eraseRow(s.vrow, s.vcol, s.vcol+n-1)
	s.host.DrawLine(s.vrow, s.vcol, s.W-1, s.vrow, s.vcol)
}

func (s *Screen) deleteChars(n int) {
	if n > s.W-s.vcol {
		n = s.W - s.vcol
	}
	for c := s.vcol; c <= s.W-1-n; c++ {
		cell := s.grid.CellAt(s.vrow, c+n)
		s.grid.Set(s.vrow, c, cell.Ch, cell.Attr)
	}
	s.eraseRow(s.vrow, s.W-n, s.W-1)
	s.host.DrawLine(s.vrow, s.vcol, s.W-1, s.vrow, s.vcol)
}

func (s *Screen) eraseChars(n int) {
	if n > s.W-s.vcol {
		n = s.W - s.vcol
	}
	s.eraseRow(s.vrow, s.vcol, s.vcol+n-1)
	s.host.DrawLine(s.vrow, s.vcol, s.vcol+n-1, s.vrow, s.vcol)
}

func (s *Screen) setScrollRegion(params []int) {
	n := paramN(params, 0)
	top := clamp(n-1, 0, s.H-1)
	bottom := s.H - 1
	if len(params) > 1 && params[1] > 0 {
		bottom = params[1] - 1
	}
	if top > bottom || bottom >= s.H {
		return
	}
	s.scrollTop = top
	s.scrollBot = bottom
	s.vrow = top
	s.vcol = 0
	s.wrapPending = false
	s.host.MoveTo(s.vrow, s.vcol)
}

// buildCSI reconstructs the verbatim byte sequence for an unhandled or
// forwarded CSI sequence: ESC [ [?] params... [intermediate] final.
func buildCSI(params []int, final byte, private bool, intermediate byte) []byte {
	b := make([]byte, 0, 16)
	b = append(b, 0x1b, '[')
	if private {
		b = append(b, '?')
	}
	for i, p := range params {
		if i > 0 {
			b = append(b, ';')
		}
		b = strconv.AppendInt(b, int64(p), 10)
	}
	if intermediate != 0 {
		b = append(b, intermediate)
	}
	b = append(b, final)
	return b
}
