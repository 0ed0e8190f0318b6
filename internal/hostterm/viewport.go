// Package hostterm installs and restores the host terminal's viewport: the
// startup and shutdown escape sequences that confine scrolling to the
// window's sub-region and release that confinement on exit.
package hostterm

import (
	"fmt"
	"io"
)

// Viewport describes a window's placement on the host terminal, in 0-based
// virtual coordinates translated to the host's 1-based CSI coordinates.
type Viewport struct {
	OriginY, OriginX int
	Height, Width    int
}

// Install emits the startup sequence: enable the host's left/right margin
// mode, set the left/right margins, and set the top/bottom scroll region
// to the window's bounds.
func Install(out io.Writer, v Viewport) {
	fmt.Fprintf(out, "\x1b[?69h\x1b[%d;%ds\x1b[%d;%dr",
		v.OriginX+1, v.OriginX+v.Width,
		v.OriginY+1, v.OriginY+v.Height)
}

// Restore emits the shutdown sequence: disable left/right margin mode and
// reset the scroll region and margins to the full size of the host
// terminal, rows and cols given in its own 1-based geometry.
func Restore(out io.Writer, hostRows, hostCols int) {
	fmt.Fprintf(out, "\x1b[?69l\x1b[1;%dr\x1b[1;%ds", hostRows, hostCols)
}
