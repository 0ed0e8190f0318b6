// Package attr holds the current SGR (Select Graphic Rendition) attribute
// state for a virtual screen and interprets CSI m parameter lists against it.
package attr

// ColorKind tags how a Color's Index should be interpreted.
type ColorKind uint8

const (
	// ColorDefault is the terminal's default foreground or background.
	ColorDefault ColorKind = iota
	// ColorIndexed16 is one of the 16 standard/bright ANSI colors (0-15).
	ColorIndexed16
	// ColorIndexed256 is one of the 256-color palette entries (0-255).
	ColorIndexed256
)

// Color is a tagged color value: default, or an index into one of the
// 16-color or 256-color palettes.
type Color struct {
	Kind  ColorKind
	Index uint8
}

// DefaultColor returns the distinguished "use terminal default" color.
func DefaultColor() Color {
	return Color{Kind: ColorDefault}
}

// Indexed16 returns an indexed-16 color (n must be 0-15).
func Indexed16(n uint8) Color {
	return Color{Kind: ColorIndexed16, Index: n}
}

// Indexed256 returns an indexed-256 color.
func Indexed256(n uint8) Color {
	return Color{Kind: ColorIndexed256, Index: n}
}

// Flags is a bitset over the eight SGR attribute flags.
type Flags uint8

const (
	Bold Flags = 1 << iota
	Faint
	Italic
	Underline
	Blink
	Reverse
	Conceal
	Strike
)

// Attr is the full SGR attribute state applied to a cell or to subsequent
// writes: a foreground color, a background color, and a flag bitset.
type Attr struct {
	Fg    Color
	Bg    Color
	Flags Flags
}

// Default is the zero-value attribute: default fg/bg, no flags set.
func Default() Attr {
	return Attr{Fg: DefaultColor(), Bg: DefaultColor()}
}

// ApplySGR consumes a CSI m parameter list left to right, mutating a in
// place per ECMA-48. An empty params list is treated as {0}.
func ApplySGR(a *Attr, params []int) {
	if len(params) == 0 {
		params = []int{0}
	}

	for i := 0; i < len(params); i++ {
		p := params[i]
		switch {
		case p == 0:
			*a = Default()
		case p == 1:
			a.Flags |= Bold
		case p == 2:
			a.Flags |= Faint
		case p == 3:
			a.Flags |= Italic
		case p == 4:
			a.Flags |= Underline
		case p == 5:
			a.Flags |= Blink
		case p == 7:
			a.Flags |= Reverse
		case p == 8:
			a.Flags |= Conceal
		case p == 9:
			a.Flags |= Strike
		case p == 22:
			a.Flags &^= Bold | Faint
		case p == 23:
			a.Flags &^= Italic
		case p == 24:
			a.Flags &^= Underline
		case p == 25:
			a.Flags &^= Blink
		case p == 27:
			a.Flags &^= Reverse
		case p == 28:
			a.Flags &^= Conceal
		case p == 29:
			a.Flags &^= Strike
		case p >= 30 && p <= 37:
			a.Fg = Indexed16(uint8(p - 30))
		case p == 38:
			if i+2 < len(params) && params[i+1] == 5 {
				a.Fg = Indexed256(uint8(params[i+2]))
				i += 2
			}
		case p == 39:
			a.Fg = DefaultColor()
		case p >= 40 && p <= 47:
			a.Bg = Indexed16(uint8(p - 40))
		case p == 48:
			if i+2 < len(params) && params[i+1] == 5 {
				a.Bg = Indexed256(uint8(params[i+2]))
				i += 2
			}
		case p == 49:
			a.Bg = DefaultColor()
		case p >= 90 && p <= 97:
			a.Fg = Indexed16(uint8(p - 90 + 8))
		case p >= 100 && p <= 107:
			a.Bg = Indexed16(uint8(p - 100 + 8))
		default:
			// unknown SGR param: ignored, per spec error taxonomy
		}
	}
}
