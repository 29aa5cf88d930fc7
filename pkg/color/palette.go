package color

import colorful "github.com/lucasb-eyer/go-colorful"

// rgb is a packed 8-bit-per-channel color.
type rgb struct {
	r, g, b uint8
}

// palette256[i] is the standard xterm 256-color palette entry for
// index i, in the same order as the SGR `38;5;i` / `48;5;i` codes.
var palette256 [256]rgb

// lab256[i] is palette256[i] as a colorful.Color (sRGB components in
// 0-1), built once at init. It holds no CIELAB coordinates: each
// DistanceCIEDE2000 call converts both colors to CIELAB itself.
var lab256 [256]colorful.Color

// ansi16Index maps basic-16 ANSI color numbers (0-15) onto their slot
// in palette256, which mirrors xterm's own placement of the 16 base
// colors at the front of the 256-color table.
var ansi16Index = [16]int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15}

func init() {
	// Entries 0-15: the classic xterm 16-color palette.
	basic := [16]rgb{
		{0, 0, 0}, {205, 0, 0}, {0, 205, 0}, {205, 205, 0},
		{0, 0, 238}, {205, 0, 205}, {0, 205, 205}, {229, 229, 229},
		{127, 127, 127}, {255, 0, 0}, {0, 255, 0}, {255, 255, 0},
		{92, 92, 255}, {255, 0, 255}, {0, 255, 255}, {255, 255, 255},
	}
	for i, c := range basic {
		palette256[i] = c
	}

	// Entries 16-231: the 6x6x6 color cube.
	levels := [6]uint8{0, 95, 135, 175, 215, 255}
	i := 16
	for r := 0; r < 6; r++ {
		for g := 0; g < 6; g++ {
			for b := 0; b < 6; b++ {
				palette256[i] = rgb{levels[r], levels[g], levels[b]}
				i++
			}
		}
	}

	// Entries 232-255: the 24-step grayscale ramp.
	for step := 0; step < 24; step++ {
		v := uint8(8 + step*10)
		palette256[232+step] = rgb{v, v, v}
	}

	for idx, c := range palette256 {
		lab256[idx] = colorful.Color{
			R: float64(c.r) / 255,
			G: float64(c.g) / 255,
			B: float64(c.b) / 255,
		}
	}
}

// nearest256 returns the palette256 index whose CIELAB coordinate is
// closest (by CIEDE2000 distance) to the given truecolor RGB triple.
func nearest256(r, g, b uint8) int {
	target := colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
	best := 0
	bestDist := target.DistanceCIEDE2000(lab256[0])
	for i := 1; i < len(lab256); i++ {
		d := target.DistanceCIEDE2000(lab256[i])
		if d < bestDist {
			bestDist = d
			best = i
		}
	}
	return best
}

// nearest16 returns the basic-16 ANSI color number closest to the given
// truecolor RGB triple.
func nearest16(r, g, b uint8) int {
	target := colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
	best := 0
	bestDist := target.DistanceCIEDE2000(lab256[ansi16Index[0]])
	for i := 1; i < 16; i++ {
		d := target.DistanceCIEDE2000(lab256[ansi16Index[i]])
		if d < bestDist {
			bestDist = d
			best = i
		}
	}
	return best
}

// nearest16From256 downgrades an xterm 256-color index to its closest
// basic-16 ANSI color number.
func nearest16From256(idx int) int {
	if idx < 0 || idx > 255 {
		return 0
	}
	c := palette256[idx]
	return nearest16(c.r, c.g, c.b)
}
