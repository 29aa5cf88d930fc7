package color

// channelStatus is the kind of value a ColorChannel currently holds.
type channelStatus int

const (
	chanUnset channelStatus = iota // no SGR emitted yet for this channel
	chanReset                      // explicit "default" (SGR 39/49)
	chan16                         // basic or bright 16-color (SGR 30-37/90-97, 40-47/100-107)
	chan256                        // xterm 256-color (SGR 38;5;n / 48;5;n)
	chanTrue                       // 24-bit truecolor (SGR 38;2;r;g;b / 48;2;r;g;b)
)

// ColorChannel represents the foreground or background color half of a
// ColorState.
type ColorChannel struct {
	Status channelStatus
	Idx16  int // 0-15, only meaningful when Status == chan16
	Idx256 int // 0-255, only meaningful when Status == chan256
	RGB    [3]byte // only meaningful when Status == chanTrue
}

// ColorState is the full set of SGR attributes in effect at a point in
// rendered output.
type ColorState struct {
	FG        ColorChannel
	BG        ColorChannel
	Bold      bool
	Underline bool
	Inverse   bool
	Flash     bool
}

// downgrade returns the channel re-expressed at the given depth. A
// channel already at or below the target depth passes through
// unchanged; anything richer is downgraded via nearest-color search.
func (c ColorChannel) downgrade(depth ColorDepth) ColorChannel {
	switch c.Status {
	case chanUnset, chanReset:
		return c
	case chan16:
		return c // 16-color always fits, any depth >= Depth16
	case chan256:
		if depth >= Depth256 {
			return c
		}
		return ColorChannel{Status: chan16, Idx16: nearest16From256(clampIdx(c.Idx256))}
	case chanTrue:
		switch {
		case depth >= DepthTrue:
			return c
		case depth == Depth256:
			idx := nearest256(c.RGB[0], c.RGB[1], c.RGB[2])
			return ColorChannel{Status: chan256, Idx256: idx}
		default:
			idx := nearest16(c.RGB[0], c.RGB[1], c.RGB[2])
			return ColorChannel{Status: chan16, Idx16: idx}
		}
	}
	return c
}

func clampIdx(i int) int {
	if i < 0 {
		return 0
	}
	if i > 255 {
		return 255
	}
	return i
}

// Downgrade re-expresses every channel of the state at the given depth.
// At DepthNone every channel and attribute collapses to the zero state.
func (s ColorState) Downgrade(depth ColorDepth) ColorState {
	if depth == DepthNone {
		return ColorState{}
	}
	return ColorState{
		FG:        s.FG.downgrade(depth),
		BG:        s.BG.downgrade(depth),
		Bold:      s.Bold,
		Underline: s.Underline,
		Inverse:   s.Inverse,
		Flash:     s.Flash,
	}
}
