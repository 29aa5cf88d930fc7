package color

import (
	"strconv"
	"strings"
)

const (
	csi   = "\033["
	sgrEnd = 'm'
)

// ColorSpan describes the ColorState in effect over a byte range of the
// plain (escape-stripped) text returned by ParseEmbedded.
type ColorSpan struct {
	Start, End int
	State      ColorState
}

// ParseEmbedded strips SGR escape sequences out of text and returns the
// plain text alongside the ColorState in effect over each run of it.
// Non-SGR escape sequences (cursor movement, etc.) are left untouched in
// the plain text, since the evaluator never emits them.
func ParseEmbedded(text string) (string, []ColorSpan) {
	var plain strings.Builder
	var spans []ColorSpan
	state := ColorState{}
	spanStart := 0

	i := 0
	for i < len(text) {
		if text[i] == 0x1b && i+1 < len(text) && text[i+1] == '[' {
			end := strings.IndexByte(text[i+2:], sgrEnd)
			if end < 0 {
				// Unterminated escape: treat the rest as literal.
				plain.WriteString(text[i:])
				break
			}
			params := text[i+2 : i+2+end]
			if plain.Len() > spanStart {
				spans = append(spans, ColorSpan{Start: spanStart, End: plain.Len(), State: state})
				spanStart = plain.Len()
			}
			state = applySGR(state, params)
			i += 2 + end + 1
			continue
		}
		plain.WriteByte(text[i])
		i++
	}
	if plain.Len() > spanStart {
		spans = append(spans, ColorSpan{Start: spanStart, End: plain.Len(), State: state})
	}
	return plain.String(), spans
}

// applySGR folds one SGR parameter list into a ColorState.
func applySGR(state ColorState, params string) ColorState {
	if params == "" {
		params = "0"
	}
	fields := strings.Split(params, ";")
	i := 0
	for i < len(fields) {
		n, err := strconv.Atoi(fields[i])
		if err != nil {
			i++
			continue
		}
		switch {
		case n == 0:
			state = ColorState{}
		case n == 1:
			state.Bold = true
		case n == 4:
			state.Underline = true
		case n == 5:
			state.Flash = true
		case n == 7:
			state.Inverse = true
		case n == 22:
			state.Bold = false
		case n == 24:
			state.Underline = false
		case n == 25:
			state.Flash = false
		case n == 27:
			state.Inverse = false
		case n == 39:
			state.FG = ColorChannel{Status: chanReset}
		case n == 49:
			state.BG = ColorChannel{Status: chanReset}
		case n >= 30 && n <= 37:
			state.FG = ColorChannel{Status: chan16, Idx16: n - 30}
		case n >= 90 && n <= 97:
			state.FG = ColorChannel{Status: chan16, Idx16: n - 90 + 8}
		case n >= 40 && n <= 47:
			state.BG = ColorChannel{Status: chan16, Idx16: n - 40}
		case n >= 100 && n <= 107:
			state.BG = ColorChannel{Status: chan16, Idx16: n - 100 + 8}
		case n == 38 || n == 48:
			isBG := n == 48
			if i+1 < len(fields) {
				mode, _ := strconv.Atoi(fields[i+1])
				switch mode {
				case 5:
					if i+2 < len(fields) {
						idx, _ := strconv.Atoi(fields[i+2])
						ch := ColorChannel{Status: chan256, Idx256: idx}
						if isBG {
							state.BG = ch
						} else {
							state.FG = ch
						}
						i += 2
					}
				case 2:
					if i+4 < len(fields) {
						r, _ := strconv.Atoi(fields[i+2])
						g, _ := strconv.Atoi(fields[i+3])
						b, _ := strconv.Atoi(fields[i+4])
						ch := ColorChannel{Status: chanTrue, RGB: [3]byte{byte(r), byte(g), byte(b)}}
						if isBG {
							state.BG = ch
						} else {
							state.FG = ch
						}
						i += 4
					}
				}
			}
		}
		i++
	}
	return state
}

// Transition returns the minimal SGR escape sequence that moves the
// rendering cursor from state `from` to state `to` at the given depth,
// or nil if no bytes are needed. Both states are downgraded to depth
// before comparison, so Transition(s, s, depth, noBleed) is always nil.
//
// When noBleed is set, a full reset ("0") is rewritten to explicitly
// reassert a default foreground ("39") right after it, so a terminal
// that only partially clears its background on a bare reset doesn't
// carry that background onto the next line.
func Transition(from, to ColorState, depth ColorDepth, noBleed bool) []byte {
	if depth == DepthNone {
		return nil
	}
	from = from.Downgrade(depth)
	to = to.Downgrade(depth)
	if from == to {
		return nil
	}

	var params []string
	if to == (ColorState{}) && from != (ColorState{}) {
		params = append(params, "0")
		if noBleed {
			if fg := encodeChannel(to.FG, false); fg != nil {
				params = append(params, fg...)
			} else {
				params = append(params, "39")
			}
		}
	} else {
		if from.Bold && !to.Bold {
			params = append(params, "22")
		} else if !from.Bold && to.Bold {
			params = append(params, "1")
		}
		if from.Underline && !to.Underline {
			params = append(params, "24")
		} else if !from.Underline && to.Underline {
			params = append(params, "4")
		}
		if from.Inverse && !to.Inverse {
			params = append(params, "27")
		} else if !from.Inverse && to.Inverse {
			params = append(params, "7")
		}
		if from.Flash && !to.Flash {
			params = append(params, "25")
		} else if !from.Flash && to.Flash {
			params = append(params, "5")
		}
		if from.FG != to.FG {
			params = append(params, encodeChannel(to.FG, false)...)
		}
		if from.BG != to.BG {
			params = append(params, encodeChannel(to.BG, true)...)
		}
	}

	if len(params) == 0 {
		return nil
	}
	return []byte(csi + strings.Join(params, ";") + "m")
}

func encodeChannel(ch ColorChannel, bg bool) []string {
	switch ch.Status {
	case chanUnset:
		return nil
	case chanReset:
		if bg {
			return []string{"49"}
		}
		return []string{"39"}
	case chan16:
		base := 30
		idx := ch.Idx16
		if idx >= 8 {
			base = 90
			idx -= 8
		}
		if bg {
			base += 10
		}
		return []string{strconv.Itoa(base + idx)}
	case chan256:
		if bg {
			return []string{"48", "5", strconv.Itoa(ch.Idx256)}
		}
		return []string{"38", "5", strconv.Itoa(ch.Idx256)}
	case chanTrue:
		if bg {
			return []string{"48", "2", strconv.Itoa(int(ch.RGB[0])), strconv.Itoa(int(ch.RGB[1])), strconv.Itoa(int(ch.RGB[2]))}
		}
		return []string{"38", "2", strconv.Itoa(int(ch.RGB[0])), strconv.Itoa(int(ch.RGB[1])), strconv.Itoa(int(ch.RGB[2]))}
	}
	return nil
}

// Render re-renders text (which may already contain full-fidelity SGR
// color escapes, as emitted by the evaluator) at the given depth,
// collapsing consecutive spans with identical downgraded state and
// stripping everything when depth is DepthNone. When noBleed is set,
// every reset to the zero state reasserts a default foreground
// afterward (see Transition) — the NO_BLEED flag's behavior.
func Render(text string, depth ColorDepth, noBleed bool) string {
	plain, spans := ParseEmbedded(text)
	if depth == DepthNone || len(spans) == 0 {
		return plain
	}

	var out strings.Builder
	state := ColorState{}
	for _, span := range spans {
		if t := Transition(state, span.State, depth, noBleed); t != nil {
			out.Write(t)
		}
		out.WriteString(plain[span.Start:span.End])
		state = span.State.Downgrade(depth)
	}
	if t := Transition(state, ColorState{}, depth, noBleed); t != nil {
		out.Write(t)
	}
	return out.String()
}

// StripLen returns the visible length of text with all SGR escapes
// removed — the width a terminal would actually render, used for
// column padding and line-wrap accounting.
func StripLen(text string) int {
	plain, _ := ParseEmbedded(text)
	return len(plain)
}

// ParseSpec renders a `%x<spec>` / `%x/<spec>` extended color spec (a
// decimal xterm 256-color index or a "#RRGGBB" truecolor hex value)
// into a full-fidelity SGR escape string. The evaluator always emits
// at full fidelity; depth-aware downgrading happens later, when the
// descriptor renders the finished line via Render.
func ParseSpec(spec string, bg bool) string {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return ""
	}
	if spec[0] == '#' {
		hex := spec[1:]
		if len(hex) != 6 {
			return ""
		}
		r, err1 := strconv.ParseUint(hex[0:2], 16, 8)
		g, err2 := strconv.ParseUint(hex[2:4], 16, 8)
		b, err3 := strconv.ParseUint(hex[4:6], 16, 8)
		if err1 != nil || err2 != nil || err3 != nil {
			return ""
		}
		if bg {
			return csi + "48;2;" + strconv.FormatUint(r, 10) + ";" + strconv.FormatUint(g, 10) + ";" + strconv.FormatUint(b, 10) + "m"
		}
		return csi + "38;2;" + strconv.FormatUint(r, 10) + ";" + strconv.FormatUint(g, 10) + ";" + strconv.FormatUint(b, 10) + "m"
	}
	if n, err := strconv.Atoi(spec); err == nil && n >= 0 && n <= 255 {
		if bg {
			return csi + "48;5;" + strconv.Itoa(n) + "m"
		}
		return csi + "38;5;" + strconv.Itoa(n) + "m"
	}
	return ""
}
