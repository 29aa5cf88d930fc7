package color

import "testing"

func TestTransitionIdentity(t *testing.T) {
	states := []ColorState{
		{},
		{Bold: true},
		{FG: ColorChannel{Status: chan16, Idx16: 1}},
		{FG: ColorChannel{Status: chanTrue, RGB: [3]byte{10, 200, 30}}, Bold: true, Underline: true},
	}
	for _, depth := range []ColorDepth{DepthNone, Depth16, Depth256, DepthTrue} {
		for _, s := range states {
			for _, noBleed := range []bool{false, true} {
				if got := Transition(s, s, depth, noBleed); got != nil {
					t.Errorf("Transition(s, s, %v, %v) = %q, want nil", depth, noBleed, got)
				}
			}
		}
	}
}

func TestParseSpecHex(t *testing.T) {
	got := ParseSpec("#FF0000", false)
	want := "\033[38;2;255;0;0m"
	if got != want {
		t.Errorf("ParseSpec(#FF0000) = %q, want %q", got, want)
	}
}

func TestParseSpec256(t *testing.T) {
	got := ParseSpec("208", true)
	want := "\033[48;5;208m"
	if got != want {
		t.Errorf("ParseSpec(208, bg) = %q, want %q", got, want)
	}
}

func TestParseSpecInvalid(t *testing.T) {
	if got := ParseSpec("not-a-color", false); got != "" {
		t.Errorf("ParseSpec(invalid) = %q, want empty", got)
	}
}

func TestRenderStripsAtDepthNone(t *testing.T) {
	text := "\033[1m\033[38;5;196mred alert\033[0m plain"
	got := Render(text, DepthNone, false)
	want := "red alert plain"
	if got != want {
		t.Errorf("Render(DepthNone) = %q, want %q", got, want)
	}
}

func TestRenderDowngradesTrueTo16(t *testing.T) {
	text := "\033[38;2;255;0;0mred\033[0m"
	got := Render(text, Depth16, false)
	if got == text {
		t.Errorf("Render(Depth16) did not downgrade truecolor escape: %q", got)
	}
	plain, _ := ParseEmbedded(got)
	if plain != "red" {
		t.Errorf("Render(Depth16) plain text = %q, want %q", plain, "red")
	}
}

func TestRenderPassthroughAtTrueDepth(t *testing.T) {
	text := "\033[38;2;10;20;30mhi\033[0m"
	got := Render(text, DepthTrue, false)
	if got != text {
		t.Errorf("Render(DepthTrue) = %q, want passthrough %q", got, text)
	}
}

func TestStripLenIgnoresEscapes(t *testing.T) {
	text := "\033[1mhello\033[0m"
	if got := StripLen(text); got != 5 {
		t.Errorf("StripLen(%q) = %d, want 5", text, got)
	}
}

func TestParseEmbeddedSpans(t *testing.T) {
	text := "\033[31mred\033[0mplain"
	plain, spans := ParseEmbedded(text)
	if plain != "redplain" {
		t.Fatalf("plain = %q, want %q", plain, "redplain")
	}
	if len(spans) != 2 {
		t.Fatalf("len(spans) = %d, want 2", len(spans))
	}
	if spans[0].Start != 0 || spans[0].End != 3 {
		t.Errorf("spans[0] = %+v, want Start=0 End=3", spans[0])
	}
	if spans[0].State.FG.Idx16 != 1 {
		t.Errorf("spans[0].State.FG.Idx16 = %d, want 1", spans[0].State.FG.Idx16)
	}
	if spans[1].State != (ColorState{}) {
		t.Errorf("spans[1].State = %+v, want zero value", spans[1].State)
	}
}

func TestTransitionNoBleedReassertsForeground(t *testing.T) {
	from := ColorState{FG: ColorChannel{Status: chan16, Idx16: 1}}
	to := ColorState{}
	got := string(Transition(from, to, Depth16, true))
	want := "\033[0;39m"
	if got != want {
		t.Errorf("Transition(noBleed) = %q, want %q", got, want)
	}
	withoutNoBleed := string(Transition(from, to, Depth16, false))
	if withoutNoBleed != "\033[0m" {
		t.Errorf("Transition(no noBleed) = %q, want %q", withoutNoBleed, "\033[0m")
	}
}

func TestRenderNoBleedAppendsDefaultForegroundOnReset(t *testing.T) {
	text := "\033[31mred\033[0m"
	got := Render(text, Depth16, true)
	want := "\033[31mred\033[0;39m"
	if got != want {
		t.Errorf("Render(noBleed) = %q, want %q", got, want)
	}
}

func TestDepthFromFlags(t *testing.T) {
	cases := []struct {
		ansi, c256, trueC bool
		want              ColorDepth
	}{
		{false, false, false, DepthNone},
		{true, false, false, Depth16},
		{true, true, false, Depth256},
		{true, true, true, DepthTrue},
	}
	for _, c := range cases {
		if got := DepthFromFlags(c.ansi, c.c256, c.trueC); got != c.want {
			t.Errorf("DepthFromFlags(%v,%v,%v) = %v, want %v", c.ansi, c.c256, c.trueC, got, c.want)
		}
	}
}
