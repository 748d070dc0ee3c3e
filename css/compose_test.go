package css_test

import (
	"testing"

	"fjc/css"
)

func ptr(v float64) *float64 { return &v }

func TestCompose_Order(t *testing.T) {
	red := css.Color{R: 1, A: 1}
	st := css.Style{
		Absolute:     true,
		X:            ptr(10),
		Y:            ptr(20),
		Width:        ptr(100),
		Height:       ptr(50.256),
		Background:   &red,
		Border:       &css.Border{Width: 1, Color: &css.Color{A: 1}},
		BorderRadius: ptr(4),
		ClipContent:  true,
		Opacity:      ptr(0.5),
		Layout:       css.LayoutColumn,
		Gap:          ptr(8),
		Padding:      &css.Padding{Top: 1, Right: 2, Bottom: 3, Left: 4},
		AlignItems:   css.AlignCenter,
		FontSize:     ptr(14),
	}

	want := "position: absolute; top: 20px; left: 10px; width: 100px; height: 50.26px; " +
		"background-color: #ff0000; border: 1px solid #000000; border-radius: 4px; overflow: hidden; " +
		"opacity: 0.5; display: flex; flex-direction: column; gap: 8px; padding: 1px 2px 3px 4px; " +
		"align-items: center; box-sizing: border-box; font-size: 14px;"
	if got := css.Compose(st); got != want {
		t.Errorf("Compose() =\n%s\nwant\n%s", got, want)
	}
}

func TestCompose_Empty(t *testing.T) {
	if got := css.Compose(css.Style{}); got != "" {
		t.Errorf("Compose(empty) = %q", got)
	}
	if !(css.Style{}).IsZero() {
		t.Error("empty style must be zero")
	}
}

func TestCompose_RoundTrip(t *testing.T) {
	r := css.NewResolver(nil)
	in := "width: 320px; height: 200px; background-color: #eeeeee; border-radius: 12px; display: flex; flex-direction: row; gap: 16px; padding: 8px 8px 8px 8px; justify-content: space-between; box-sizing: border-box;"

	st, ws := r.Resolve(in)
	if len(ws) != 0 {
		t.Fatalf("unexpected warnings: %v", ws)
	}
	out := css.Compose(st)
	if out != in {
		t.Fatalf("round trip mismatch:\n%s\n%s", in, out)
	}

	again, _ := r.Resolve(out)
	if css.Compose(again) != out {
		t.Fatal("second round trip is not stable")
	}
}

func TestCompose_TextTruncation(t *testing.T) {
	st := css.Style{Ellipsis: true, MaxLines: 2}
	want := "overflow: hidden; text-overflow: ellipsis; display: -webkit-box; -webkit-line-clamp: 2; -webkit-box-orient: vertical;"
	if got := css.Compose(st); got != want {
		t.Errorf("Compose() = %q, want %q", got, want)
	}
}
