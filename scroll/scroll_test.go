package scroll

import "testing"

func TestSyncMoveToHalf(t *testing.T) {
	in := View{Offset: 3, Height: 10, Total: 100}
	out := View{Offset: 80, Height: 10, Total: 100}

	cmd, err := ParseArgs("moveto", "0.5")
	if err != nil {
		t.Fatalf("ParseArgs: %v", err)
	}
	gotIn, gotOut := Sync(cmd, in, out)
	if gotIn != gotOut {
		t.Fatalf("expected identical views, got %+v and %+v", gotIn, gotOut)
	}
	if gotIn.Fraction() != 0.5 {
		t.Fatalf("expected fraction 0.5, got %v", gotIn.Fraction())
	}
}

func TestApplyClamps(t *testing.T) {
	v := View{Offset: 0, Height: 10, Total: 25}
	if got := Apply(MoveTo(1), v); got.Offset != 15 || !got.AtEnd() {
		t.Fatalf("expected moveto 1 to clamp at max offset 15, got %+v", got)
	}
	if got := Apply(MoveTo(-2), v); got.Offset != 0 {
		t.Fatalf("expected negative fraction to clamp to 0, got %d", got.Offset)
	}
	if got := Apply(By(-3, Units), v); got.Offset != 0 {
		t.Fatalf("expected scroll above start to clamp, got %d", got.Offset)
	}
	short := View{Height: 10, Total: 4}
	if got := Apply(By(5, Pages), short); got.Offset != 0 {
		t.Fatalf("expected short content to stay at 0, got %d", got.Offset)
	}
}

func TestApplyRelative(t *testing.T) {
	v := View{Offset: 10, Height: 11, Total: 200}
	if got := Apply(By(2, Units), v); got.Offset != 12 {
		t.Fatalf("expected 2 units to move 2 rows, got %d", got.Offset)
	}
	if got := Apply(By(-1, Pages), v); got.Offset != 0 {
		t.Fatalf("expected one page up (10 rows) to reach 0, got %d", got.Offset)
	}
	if got := Apply(By(1, Pages), v); got.Offset != 20 {
		t.Fatalf("expected one page down to reach 20, got %d", got.Offset)
	}
}

func TestParseArgs(t *testing.T) {
	cases := []struct {
		args []string
		want Command
		ok   bool
	}{
		{[]string{"moveto", "0.25"}, MoveTo(0.25), true},
		{[]string{"scroll", "-1", "units"}, By(-1, Units), true},
		{[]string{"scroll", "3", "pages"}, By(3, Pages), true},
		{[]string{"moveto"}, Command{}, false},
		{[]string{"moveto", "half"}, Command{}, false},
		{[]string{"scroll", "1", "lines"}, Command{}, false},
		{[]string{"jump", "1"}, Command{}, false},
		{nil, Command{}, false},
	}
	for _, tc := range cases {
		got, err := ParseArgs(tc.args...)
		if tc.ok && err != nil {
			t.Fatalf("ParseArgs(%v) unexpected error: %v", tc.args, err)
		}
		if !tc.ok {
			if err == nil {
				t.Fatalf("ParseArgs(%v) expected an error", tc.args)
			}
			continue
		}
		if got != tc.want {
			t.Fatalf("ParseArgs(%v) = %+v, want %+v", tc.args, got, tc.want)
		}
	}
}

func TestSliderFraction(t *testing.T) {
	if got := SliderFraction(500, 1000); got != 0.5 {
		t.Fatalf("expected 0.5, got %v", got)
	}
	if got := SliderFraction(2000, 1000); got != 1 {
		t.Fatalf("expected clamp to 1, got %v", got)
	}
	if got := SliderFraction(10, 0); got != 0 {
		t.Fatalf("expected 0 for zero steps, got %v", got)
	}
}
