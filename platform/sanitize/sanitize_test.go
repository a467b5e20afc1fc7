package sanitize

import "testing"

func TestText(t *testing.T) {
	cases := []struct{ in, want string }{
		{in: "  plain  ", want: "plain"},
		{in: "<b>bold</b> move", want: "bold move"},
		{in: "&lt;script&gt;alert(1)&lt;/script&gt;", want: "alert(1)"},
		{in: "line one\nline two", want: "line one\nline two"},
	}
	for _, tc := range cases {
		if got := Text(tc.in); got != tc.want {
			t.Errorf("Text(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestLineCollapsesWhitespace(t *testing.T) {
	if got := Line("Sunrise \n  Agro\tFarms"); got != "Sunrise Agro Farms" {
		t.Fatalf("unexpected %q", got)
	}
}

func TestPtrHelpers(t *testing.T) {
	if TextPtr(nil) != nil || LinePtr(nil) != nil {
		t.Fatal("nil in must give nil out")
	}
	v := " <i>x</i> "
	if got := *LinePtr(&v); got != "x" {
		t.Fatalf("unexpected %q", got)
	}
}
