package formula

import "testing"

func TestParsePrecedence(t *testing.T) {
	n, err := Parse("a & b | !c")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := Or{Left: And{Left: Prop{"a"}, Right: Prop{"b"}}, Right: Not{Prop{"c"}}}
	if !Equal(n, want) {
		t.Fatalf("Parse(%q) = %v, want %v", "a & b | !c", n, want)
	}
}

func TestParseEP(t *testing.T) {
	n, err := Parse("EP(request) & EP(response)")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := And{Left: EP{Prop{"request"}}, Right: EP{Prop{"response"}}}
	if !Equal(n, want) {
		t.Fatalf("Parse() = %v, want %v", n, want)
	}
}

func TestParseCaseInsensitiveKeywords(t *testing.T) {
	n, err := Parse("true & ep(x)")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := And{Left: True{}, Right: EP{Prop{"x"}}}
	if !Equal(n, want) {
		t.Fatalf("Parse() = %v, want %v", n, want)
	}
}

func TestParseErrors(t *testing.T) {
	cases := []string{
		"(a & b",
		"a &",
		"& a",
		"EP()",
		"a && b",
		"",
	}
	for _, src := range cases {
		if _, err := Parse(src); err == nil {
			t.Errorf("Parse(%q) succeeded, want SyntaxError", src)
		} else if _, ok := err.(*SyntaxError); !ok {
			t.Errorf("Parse(%q) error = %T, want *SyntaxError", src, err)
		}
	}
}

func TestParseRoundTrip(t *testing.T) {
	srcs := []string{
		"a",
		"!a",
		"a & b",
		"a | b",
		"EP(a & b)",
		"!EP(a) & b | c",
		"(a | b) & c",
	}
	for _, src := range srcs {
		n, err := Parse(src)
		if err != nil {
			t.Fatalf("Parse(%q): %v", src, err)
		}
		reparsed, err := Parse(Print(n))
		if err != nil {
			t.Fatalf("Parse(Print(%q)): %v", src, err)
		}
		if !Equal(n, reparsed) {
			t.Errorf("round trip mismatch for %q: %v != %v", src, n, reparsed)
		}
	}
}
