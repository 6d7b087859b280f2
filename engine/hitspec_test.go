package engine

import "testing"

func TestHitSpecOK(t *testing.T) {
	cases := []struct {
		spec string
		hits int
		want bool
	}{
		{"", 0, true},
		{"", 100, true},
		{"==3", 3, true},
		{"==3", 2, false},
		{"==3", 4, false},
		{">=3", 3, true},
		{">=3", 10, true},
		{">=3", 2, false},
		{"multiple-of(3)", 6, true},
		{"multiple-of(3)", 5, false},
		{"multiple-of(0)", 5, false},
		{"bogus", 1, false},
		{"== 3", 3, false},
	}
	for _, c := range cases {
		if got := HitSpecOK(c.spec, c.hits); got != c.want {
			t.Errorf("HitSpecOK(%q, %d) = %v, want %v", c.spec, c.hits, got, c.want)
		}
	}
}

func TestValidateHitSpec(t *testing.T) {
	valid := []string{"", "==0", "==10", ">=0", "multiple-of(2)"}
	for _, s := range valid {
		if err := validateHitSpec(s); err != nil {
			t.Errorf("validateHitSpec(%q) = %v, want nil", s, err)
		}
	}
	invalid := []string{"==", ">=", "multiple-of(0)", "multiple-of(-1)", "== 3", "junk"}
	for _, s := range invalid {
		if err := validateHitSpec(s); err == nil {
			t.Errorf("validateHitSpec(%q) = nil, want error", s)
		}
	}
}

func TestParseNonNegativeInt(t *testing.T) {
	if n, ok := parseNonNegativeInt("42"); !ok || n != 42 {
		t.Errorf("parseNonNegativeInt(42) = %d, %v", n, ok)
	}
	for _, s := range []string{"", "-1", " 1", "1 ", "1.0", "abc"} {
		if _, ok := parseNonNegativeInt(s); ok {
			t.Errorf("parseNonNegativeInt(%q) unexpectedly ok", s)
		}
	}
}
