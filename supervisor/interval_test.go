package supervisor

import "testing"

func TestParseInterval(t *testing.T) {
	cases := []struct {
		expr    string
		want    int
		wantErr bool
	}{
		{"1h30m", 5400, false},
		{"45s", 45, false},
		{"", 0, true},
		{"2x", 0, true},
		{"1h1x", 0, true},
		{"1d", 86400, false},
		{"0s", 0, true},
	}

	for _, c := range cases {
		got, err := ParseInterval(c.expr)
		if c.wantErr {
			if err == nil {
				t.Errorf("ParseInterval(%q) = %d, nil; want error", c.expr, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseInterval(%q) unexpected error: %v", c.expr, err)
			continue
		}
		if got != c.want {
			t.Errorf("ParseInterval(%q) = %d, want %d", c.expr, got, c.want)
		}
	}
}
