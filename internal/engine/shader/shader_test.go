package shader

import "testing"

func TestTrimLog(t *testing.T) {
	tests := map[string]string{
		"0:3(1): error: syntax\n\x00": "0:3(1): error: syntax",
		"\x00":                        "",
		"ok":                          "ok",
	}
	for in, want := range tests {
		if got := trimLog([]byte(in)); got != want {
			t.Errorf("trimLog(%q) = %q, want %q", in, got, want)
		}
	}
}
