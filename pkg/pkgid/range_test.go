package pkgid

import "testing"

func TestParseRangeContains(t *testing.T) {
	tests := []struct {
		rangeStr string
		version  string
		want     bool
	}{
		{"*", "0.0.1", true},
		{"^1.2.0", "1.2.5", true},
		{"^1.2.0", "1.1.0", false},
		{"^1.2.0", "2.0.0", false},
		{"^0.2.0", "0.2.9", true},
		{"^0.2.0", "0.3.0", false},
		{"~1.2.0", "1.2.9", true},
		{"~1.2.0", "1.3.0", false},
		{"==1.2.3", "1.2.3", true},
		{"==1.2.3", "1.2.4", false},
		{">=1.0.0, <2.0.0", "1.5.0", true},
		{">=1.0.0, <2.0.0", "2.0.0", false},
		{"1.2.3", "1.2.9", true},
	}
	for _, tt := range tests {
		t.Run(tt.rangeStr+"_"+tt.version, func(t *testing.T) {
			r, err := ParseRange(tt.rangeStr)
			if err != nil {
				t.Fatalf("ParseRange(%q): %v", tt.rangeStr, err)
			}
			v, err := ParseVersion(tt.version)
			if err != nil {
				t.Fatalf("ParseVersion(%q): %v", tt.version, err)
			}
			if got := r.Contains(v); got != tt.want {
				t.Errorf("%s.Contains(%s) = %v, want %v", tt.rangeStr, tt.version, got, tt.want)
			}
		})
	}
}

func TestParseRangeInvalid(t *testing.T) {
	if _, err := ParseRange("^not-a-version"); err == nil {
		t.Error("expected error for malformed range")
	}
}
