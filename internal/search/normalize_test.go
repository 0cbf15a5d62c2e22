package search

import "testing"

func TestNormalizeQuery(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Arsenal", "arsenal"},
		{"  The   MATRIX ", "the matrix"},
		{"Ｍａｔｒｉｘ", "matrix"}, // full-width forms fold under NFKC
		{"Straße", "strasse"},
		{"\t\n", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := NormalizeQuery(tt.in); got != tt.want {
				t.Errorf("NormalizeQuery(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
