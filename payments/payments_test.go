package payments

import "testing"

func TestPriceFor(t *testing.T) {
	cases := []struct {
		code  string
		want  float64
		known bool
	}{
		{"FREE", 0, true},
		{"PRO", 9000, true},
		{"PRO_PLUS", 15000, true},
		{"ENTERPRISE", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, known := priceFor(tc.code)
		if got != tc.want || known != tc.known {
			t.Errorf("priceFor(%q) = (%v, %v), want (%v, %v)", tc.code, got, known, tc.want, tc.known)
		}
	}
}
