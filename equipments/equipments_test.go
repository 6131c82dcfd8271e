package equipments

import "testing"

func TestIsValidType(t *testing.T) {
	for _, v := range ValidTypes {
		if !IsValidType(v) {
			t.Errorf("%s should be valid", v)
		}
	}
	for _, v := range []string{"", "split_inverter", "NEVERA", "AIRE"} {
		if IsValidType(v) {
			t.Errorf("%s should be invalid", v)
		}
	}
}

func TestTypeLabel(t *testing.T) {
	cases := []struct {
		typ, custom, want string
	}{
		{"SPLIT_INVERTER", "", "Aire split (inverter)"},
		{"HELADERA", "", "Heladera"},
		{"OTRO", "Cava de vinos", "Cava de vinos"},
		{"OTRO", "", "Otro"},
		{"DESCONOCIDO", "", "DESCONOCIDO"},
	}
	for _, tc := range cases {
		if got := TypeLabel(tc.typ, tc.custom); got != tc.want {
			t.Errorf("TypeLabel(%q, %q) = %q, want %q", tc.typ, tc.custom, got, tc.want)
		}
	}
}
