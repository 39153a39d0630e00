package staffname

import "testing"

func TestNormalizeStripsTitles(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Dr. Anna Maier", "Anna Maier"},
		{"dr anna maier", "anna maier"},
		{"Mag. Markus Winter", "Markus Winter"},
		{"Prof. Dr. Eva Steiner", "Eva Steiner"},
		{"  Julia   Brandt  ", "Julia Brandt"},
		{"Thomas Keller", "Thomas Keller"},
		{"", ""},
		{"Dr.", ""},
	}

	for _, tc := range cases {
		if got := Normalize(tc.in); got != tc.want {
			t.Errorf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestEqualMatchesBareAndTitledForms(t *testing.T) {
	if !Equal("Dr. Anna Maier", "anna maier") {
		t.Error("titled and bare forms of the same name should match")
	}
	if Equal("Anna Maier", "Anna Mair") {
		t.Error("different names must not match")
	}
}

func TestInitials(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Anna Maier", "AM"},
		{"Dr. Eva Steiner", "ES"},
		{"Cher", "C"},
		{"", "XX"},
	}

	for _, tc := range cases {
		if got := Initials(tc.in); got != tc.want {
			t.Errorf("Initials(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
