package phone

import "testing"

func TestNormalizeWhatsApp(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"27821234567", "27821234567"},
		{"+27821234567", "27821234567"},
		{"+27 82 123 4567", "27821234567"},
		{"+27-82-123-4567", "27821234567"},
		{"  +27821234567  ", "27821234567"},
		{"4915112345678", "4915112345678"},
		{"", ""},
		// unparseable input passes through trimmed
		{"not-a-number", "not-a-number"},
		{" 123 ", "123"},
	}

	for _, tc := range cases {
		if got := NormalizeWhatsApp(tc.input); got != tc.want {
			t.Fatalf("NormalizeWhatsApp(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}
