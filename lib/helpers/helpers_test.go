package helpers

import "testing"

func TestFormatPriceUS(t *testing.T) {
	cases := []struct {
		price          float64
		escapeMarkdown bool
		want           string
	}{
		{104532.1, false, "104,532.10"},
		{2511.5, false, "2,511.50"},
		{144.3312, false, "144.3312"},
		{0.7345, false, "0.7345"},
		{1000, false, "1,000.00"},
		{999.99, false, "999.9900"},
		{2000, true, "2,000\\.00"},
	}

	for _, tc := range cases {
		if got := FormatPriceUS(tc.price, tc.escapeMarkdown); got != tc.want {
			t.Errorf("FormatPriceUS(%f, %t) = %q, want %q", tc.price, tc.escapeMarkdown, got, tc.want)
		}
	}
}

func TestEscapeMarkdownV2(t *testing.T) {
	got := EscapeMarkdownV2("a.b-c(d)")
	want := "a\\.b\\-c\\(d\\)"
	if got != want {
		t.Errorf("EscapeMarkdownV2 = %q, want %q", got, want)
	}
}
