package utils

import "testing"

func TestHumanReadableSize(t *testing.T) {
	tests := map[int64]string{
		-5:              "0 B",
		0:               "0 B",
		512:             "512 B",
		1023:            "1023 B",
		1024:            "1.00 KB",
		1536:            "1.50 KB",
		5 * 1024 * 1024: "5.00 MB",
		3 << 30:         "3.00 GB",
		2 << 40:         "2048.00 GB",
	}
	for in, want := range tests {
		if got := HumanReadableSize(in); got != want {
			t.Fatalf("Expected %q for %d, got %q", want, in, got)
		}
	}
}

func TestFontSet(t *testing.T) {
	if got := FontSet("x"); got != FONT_SETTINGS_PREFIX+"x"+FONT_SETTINGS_SUFFIX {
		t.Fatalf("Expected wrapped string, got %q", got)
	}
}
