package utils

import "testing"

func TestFormatFare(t *testing.T) {
	v := 1250.5
	if got := FormatFare(&v); got != "Rs 1,250.50" {
		t.Fatalf("FormatFare = %q", got)
	}
	if got := FormatFare(nil); got != "-" {
		t.Fatalf("FormatFare(nil) = %q", got)
	}
	z := 45.0
	if got := FormatFare(&z); got != "Rs 45.00" {
		t.Fatalf("FormatFare = %q", got)
	}
}

func TestNormalizeSpace(t *testing.T) {
	if got := NormalizeSpace("  KG   Road "); got != "KG Road" {
		t.Fatalf("NormalizeSpace = %q", got)
	}
}

func TestSafeFilenamePart(t *testing.T) {
	if got := SafeFilenamePart("KG Road/East"); got != "KG_Road_East" {
		t.Fatalf("SafeFilenamePart = %q", got)
	}
	if got := SafeFilenamePart(""); got != "ALL" {
		t.Fatalf("SafeFilenamePart(\"\") = %q", got)
	}
}
