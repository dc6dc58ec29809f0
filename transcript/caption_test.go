package transcript

import (
	"strings"
	"testing"
)

func TestFormatTimestamp(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{0, "00:00:00,000"},
		{1.5, "00:00:01,500"},
		{65.125, "00:01:05,125"},
		{3600, "01:00:00,000"},
		{7200.5, "02:00:00,500"},
		{90061.25, "25:01:01,250"}, // hours keep counting past a day
	}

	for _, tt := range tests {
		got := FormatTimestamp(tt.seconds)
		if got != tt.want {
			t.Errorf("FormatTimestamp(%v) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestFormatTimestampTruncatesMillis(t *testing.T) {
	// 2.9995 must floor to 999, never round up into the next second.
	got := FormatTimestamp(2.9995)
	if got != "00:00:02,999" {
		t.Errorf("FormatTimestamp(2.9995) = %q, want 00:00:02,999", got)
	}
}

func TestGenerateSRT(t *testing.T) {
	t.Run("single segment", func(t *testing.T) {
		got := GenerateSRT([]Segment{{Start: 0, End: 1.5, Text: "Hi"}})
		want := "1\n00:00:00,000 --> 00:00:01,500\nHi\n"
		if got != want {
			t.Errorf("GenerateSRT = %q, want %q", got, want)
		}
	})

	t.Run("blocks separated by blank lines", func(t *testing.T) {
		got := GenerateSRT([]Segment{
			{Start: 0, End: 1.5, Text: " Hello "},
			{Start: 1.5, End: 3, Text: "world"},
		})
		want := "1\n00:00:00,000 --> 00:00:01,500\nHello\n" +
			"\n2\n00:00:01,500 --> 00:00:03,000\nworld\n"
		if got != want {
			t.Errorf("GenerateSRT = %q, want %q", got, want)
		}
	})

	t.Run("empty input", func(t *testing.T) {
		if got := GenerateSRT(nil); got != "" {
			t.Errorf("GenerateSRT(nil) = %q, want empty", got)
		}
	})
}

func TestGenerateVTT(t *testing.T) {
	segments := []Segment{
		{Start: 0, End: 1.5, Text: "Hi"},
		{Start: 1.5, End: 3, Text: "there"},
	}

	got := GenerateVTT(segments)

	if !strings.HasPrefix(got, "WEBVTT\n\n") {
		t.Errorf("GenerateVTT output missing WEBVTT header: %q", got)
	}
	want := "WEBVTT\n\n00:00:00.000 --> 00:00:01.500\nHi\n" +
		"\n00:00:01.500 --> 00:00:03.000\nthere\n"
	if got != want {
		t.Errorf("GenerateVTT = %q, want %q", got, want)
	}
	if strings.Contains(got, ",") {
		t.Errorf("GenerateVTT output contains comma timestamps: %q", got)
	}
}

func TestGenerateVTTEmpty(t *testing.T) {
	if got := GenerateVTT(nil); got != "WEBVTT\n\n" {
		t.Errorf("GenerateVTT(nil) = %q, want header only", got)
	}
}

func TestGenerateTimestampedText(t *testing.T) {
	got := GenerateTimestampedText(
		[]Segment{{Start: 0, End: 2, Text: " Hello "}},
	)
	want := "[00:00:00 - 00:00:02] Hello"
	if got != want {
		t.Errorf("GenerateTimestampedText = %q, want %q", got, want)
	}
}

func TestGenerateTimestampedTextMultiline(t *testing.T) {
	got := GenerateTimestampedText([]Segment{
		{Start: 0, End: 2, Text: "one"},
		{Start: 2.75, End: 65.125, Text: "two"},
	})
	want := "[00:00:00 - 00:00:02] one\n[00:00:02 - 00:01:05] two"
	if got != want {
		t.Errorf("GenerateTimestampedText = %q, want %q", got, want)
	}
}

func TestFormattersAreIdempotent(t *testing.T) {
	segments := []Segment{
		{Start: 0.25, End: 1.75, Text: "alpha"},
		{Start: 1.75, End: 4, Text: "beta"},
	}

	if GenerateSRT(segments) != GenerateSRT(segments) {
		t.Error("GenerateSRT not stable across calls")
	}
	if GenerateVTT(segments) != GenerateVTT(segments) {
		t.Error("GenerateVTT not stable across calls")
	}
	if GenerateTimestampedText(segments) != GenerateTimestampedText(segments) {
		t.Error("GenerateTimestampedText not stable across calls")
	}
}
