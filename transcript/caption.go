package transcript

import (
	"fmt"
	"math"
	"strings"
)

// FormatTimestamp renders elapsed seconds as an SRT timestamp, HH:MM:SS,mmm.
// Milliseconds are truncated, not rounded. Hours are plain elapsed hours and
// keep counting past 23 for inputs longer than a day.
func FormatTimestamp(seconds float64) string {
	whole := math.Floor(seconds)
	millis := int(math.Floor((seconds - whole) * 1000))
	total := int64(whole)
	return fmt.Sprintf(
		"%02d:%02d:%02d,%03d",
		total/3600,
		total/60%60,
		total%60,
		millis,
	)
}

// formatTimestampVTT is the WebVTT variant, with a dot before the millis.
func formatTimestampVTT(seconds float64) string {
	return strings.Replace(FormatTimestamp(seconds), ",", ".", 1)
}

// formatClock renders elapsed seconds as HH:MM:SS, dropping the fraction.
func formatClock(seconds float64) string {
	ts := FormatTimestamp(seconds)
	return ts[:strings.IndexByte(ts, ',')]
}

// GenerateSRT renders segments as SubRip subtitles: a 1-based sequence
// number, a comma-decimal timing line, and the trimmed text per block,
// with blank lines between blocks. Empty input yields an empty string.
func GenerateSRT(segments []Segment) string {
	blocks := make([]string, len(segments))
	for i, seg := range segments {
		blocks[i] = fmt.Sprintf(
			"%d\n%s --> %s\n%s\n",
			i+1,
			FormatTimestamp(seg.Start),
			FormatTimestamp(seg.End),
			strings.TrimSpace(seg.Text),
		)
	}
	return strings.Join(blocks, "\n")
}

// GenerateVTT renders segments as WebVTT: the literal WEBVTT header, then
// dot-decimal timing lines without sequence numbers.
func GenerateVTT(segments []Segment) string {
	blocks := make([]string, len(segments))
	for i, seg := range segments {
		blocks[i] = fmt.Sprintf(
			"%s --> %s\n%s\n",
			formatTimestampVTT(seg.Start),
			formatTimestampVTT(seg.End),
			strings.TrimSpace(seg.Text),
		)
	}
	return "WEBVTT\n\n" + strings.Join(blocks, "\n")
}

// GenerateTimestampedText renders one "[HH:MM:SS - HH:MM:SS] text" line per
// segment, fractional seconds dropped.
func GenerateTimestampedText(segments []Segment) string {
	lines := make([]string, len(segments))
	for i, seg := range segments {
		lines[i] = fmt.Sprintf(
			"[%s - %s] %s",
			formatClock(seg.Start),
			formatClock(seg.End),
			strings.TrimSpace(seg.Text),
		)
	}
	return strings.Join(lines, "\n")
}
