// Package transcript holds the accumulated transcription state: an ordered
// list of timed segments plus the flattened display text derived from them.
package transcript

import "strings"

// Segment is a timed span of transcribed text. Offsets are in seconds from
// the start of the source audio, with 0 <= Start <= End.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Transcript accumulates segments in arrival order. The flattened text is
// derived from the segments as they arrive but can be edited independently:
// editing changes only the text, never the segment list, so caption exports
// always reflect the original transcription.
type Transcript struct {
	segments []Segment
	text     string
}

// Flatten joins the trimmed segment texts with single spaces.
func Flatten(segments []Segment) string {
	parts := make([]string, 0, len(segments))
	for _, seg := range segments {
		if t := strings.TrimSpace(seg.Text); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

// Append adds newly received segments to the end of the list, in the order
// given, and appends their flattened text to the display text with a
// separating space when prior text exists. Segments are never re-sorted
// across appends; arrival order is the document order.
func (t *Transcript) Append(segments []Segment) {
	if len(segments) == 0 {
		return
	}
	t.segments = append(t.segments, segments...)

	chunk := Flatten(segments)
	if chunk == "" {
		return
	}
	if t.text != "" {
		t.text += " " + chunk
	} else {
		t.text = chunk
	}
}

// Text returns the flattened display text.
func (t *Transcript) Text() string {
	return t.text
}

// SetText replaces the display text without touching the segment list.
func (t *Transcript) SetText(text string) {
	t.text = text
}

// Segments returns a copy of the segment list.
func (t *Transcript) Segments() []Segment {
	out := make([]Segment, len(t.segments))
	copy(out, t.segments)
	return out
}

// Len reports the number of accumulated segments.
func (t *Transcript) Len() int {
	return len(t.segments)
}

// Reset discards all segments and text.
func (t *Transcript) Reset() {
	t.segments = nil
	t.text = ""
}
