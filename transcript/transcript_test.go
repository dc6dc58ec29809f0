package transcript

import "testing"

func TestAppendFlattensWithSpaces(t *testing.T) {
	var tr Transcript

	tr.Append([]Segment{
		{Start: 0, End: 1, Text: " Hello "},
		{Start: 1, End: 2, Text: "world."},
	})
	if got := tr.Text(); got != "Hello world." {
		t.Errorf("Text() = %q, want %q", got, "Hello world.")
	}

	tr.Append([]Segment{{Start: 2, End: 3, Text: "Again."}})
	if got := tr.Text(); got != "Hello world. Again." {
		t.Errorf("Text() = %q, want %q", got, "Hello world. Again.")
	}
	if tr.Len() != 3 {
		t.Errorf("Len() = %d, want 3", tr.Len())
	}
}

func TestAppendKeepsArrivalOrder(t *testing.T) {
	// Segments from a later upload may start earlier in time; they still
	// append after what is already there.
	var tr Transcript
	tr.Append([]Segment{{Start: 10, End: 12, Text: "later"}})
	tr.Append([]Segment{{Start: 0, End: 2, Text: "earlier"}})

	segs := tr.Segments()
	if len(segs) != 2 || segs[0].Text != "later" || segs[1].Text != "earlier" {
		t.Errorf("Segments() = %v, want arrival order preserved", segs)
	}
}

func TestSetTextLeavesSegmentsAlone(t *testing.T) {
	var tr Transcript
	tr.Append([]Segment{{Start: 0, End: 1, Text: "original"}})

	tr.SetText("hand edited")

	if tr.Text() != "hand edited" {
		t.Errorf("Text() = %q after edit", tr.Text())
	}
	segs := tr.Segments()
	if len(segs) != 1 || segs[0].Text != "original" {
		t.Errorf("Segments() changed by SetText: %v", segs)
	}
}

func TestResetClearsEverything(t *testing.T) {
	var tr Transcript
	tr.Append([]Segment{{Start: 0, End: 1, Text: "something"}})
	tr.SetText("edited")

	tr.Reset()

	if tr.Text() != "" || tr.Len() != 0 {
		t.Errorf("Reset left state behind: text=%q len=%d", tr.Text(), tr.Len())
	}
}

func TestSegmentsReturnsCopy(t *testing.T) {
	var tr Transcript
	tr.Append([]Segment{{Start: 0, End: 1, Text: "a"}})

	segs := tr.Segments()
	segs[0].Text = "mutated"

	if tr.Segments()[0].Text != "a" {
		t.Error("Segments() exposed internal slice")
	}
}

func TestFlattenSkipsEmptySegments(t *testing.T) {
	got := Flatten([]Segment{
		{Start: 0, End: 1, Text: "a"},
		{Start: 1, End: 2, Text: "   "},
		{Start: 2, End: 3, Text: "b"},
	})
	if got != "a b" {
		t.Errorf("Flatten = %q, want %q", got, "a b")
	}
}
