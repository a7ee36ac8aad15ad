package document

import "testing"

func TestJoinBlocks(t *testing.T) {
	blocks := []TextBlock{
		{Text: "one"},
		{Text: "two"},
		{Text: "\n"},
		{Text: "three"},
	}
	want := "one\ntwo\n\n\nthree"
	if got := JoinBlocks(blocks); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
	if got := JoinBlocks(nil); got != "" {
		t.Errorf("expected empty string for nil blocks, got %q", got)
	}
}

func TestPageRange(t *testing.T) {
	blocks := []TextBlock{
		{Text: "a", Page: 3},
		{Text: "b", Page: 0}, // unpaged blocks are ignored
		{Text: "c", Page: 7},
		{Text: "d", Page: 2},
	}
	start, end := PageRange(blocks)
	if start != 2 || end != 7 {
		t.Errorf("expected range 2-7, got %d-%d", start, end)
	}

	start, end = PageRange([]TextBlock{{Text: "x"}})
	if start != 0 || end != 0 {
		t.Errorf("expected 0-0 for unpaged blocks, got %d-%d", start, end)
	}
}

func TestMaxPage(t *testing.T) {
	blocks := []TextBlock{
		{Page: 1}, {Page: 5}, {Page: 3},
	}
	if got := MaxPage(blocks); got != 5 {
		t.Errorf("expected 5, got %d", got)
	}
	if got := MaxPage(nil); got != 0 {
		t.Errorf("expected 0 for nil blocks, got %d", got)
	}
}
