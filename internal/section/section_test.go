package section

import (
	"strings"
	"testing"

	"github.com/dgallion1/docchunk/internal/document"
)

func block(text string) document.TextBlock {
	return document.TextBlock{Text: text, Style: "plain"}
}

func blank() document.TextBlock {
	return document.TextBlock{Text: "\n", Style: "blank"}
}

func detectOne(t *testing.T, text string) document.SectionBoundary {
	t.Helper()
	boundaries := DetectBoundaries([]document.TextBlock{block(text)})
	if len(boundaries) != 1 {
		t.Fatalf("expected 1 boundary for %q, got %d", text, len(boundaries))
	}
	return boundaries[0]
}

func TestDetectBoundaries_NumberedOutline(t *testing.T) {
	tests := []struct {
		text      string
		wantLevel int
	}{
		{"1. Introduction", 1},
		{"2.1 Scope of Work", 2},
		{"1.2.3 Requirements Overview", 3},
		{"1.2.3.4.5 Deep Nesting", 4}, // capped at 4
	}
	for _, tt := range tests {
		b := detectOne(t, tt.text)
		if b.Confidence != 0.9 {
			t.Errorf("%q: expected confidence 0.9, got %v", tt.text, b.Confidence)
		}
		if b.Level != tt.wantLevel {
			t.Errorf("%q: expected level %d, got %d", tt.text, tt.wantLevel, b.Level)
		}
	}
}

func TestDetectBoundaries_RomanAndLetterOutline(t *testing.T) {
	b := detectOne(t, "IV. Findings and Analysis")
	if b.Confidence != 0.85 || b.Level != 1 {
		t.Errorf("roman outline: expected (0.85, 1), got (%v, %d)", b.Confidence, b.Level)
	}

	b = detectOne(t, "B. Methodology")
	if b.Confidence != 0.8 || b.Level != 1 {
		t.Errorf("letter outline: expected (0.8, 1), got (%v, %d)", b.Confidence, b.Level)
	}
}

func TestDetectBoundaries_SectionWords(t *testing.T) {
	for _, text := range []string{
		"Section 3 Obligations of the Parties",
		"chapter iv remedies",
		"ARTICLE IX TERMINATION",
		"Part 2: Implementation",
	} {
		b := detectOne(t, text)
		if b.Confidence != 0.95 {
			t.Errorf("%q: expected confidence 0.95, got %v", text, b.Confidence)
		}
	}
}

func TestDetectBoundaries_AllCapsHeuristic(t *testing.T) {
	b := detectOne(t, "EXECUTIVE SUMMARY")
	if b.Confidence != 0.7 || b.Level != 1 {
		t.Errorf("all-caps: expected (0.7, 1), got (%v, %d)", b.Confidence, b.Level)
	}

	// Single word: not enough evidence.
	if got := DetectBoundaries([]document.TextBlock{block("SUMMARY")}); len(got) != 0 {
		t.Errorf("single all-caps word: expected no boundary, got %d", len(got))
	}

	// Table markers are never headers.
	if got := DetectBoundaries([]document.TextBlock{block("[TABLE] A | B")}); len(got) != 0 {
		t.Errorf("table marker: expected no boundary, got %d", len(got))
	}

	// Long lines are never headers.
	long := strings.ToUpper(strings.Repeat("LOUD WORDS ", 20))
	if got := DetectBoundaries([]document.TextBlock{block(long)}); len(got) != 0 {
		t.Errorf("long all-caps line: expected no boundary, got %d", len(got))
	}
}

func TestDetectBoundaries_BlankGap(t *testing.T) {
	blocks := []document.TextBlock{
		block("some regular paragraph text."),
		blank(), blank(), blank(),
		block("another paragraph that follows a long gap."),
	}
	boundaries := DetectBoundaries(blocks)
	if len(boundaries) != 1 {
		t.Fatalf("expected 1 boundary, got %d", len(boundaries))
	}
	if boundaries[0].Confidence != 0.3 || boundaries[0].Index != 4 {
		t.Errorf("blank gap: expected (0.3, index 4), got (%v, index %d)",
			boundaries[0].Confidence, boundaries[0].Index)
	}
}

func TestDetectBoundaries_BlankRunResetByText(t *testing.T) {
	// Two blanks, text, two blanks: the run never reaches three.
	blocks := []document.TextBlock{
		block("first paragraph."),
		blank(), blank(),
		block("second paragraph."),
		blank(), blank(),
		block("third paragraph."),
	}
	if got := DetectBoundaries(blocks); len(got) != 0 {
		t.Errorf("expected no boundaries, got %d", len(got))
	}
}

func TestDetectBoundaries_ExtractionMarkedHeading(t *testing.T) {
	blocks := []document.TextBlock{
		{Text: "## Getting Started", Style: "markdown", HeadingLevel: 2, Confidence: 1.0},
	}
	boundaries := DetectBoundaries(blocks)
	if len(boundaries) != 1 {
		t.Fatalf("expected 1 boundary, got %d", len(boundaries))
	}
	b := boundaries[0]
	if b.Heading != "Getting Started" {
		t.Errorf("expected heading %q, got %q", "Getting Started", b.Heading)
	}
	if b.Level != 2 || b.Confidence != 1.0 {
		t.Errorf("expected (level 2, conf 1.0), got (%d, %v)", b.Level, b.Confidence)
	}
}

func TestDetectBoundaries_OnePerBlock(t *testing.T) {
	// A line matching multiple patterns still yields one boundary, with the
	// strongest confidence.
	b := detectOne(t, "SECTION 1 DEFINITIONS")
	if b.Confidence != 0.95 {
		t.Errorf("expected max confidence 0.95, got %v", b.Confidence)
	}
}

func TestCleanHeading(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  Multiple   spaces\there  ", "Multiple spaces here"},
		{"A-12 Appendix Title", "Appendix Title"},
		{"42 Numbered Page Heading", "Numbered Page Heading"},
		{"### Markdown Heading", "Markdown Heading"},
		{"", "Untitled Section"},
		{"   ", "Untitled Section"},
		{"Plain Heading", "Plain Heading"},
	}
	for _, tt := range tests {
		if got := CleanHeading(tt.in); got != tt.want {
			t.Errorf("CleanHeading(%q): expected %q, got %q", tt.in, tt.want, got)
		}
	}
}

func TestHighConfidenceOnly(t *testing.T) {
	boundaries := []document.SectionBoundary{
		{Index: 0, Confidence: 0.95},
		{Index: 3, Confidence: 0.3},
		{Index: 7, Confidence: 0.7},
	}
	high := HighConfidenceOnly(boundaries)
	if len(high) != 2 {
		t.Fatalf("expected 2 high-confidence boundaries, got %d", len(high))
	}
	if high[0].Index != 0 || high[1].Index != 7 {
		t.Errorf("expected indexes [0 7], got [%d %d]", high[0].Index, high[1].Index)
	}
}
