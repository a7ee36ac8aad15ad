// Package section detects confidence-scored section boundaries in an
// extracted block sequence.
package section

import (
	"regexp"
	"strings"

	"github.com/dgallion1/docchunk/internal/document"
)

// HighConfidence is the threshold above which a boundary is trusted for
// structural decisions (chunking mode, document structure summary).
const HighConfidence = 0.7

// Heuristic confidence weights.
const (
	allCapsConfidence  = 0.7
	blankGapConfidence = 0.3

	maxHeadingLen = 120 // Lines longer than this are never treated as headings.
	blankGapRun   = 3   // Consecutive blank blocks that suggest a section break.
)

// levelRule computes a nesting level from heading text.
type levelRule func(text string) int

// pattern is one row of the structural-marker table. Rows are evaluated in
// order: the first matching row's level rule wins, while the reported
// confidence is the maximum across all matching rows. Adding a marker is a
// data change, not a control-flow change.
type pattern struct {
	re         *regexp.Regexp
	confidence float64
	level      levelRule
}

var levelOne = func(string) int { return 1 }

var patterns = []pattern{
	{regexp.MustCompile(`^\s*(\d+\.)+\d*\s+\S`), 0.9, numberedDepth},
	{regexp.MustCompile(`^\s*[IVXLCDM]+\.\s+\S`), 0.85, levelOne},
	{regexp.MustCompile(`^\s*[A-Z]\.\s+\S`), 0.8, levelOne},
	{regexp.MustCompile(`(?i)^\s*(Section|Article|Chapter|Part)\s+[\dIVXLCDM]+`), 0.95, levelOne},
	{regexp.MustCompile(`^\s*(ARTICLE|SECTION|CHAPTER|PART)\s+[\dIVXLCDM]+`), 0.95, levelOne},
}

var numberedRe = regexp.MustCompile(`^\s*([\d.]+)`)

// numberedDepth counts numeric groups in a "1.2.3" style prefix, capped at 4.
func numberedDepth(text string) int {
	m := numberedRe.FindStringSubmatch(text)
	if m == nil {
		return 1
	}
	depth := strings.Count(strings.TrimRight(m[1], "."), ".") + 1
	if depth > 4 {
		depth = 4
	}
	return depth
}

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	pageNumRe    = regexp.MustCompile(`^[A-Z]?-?\d+\s+`)
	mdHashRe     = regexp.MustCompile(`^#+\s*`)
)

// CleanHeading normalizes heading text: collapse whitespace, strip a leading
// page-number-like token ("A-12 " style), strip Markdown hash markers.
func CleanHeading(text string) string {
	text = strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
	text = strings.TrimSpace(pageNumRe.ReplaceAllString(text, ""))
	text = strings.TrimSpace(mdHashRe.ReplaceAllString(text, ""))
	if text == "" {
		return "Untitled Section"
	}
	return text
}

// DetectBoundaries scans blocks in order and returns all detected section
// boundaries, including low-confidence ones. A block yields at most one
// boundary.
func DetectBoundaries(blocks []document.TextBlock) []document.SectionBoundary {
	var boundaries []document.SectionBoundary
	blankRun := 0

	for i, block := range blocks {
		text := strings.TrimSpace(block.Text)

		// Extraction already marked this block as a heading (DOCX style
		// information or a Markdown heading line).
		if block.Confidence >= 0.9 && block.HeadingLevel > 0 {
			boundaries = append(boundaries, document.SectionBoundary{
				Index:      i,
				Heading:    CleanHeading(text),
				Level:      block.HeadingLevel,
				Confidence: block.Confidence,
				Page:       block.Page,
			})
			blankRun = 0
			continue
		}

		if text == "" {
			blankRun++
			continue
		}

		confidence := 0.0
		level := 1
		matched := false
		for _, p := range patterns {
			if !p.re.MatchString(text) {
				continue
			}
			if !matched {
				level = p.level(text)
				matched = true
			}
			if p.confidence > confidence {
				confidence = p.confidence
			}
		}

		// Short ALL-CAPS lines are probable headers.
		if confidence == 0 && isAllCapsHeading(text) {
			confidence = allCapsConfidence
			level = 1
		}

		// A long blank gap is weak evidence of a section break.
		if confidence == 0 && blankRun >= blankGapRun {
			confidence = blankGapConfidence
			level = 1
		}

		if confidence > 0 {
			boundaries = append(boundaries, document.SectionBoundary{
				Index:      i,
				Heading:    CleanHeading(truncate(text, maxHeadingLen)),
				Level:      level,
				Confidence: confidence,
				Page:       block.Page,
			})
		}

		blankRun = 0
	}

	return boundaries
}

func isAllCapsHeading(text string) bool {
	return len([]rune(text)) < maxHeadingLen &&
		len(strings.Fields(text)) >= 2 &&
		text == strings.ToUpper(text) &&
		!strings.HasPrefix(text, "[TABLE")
}

func truncate(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n])
}

// HighConfidenceOnly filters boundaries to those trusted for structural
// decisions, preserving order.
func HighConfidenceOnly(boundaries []document.SectionBoundary) []document.SectionBoundary {
	var out []document.SectionBoundary
	for _, b := range boundaries {
		if b.Confidence >= HighConfidence {
			out = append(out, b)
		}
	}
	return out
}
