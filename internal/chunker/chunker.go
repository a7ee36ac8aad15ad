// Package chunker turns an extracted block sequence into an ordered list of
// bounded-size chunks, either along detected section boundaries or by
// token-budgeted sentence splitting.
package chunker

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dgallion1/docchunk/internal/document"
	"github.com/dgallion1/docchunk/internal/token"
)

const (
	// DefaultMaxTokens is the target chunk size ceiling.
	DefaultMaxTokens = 4000
	// DefaultOverlap is the trailing context carried into the next
	// token-based chunk.
	DefaultOverlap = 200

	// minStructureBoundaries is the minimum number of high-confidence
	// boundaries required for structure-aware chunking. Fewer means the
	// detected structure is too sparse to safely partition the document.
	minStructureBoundaries = 3

	// tinyBufferTokens marks a pending merge buffer as eligible for
	// aggressive absorption.
	tinyBufferTokens = 100

	// mergeFill caps how full a merged buffer may get relative to the
	// token budget.
	mergeFill = 0.8
)

// Chunker holds the chunking parameters and token estimator.
type Chunker struct {
	est       token.Estimator
	maxTokens int
	overlap   int
}

// New builds a Chunker. Non-positive parameters fall back to defaults.
func New(est token.Estimator, maxTokens, overlap int) *Chunker {
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	if overlap < 0 {
		overlap = DefaultOverlap
	}
	return &Chunker{est: est, maxTokens: maxTokens, overlap: overlap}
}

// SelectMode decides the chunking mode from the high-confidence boundary
// count.
func (c *Chunker) SelectMode(highConf []document.SectionBoundary) string {
	if len(highConf) >= minStructureBoundaries {
		return document.ModeStructureAware
	}
	return document.ModeTokenBased
}

// Chunk dispatches to the mode's chunking strategy.
func (c *Chunker) Chunk(mode string, blocks []document.TextBlock, highConf []document.SectionBoundary) []document.Chunk {
	if mode == document.ModeStructureAware {
		return c.ChunkByStructure(blocks, highConf)
	}
	return c.ChunkByTokens(blocks)
}

// ChunkByStructure builds sections from boundaries, merges small ones and
// splits oversized ones, then emits chunks with sequential 1-based ids.
func (c *Chunker) ChunkByStructure(blocks []document.TextBlock, boundaries []document.SectionBoundary) []document.Chunk {
	if len(boundaries) == 0 {
		return nil
	}
	sections := buildSections(blocks, boundaries, c.est)
	merged := c.mergeAndSplit(sections)

	chunks := make([]document.Chunk, 0, len(merged))
	for i, sec := range merged {
		chunks = append(chunks, document.Chunk{
			ID:        i + 1,
			Heading:   sec.Heading,
			Level:     sec.Level,
			Text:      sec.Text,
			Tokens:    c.est.Count(sec.Text),
			StartPage: sec.StartPage,
			EndPage:   sec.EndPage,
		})
	}
	return chunks
}

// buildSections converts boundaries into contiguous block-range sections,
// prepending a synthetic preamble for any text before the first boundary.
func buildSections(blocks []document.TextBlock, boundaries []document.SectionBoundary, est token.Estimator) []document.Section {
	sorted := make([]document.SectionBoundary, len(boundaries))
	copy(sorted, boundaries)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Index < sorted[j].Index })

	sections := make([]document.Section, 0, len(sorted)+1)
	for i, b := range sorted {
		end := len(blocks)
		if i+1 < len(sorted) {
			end = sorted[i+1].Index
		}
		sections = append(sections, newSection(b.Heading, b.Level, blocks[b.Index:end], est))
	}

	if sorted[0].Index > 0 {
		preamble := newSection("Preamble", 0, blocks[:sorted[0].Index], est)
		if strings.TrimSpace(preamble.Text) != "" {
			sections = append([]document.Section{preamble}, sections...)
		}
	}
	return sections
}

func newSection(heading string, level int, blocks []document.TextBlock, est token.Estimator) document.Section {
	text := document.JoinBlocks(blocks)
	start, end := document.PageRange(blocks)
	return document.Section{
		Heading:   heading,
		Level:     level,
		Text:      text,
		Tokens:    est.Count(text),
		StartPage: start,
		EndPage:   end,
	}
}

// mergeAndSplit runs the merge/split pass: a fold over sections threading a
// single pending buffer, emitting completed sections in order.
func (c *Chunker) mergeAndSplit(sections []document.Section) []document.Section {
	var merged []document.Section
	var buffer *document.Section

	flush := func() {
		if buffer != nil {
			merged = append(merged, *buffer)
			buffer = nil
		}
	}

	for _, sec := range sections {
		switch {
		case sec.Tokens > c.maxTokens:
			// A tiny pending buffer is prepended to the oversized text
			// instead of being emitted as a near-empty chunk.
			text := sec.Text
			if buffer != nil && buffer.Tokens < tinyBufferTokens {
				text = buffer.Text + "\n\n" + text
				buffer = nil
			} else {
				flush()
			}
			merged = append(merged, c.splitSection(sec, text)...)

		case buffer != nil && (buffer.Tokens < tinyBufferTokens ||
			float64(buffer.Tokens+sec.Tokens) < mergeFill*float64(c.maxTokens)):
			absorb(buffer, sec)

		default:
			flush()
			s := sec
			buffer = &s
		}
	}
	flush()
	return merged
}

// splitSection splits oversized section text with the sentence splitter.
// Each resulting piece inherits the section's heading (numbered when split
// into more than one piece) and page range.
func (c *Chunker) splitSection(sec document.Section, text string) []document.Section {
	pieces := c.SplitText(text)
	out := make([]document.Section, 0, len(pieces))
	for i, piece := range pieces {
		heading := sec.Heading
		if len(pieces) > 1 {
			heading = fmt.Sprintf("%s (part %d)", heading, i+1)
		}
		out = append(out, document.Section{
			Heading:   heading,
			Level:     sec.Level,
			Text:      piece,
			Tokens:    c.est.Count(piece),
			StartPage: sec.StartPage,
			EndPage:   sec.EndPage,
		})
	}
	return out
}

// absorb folds a section into the pending buffer: text concatenated with a
// blank-line separator, tokens summed, page range extended to the union.
// Heading update: a still-tiny buffer adopts the incoming heading, otherwise
// the headings are combined with " / " — except that two adjacent
// Preamble-named sides keep the buffer's name untouched.
func absorb(buffer *document.Section, sec document.Section) {
	buffer.Text += "\n\n" + sec.Text
	buffer.Tokens += sec.Tokens

	if buffer.Heading != "Preamble" || sec.Heading != "Preamble" {
		if buffer.Tokens < tinyBufferTokens {
			buffer.Heading = sec.Heading
		} else {
			buffer.Heading = buffer.Heading + " / " + sec.Heading
		}
	}

	if sec.StartPage > 0 && (buffer.StartPage == 0 || sec.StartPage < buffer.StartPage) {
		buffer.StartPage = sec.StartPage
	}
	if sec.EndPage > buffer.EndPage {
		buffer.EndPage = sec.EndPage
	}
}
