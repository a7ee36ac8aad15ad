package chunker

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/dgallion1/docchunk/internal/document"
)

// SplitText splits text into token-budgeted pieces at sentence boundaries,
// seeding each new piece with up to the overlap budget of trailing sentences
// from the previous one. The budget check runs against the candidate piece's
// actual joined text, so an emitted piece never exceeds the budget unless a
// single sentence alone does (the irreducible case, emitted as its own
// piece). Degenerate input comes back as one piece holding the whole text.
func (c *Chunker) SplitText(text string) []string {
	sentences := splitSentences(text)

	var chunks []string
	var current []string
	currentText := ""

	for _, sentence := range sentences {
		candidate := joined(currentText, sentence)
		if len(current) > 0 && c.est.Count(candidate) > c.maxTokens {
			chunks = append(chunks, currentText)
			current, currentText = c.overlapSeed(current)
			candidate = joined(currentText, sentence)
			if len(current) > 0 && c.est.Count(candidate) > c.maxTokens {
				// Carrying the overlap would blow the budget for this
				// sentence; start the new piece clean instead.
				current, currentText = nil, ""
				candidate = sentence
			}
		}
		current = append(current, sentence)
		currentText = candidate
	}
	if len(current) > 0 {
		chunks = append(chunks, currentText)
	}

	if len(chunks) == 0 {
		return []string{text}
	}
	return chunks
}

func joined(currentText, sentence string) string {
	if currentText == "" {
		return sentence
	}
	return currentText + " " + sentence
}

// overlapSeed walks backward through a finalized piece's sentences,
// accumulating them in original order until the next one would exceed the
// overlap token budget.
func (c *Chunker) overlapSeed(prev []string) ([]string, string) {
	var seed []string
	seedTokens := 0
	for i := len(prev) - 1; i >= 0; i-- {
		st := c.est.Count(prev[i])
		if seedTokens+st > c.overlap {
			break
		}
		seed = append([]string{prev[i]}, seed...)
		seedTokens += st
	}
	return seed, strings.Join(seed, " ")
}

// splitSentences breaks text after any of . ! ? followed by whitespace,
// consuming the whitespace run. Heuristic: abbreviations may mis-split,
// which is acceptable for chunking purposes.
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		current.WriteRune(r)
		if (r == '.' || r == '!' || r == '?') && i+1 < len(runes) && unicode.IsSpace(runes[i+1]) {
			sentences = append(sentences, current.String())
			current.Reset()
			for i+1 < len(runes) && unicode.IsSpace(runes[i+1]) {
				i++
			}
		}
	}
	if current.Len() > 0 {
		sentences = append(sentences, current.String())
	}
	return sentences
}

// ChunkByTokens is the whole-document fallback when no reliable structure
// was detected. Page ranges are estimated proportionally to each piece's
// character offset, never exceeding the true total page count.
func (c *Chunker) ChunkByTokens(blocks []document.TextBlock) []document.Chunk {
	fullText := document.JoinBlocks(blocks)
	pieces := c.SplitText(fullText)

	totalPages := document.MaxPage(blocks)
	if totalPages == 0 {
		totalPages = 1
	}
	totalChars := len(fullText)
	if totalChars < 1 {
		totalChars = 1
	}
	pagesPerChunk := totalPages / len(pieces)
	if pagesPerChunk < 1 {
		pagesPerChunk = 1
	}

	chunks := make([]document.Chunk, 0, len(pieces))
	charOffset := 0
	for i, piece := range pieces {
		startPage := int(float64(charOffset)/float64(totalChars)*float64(totalPages)) + 1
		if startPage < 1 {
			startPage = 1
		}
		endPage := startPage + pagesPerChunk
		if endPage > totalPages {
			endPage = totalPages
		}
		chunks = append(chunks, document.Chunk{
			ID:        i + 1,
			Heading:   fmt.Sprintf("Section %d", i+1),
			Level:     1,
			Text:      piece,
			Tokens:    c.est.Count(piece),
			StartPage: startPage,
			EndPage:   endPage,
		})
		charOffset += len(piece)
	}
	return chunks
}
