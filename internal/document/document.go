package document

// TextBlock is one unit of extracted text: a line, paragraph, page, or
// flattened table. Blocks form an ordered sequence; the index within that
// sequence is the addressing scheme used by section boundaries.
type TextBlock struct {
	Text         string  // May be "\n" for a blank line.
	Page         int     // 1-based source page, 0 if unknown.
	HeadingLevel int     // 0 = not a heading; 1..N = nesting depth.
	Style        string  // "plain", "markdown", "blank", "table", or a source style name.
	Confidence   float64 // Confidence this block is a genuine heading (set at extraction time).
}

// SectionBoundary is a detected section start.
type SectionBoundary struct {
	Index      int    // Block index where the section begins.
	Heading    string // Normalized heading text.
	Level      int    // 1..4; 0 is reserved for the synthetic preamble.
	Confidence float64
	Page       int
}

// Section is transient merge/split working state: the contiguous block range
// between two boundaries, with concatenated text and page extent.
type Section struct {
	Heading   string
	Level     int
	Text      string
	Tokens    int
	StartPage int
	EndPage   int
}

// Chunk is the final output unit handed to the downstream summarizer.
// Immutable once emitted.
type Chunk struct {
	ID        int    `json:"id"` // Sequential, 1-based.
	Heading   string `json:"heading"`
	Level     int    `json:"level"`
	Text      string `json:"text"`
	Tokens    int    `json:"tokens"`
	StartPage int    `json:"start_page"`
	EndPage   int    `json:"end_page"`
}

// Heading is one entry of the document structure summary: a high-confidence
// boundary in source order.
type Heading struct {
	Heading string `json:"heading"`
	Level   int    `json:"level"`
	Page    int    `json:"page"`
}

// Chunking modes.
const (
	ModeStructureAware = "structure_aware"
	ModeTokenBased     = "token_based"
)

// Result is the structured outcome of processing one file.
type Result struct {
	SourceFile        string    `json:"source_file"`
	Filename          string    `json:"filename"`
	FileType          string    `json:"file_type"`
	TotalPages        int       `json:"total_pages"`
	TotalTokens       int       `json:"total_tokens"`
	TotalChars        int       `json:"total_chars"`
	ChunkingMode      string    `json:"chunking_mode"`
	DocumentStructure []Heading `json:"document_structure"`
	Chunks            []Chunk   `json:"chunks"`
}

// JoinBlocks concatenates block texts with newlines, preserving block order.
func JoinBlocks(blocks []TextBlock) string {
	if len(blocks) == 0 {
		return ""
	}
	n := 0
	for _, b := range blocks {
		n += len(b.Text) + 1
	}
	buf := make([]byte, 0, n)
	for i, b := range blocks {
		if i > 0 {
			buf = append(buf, '\n')
		}
		buf = append(buf, b.Text...)
	}
	return string(buf)
}

// PageRange returns the min and max page over blocks with a known page,
// or (0, 0) if none have one.
func PageRange(blocks []TextBlock) (start, end int) {
	for _, b := range blocks {
		if b.Page <= 0 {
			continue
		}
		if start == 0 || b.Page < start {
			start = b.Page
		}
		if b.Page > end {
			end = b.Page
		}
	}
	return start, end
}

// MaxPage returns the highest known page number, or 0.
func MaxPage(blocks []TextBlock) int {
	_, end := PageRange(blocks)
	return end
}
