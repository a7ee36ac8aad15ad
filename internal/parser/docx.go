package parser

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/dgallion1/docchunk/internal/document"
	"github.com/fumiama/go-docx"
)

// docxExtractor reads .docx files. Each paragraph becomes one block; heading
// and title styles mark the block as a heading with full confidence. Tables
// are flattened into a single block wrapped in [TABLE]...[/TABLE] markers.
// Documents with missing or unrecognized style information degrade to plain
// paragraphs rather than failing.
type docxExtractor struct{}

func (*docxExtractor) Name() string { return "go-docx" }

func (*docxExtractor) Extract(path string) ([]document.TextBlock, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open docx: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat docx: %w", err)
	}

	doc, err := docx.Parse(f, info.Size())
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	var blocks []document.TextBlock
	for _, item := range doc.Document.Body.Items {
		switch node := item.(type) {
		case *docx.Paragraph:
			blocks = append(blocks, paragraphBlock(node))
		case *docx.Table:
			blocks = append(blocks, tableBlock(node))
		}
	}
	return blocks, nil
}

func paragraphBlock(para *docx.Paragraph) document.TextBlock {
	text := paragraphText(para)
	if text == "" {
		return document.TextBlock{Text: "\n", Style: "blank"}
	}

	style := paragraphStyle(para)
	level, confidence := headingLevel(style)
	return document.TextBlock{
		Text:         text,
		HeadingLevel: level,
		Style:        style,
		Confidence:   confidence,
	}
}

// headingLevel maps a paragraph style name to a heading nesting depth.
// "Heading N" variants carry their own depth; Title and Subtitle map to
// levels 1 and 2. Anything else is body text.
func headingLevel(style string) (level int, confidence float64) {
	switch {
	case strings.HasPrefix(strings.ToLower(style), "heading"):
		rest := strings.TrimSpace(style[len("heading"):])
		if n, err := strconv.Atoi(rest); err == nil && n > 0 {
			return n, 1.0
		}
		return 1, 1.0
	case strings.EqualFold(style, "Title"):
		return 1, 1.0
	case strings.EqualFold(style, "Subtitle"):
		return 2, 1.0
	}
	return 0, 0
}

func paragraphStyle(para *docx.Paragraph) string {
	if para.Properties == nil || para.Properties.Style == nil {
		return ""
	}
	return para.Properties.Style.Val
}

func paragraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				buf.WriteString(t.Text)
			}
		}
	}
	return strings.TrimSpace(buf.String())
}

// tableBlock flattens a table into one block, one line per row with cells
// joined by " | ".
func tableBlock(table *docx.Table) document.TextBlock {
	var buf strings.Builder
	buf.WriteString("[TABLE]\n")
	for _, row := range table.TableRows {
		cells := make([]string, 0, len(row.TableCells))
		for _, cell := range row.TableCells {
			var cellText strings.Builder
			for i, para := range cell.Paragraphs {
				if i > 0 {
					cellText.WriteString(" ")
				}
				cellText.WriteString(paragraphText(para))
			}
			cells = append(cells, strings.TrimSpace(cellText.String()))
		}
		buf.WriteString(strings.Join(cells, " | "))
		buf.WriteString("\n")
	}
	buf.WriteString("[/TABLE]\n")
	return document.TextBlock{Text: buf.String(), Style: "table"}
}
