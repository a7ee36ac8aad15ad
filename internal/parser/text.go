package parser

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/dgallion1/docchunk/internal/document"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// textExtractor reads .txt and Markdown files. Each physical line becomes one
// block; blank lines become "blank" blocks so downstream boundary detection
// can see paragraph gaps. For Markdown, heading lines are tagged with their
// level at full confidence using the goldmark AST.
type textExtractor struct {
	markdown bool
}

func (p *textExtractor) Name() string {
	if p.markdown {
		return "markdown"
	}
	return "text"
}

func (p *textExtractor) Extract(path string) ([]document.TextBlock, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	style := "plain"
	var headings map[int]int
	if p.markdown {
		style = "markdown"
		headings = headingLines(src)
	}

	var blocks []document.TextBlock
	scanner := bufio.NewScanner(bytes.NewReader(src))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for lineNo := 0; scanner.Scan(); lineNo++ {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			blocks = append(blocks, document.TextBlock{Text: "\n", Style: "blank"})
			continue
		}

		block := document.TextBlock{Text: line, Style: style}
		if level, ok := headings[lineNo]; ok {
			block.HeadingLevel = level
			block.Confidence = 1.0
		}
		blocks = append(blocks, block)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return blocks, nil
}

// headingLines parses Markdown source and maps 0-based physical line numbers
// to heading levels. Going through the AST rather than a per-line regex also
// picks up setext headings for free.
func headingLines(src []byte) map[int]int {
	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(src))

	headings := make(map[int]int)
	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		h, ok := n.(*ast.Heading)
		if !ok || h.Lines().Len() == 0 {
			return ast.WalkContinue, nil
		}
		seg := h.Lines().At(0)
		line := bytes.Count(src[:seg.Start], []byte("\n"))
		headings[line] = h.Level
		return ast.WalkContinue, nil
	})
	return headings
}
