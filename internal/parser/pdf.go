package parser

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/dgallion1/docchunk/internal/document"
	"github.com/gen2brain/go-fitz"
	pdflib "github.com/ledongthuc/pdf"
)

// fitzExtractor reads PDFs through MuPDF. Fastest backend and the one that
// best preserves reading order, so it goes first in the cascade.
type fitzExtractor struct{}

func (*fitzExtractor) Name() string { return "go-fitz" }

func (*fitzExtractor) Extract(path string) ([]document.TextBlock, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer doc.Close()

	var blocks []document.TextBlock
	for i := 0; i < doc.NumPage(); i++ {
		text, err := doc.Text(i)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i+1, err)
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		blocks = append(blocks, document.TextBlock{Text: text, Page: i + 1, Style: "plain"})
	}
	return blocks, nil
}

// ledongthucExtractor is the pure-Go fallback.
type ledongthucExtractor struct{}

func (*ledongthucExtractor) Name() string { return "ledongthuc/pdf" }

func (*ledongthucExtractor) Extract(path string) ([]document.TextBlock, error) {
	f, reader, err := pdflib.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	var blocks []document.TextBlock
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		blocks = append(blocks, document.TextBlock{Text: text, Page: i, Style: "plain"})
	}
	return blocks, nil
}

// pdftotextExtractor shells out to the poppler pdftotext tool with layout
// preservation. Pages arrive on stdout separated by form feeds. Runs under a
// bounded timeout; timeout or non-zero exit is an ordinary extraction
// failure, never fatal to the run.
type pdftotextExtractor struct {
	timeout time.Duration
}

func (*pdftotextExtractor) Name() string { return "pdftotext" }

func (p *pdftotextExtractor) Extract(path string) ([]document.TextBlock, error) {
	if _, err := exec.LookPath("pdftotext"); err != nil {
		return nil, fmt.Errorf("pdftotext not installed: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "pdftotext", "-layout", path, "-")
	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("pdftotext timed out after %s", p.timeout)
		}
		return nil, fmt.Errorf("pdftotext: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	var blocks []document.TextBlock
	for i, pageText := range strings.Split(out.String(), "\f") {
		if strings.TrimSpace(pageText) == "" {
			continue
		}
		blocks = append(blocks, document.TextBlock{Text: pageText, Page: i + 1, Style: "plain"})
	}
	return blocks, nil
}
