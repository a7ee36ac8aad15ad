package parser

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dgallion1/docchunk/internal/document"
)

// Extractor converts a file on disk into an ordered block sequence.
type Extractor interface {
	Name() string
	Extract(path string) ([]document.TextBlock, error)
}

// ErrUnsupported is returned for file extensions this tool cannot handle.
var ErrUnsupported = errors.New("unsupported file extension")

// SupportedExtensions lists file extensions this tool can handle.
var SupportedExtensions = map[string]bool{
	".pdf":      true,
	".docx":     true,
	".txt":      true,
	".md":       true,
	".markdown": true,
}

// IsSupported checks if a filename has a supported extension.
func IsSupported(filename string) bool {
	return SupportedExtensions[strings.ToLower(filepath.Ext(filename))]
}

// minUsableChars is the acceptance threshold for a PDF backend's output:
// below this, the cascade moves on to the next backend.
const minUsableChars = 100

// Dispatcher routes a file to its format extractor and drives the PDF
// fallback cascade. Backend errors are logged and absorbed; Extract only
// returns an error for unsupported extensions.
type Dispatcher struct {
	log         *slog.Logger
	pdfBackends []Extractor
}

// Options tunes dispatcher construction.
type Options struct {
	PdftotextTimeout  time.Duration // Timeout for the external pdftotext tool.
	FallbackPdftotext bool          // Whether to include the pdftotext backend.
}

// New builds a dispatcher with the standard backend set.
func New(log *slog.Logger, opts Options) *Dispatcher {
	if opts.PdftotextTimeout <= 0 {
		opts.PdftotextTimeout = 120 * time.Second
	}
	backends := []Extractor{
		&fitzExtractor{},
		&ledongthucExtractor{},
	}
	if opts.FallbackPdftotext {
		backends = append(backends, &pdftotextExtractor{timeout: opts.PdftotextTimeout})
	}
	return &Dispatcher{log: log, pdfBackends: backends}
}

// Extract returns the block sequence for a file. On total extraction failure
// it returns an empty sequence and a nil error so the caller can detect
// "no usable text" uniformly via the block contents.
func (d *Dispatcher) Extract(path string) ([]document.TextBlock, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".pdf":
		return d.extractPDF(path), nil
	case ".docx":
		return d.run(&docxExtractor{}, path), nil
	case ".txt":
		return d.run(&textExtractor{}, path), nil
	case ".md", ".markdown":
		return d.run(&textExtractor{markdown: true}, path), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, ext)
	}
}

// run executes a single extractor, absorbing its error.
func (d *Dispatcher) run(ex Extractor, path string) []document.TextBlock {
	blocks, err := ex.Extract(path)
	if err != nil {
		d.log.Error("extraction failed", "backend", ex.Name(), "path", path, "error", err)
		return nil
	}
	return blocks
}

// extractPDF tries each PDF backend in priority order, accepting the first
// result with enough usable text. If none qualifies, the last result
// (possibly empty) is returned.
func (d *Dispatcher) extractPDF(path string) []document.TextBlock {
	var blocks []document.TextBlock
	for _, backend := range d.pdfBackends {
		var err error
		blocks, err = backend.Extract(path)
		if err != nil {
			d.log.Warn("pdf backend failed", "backend", backend.Name(), "path", path, "error", err)
			blocks = nil
			continue
		}
		if TotalChars(blocks) > minUsableChars {
			return blocks
		}
		d.log.Warn("pdf backend produced too little text", "backend", backend.Name(), "path", path, "chars", TotalChars(blocks))
	}
	return blocks
}

// TotalChars sums the text length across blocks, counted in characters so
// multibyte documents measure the same as the equivalent ASCII text.
func TotalChars(blocks []document.TextBlock) int {
	n := 0
	for _, b := range blocks {
		n += utf8.RuneCountInString(b.Text)
	}
	return n
}
