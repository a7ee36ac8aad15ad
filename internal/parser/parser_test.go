package parser

import (
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dgallion1/docchunk/internal/document"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestIsSupported(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"report.pdf", true},
		{"REPORT.PDF", true},
		{"contract.docx", true},
		{"notes.txt", true},
		{"readme.md", true},
		{"readme.markdown", true},
		{"data.csv", false},
		{"page.html", false},
		{"noextension", false},
	}
	for _, tt := range tests {
		if got := IsSupported(tt.name); got != tt.want {
			t.Errorf("IsSupported(%q): expected %v, got %v", tt.name, tt.want, got)
		}
	}
}

func TestDispatcher_UnsupportedExtension(t *testing.T) {
	d := New(discardLogger(), Options{})
	_, err := d.Extract("spreadsheet.xlsx")
	if !errors.Is(err, ErrUnsupported) {
		t.Errorf("expected ErrUnsupported, got %v", err)
	}
}

func TestDispatcher_ExtractText(t *testing.T) {
	path := writeFile(t, "doc.txt", "a line of text\n\nanother line\n")

	d := New(discardLogger(), Options{})
	blocks, err := d.Extract(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(blocks) != 3 {
		t.Fatalf("expected 3 blocks, got %d", len(blocks))
	}
}

func TestDispatcher_ExtractMarkdownTagsHeadings(t *testing.T) {
	path := writeFile(t, "doc.md", "# Heading\n\nbody text\n")

	d := New(discardLogger(), Options{})
	blocks, err := d.Extract(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(blocks) != 3 {
		t.Fatalf("expected 3 blocks, got %d", len(blocks))
	}
	if blocks[0].HeadingLevel != 1 || blocks[0].Confidence != 1.0 {
		t.Errorf("expected tagged heading block, got %+v", blocks[0])
	}
}

func TestDispatcher_MissingFileAbsorbed(t *testing.T) {
	d := New(discardLogger(), Options{})
	blocks, err := d.Extract(filepath.Join(t.TempDir(), "nope.txt"))
	if err != nil {
		t.Fatalf("backend errors must be absorbed, got %v", err)
	}
	if len(blocks) != 0 {
		t.Errorf("expected no blocks, got %d", len(blocks))
	}
}

// fakeBackend simulates a PDF backend with a canned result.
type fakeBackend struct {
	name   string
	text   string
	err    error
	called *bool
}

func (f *fakeBackend) Name() string { return f.name }

func (f *fakeBackend) Extract(string) ([]document.TextBlock, error) {
	if f.called != nil {
		*f.called = true
	}
	if f.err != nil {
		return nil, f.err
	}
	if f.text == "" {
		return nil, nil
	}
	return []document.TextBlock{{Text: f.text, Page: 1}}, nil
}

func TestExtractPDF_AcceptsFirstUsableResult(t *testing.T) {
	secondCalled := false
	d := &Dispatcher{
		log: discardLogger(),
		pdfBackends: []Extractor{
			&fakeBackend{name: "rich", text: strings.Repeat("x", 150)},
			&fakeBackend{name: "never", text: "unused", called: &secondCalled},
		},
	}

	blocks := d.extractPDF("doc.pdf")
	if TotalChars(blocks) != 150 {
		t.Errorf("expected the first backend's 150 chars, got %d", TotalChars(blocks))
	}
	if secondCalled {
		t.Error("cascade must stop at the first usable result")
	}
}

func TestExtractPDF_CascadesPastWeakBackends(t *testing.T) {
	d := &Dispatcher{
		log: discardLogger(),
		pdfBackends: []Extractor{
			&fakeBackend{name: "broken", err: errors.New("cannot open")},
			&fakeBackend{name: "sparse", text: "short"}, // under the 100-char threshold
			&fakeBackend{name: "good", text: strings.Repeat("y", 200)},
		},
	}

	blocks := d.extractPDF("doc.pdf")
	if TotalChars(blocks) != 200 {
		t.Errorf("expected the last backend's 200 chars, got %d", TotalChars(blocks))
	}
}

func TestExtractPDF_AllBackendsWeakReturnsLastResult(t *testing.T) {
	d := &Dispatcher{
		log: discardLogger(),
		pdfBackends: []Extractor{
			&fakeBackend{name: "a", err: errors.New("cannot open")},
			&fakeBackend{name: "b", text: "tiny"},
		},
	}

	blocks := d.extractPDF("doc.pdf")
	if TotalChars(blocks) != 4 {
		t.Errorf("expected the last weak result to come back, got %d chars", TotalChars(blocks))
	}
}

func TestNew_BackendCascade(t *testing.T) {
	with := New(discardLogger(), Options{FallbackPdftotext: true, PdftotextTimeout: time.Second})
	if len(with.pdfBackends) != 3 {
		t.Errorf("expected 3 pdf backends with fallback enabled, got %d", len(with.pdfBackends))
	}

	without := New(discardLogger(), Options{FallbackPdftotext: false})
	if len(without.pdfBackends) != 2 {
		t.Errorf("expected 2 pdf backends with fallback disabled, got %d", len(without.pdfBackends))
	}
}

func TestTotalChars(t *testing.T) {
	blocks := []document.TextBlock{
		{Text: "12345"},
		{Text: ""},
		{Text: "678"},
	}
	if got := TotalChars(blocks); got != 8 {
		t.Errorf("expected 8, got %d", got)
	}
	if got := TotalChars(nil); got != 0 {
		t.Errorf("expected 0 for nil blocks, got %d", got)
	}

	// Characters, not bytes: 10 runes across two multibyte blocks.
	multibyte := []document.TextBlock{
		{Text: "日本語の文"},
		{Text: "héllo"},
	}
	if got := TotalChars(multibyte); got != 10 {
		t.Errorf("expected 10 characters for multibyte blocks, got %d", got)
	}
}
