// Package pipeline drives the per-file flow: extraction, boundary detection,
// mode selection, chunking. Directory mode fans files out to a bounded
// worker pool; files are independent, so no state is shared between them.
package pipeline

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/dgallion1/docchunk/internal/chunker"
	"github.com/dgallion1/docchunk/internal/config"
	"github.com/dgallion1/docchunk/internal/document"
	"github.com/dgallion1/docchunk/internal/parser"
	"github.com/dgallion1/docchunk/internal/section"
	"github.com/dgallion1/docchunk/internal/token"
)

// minUsableFileChars is the minimum extracted text length below which a file
// is skipped as unusable.
const minUsableFileChars = 50

var (
	// ErrNoUsableText marks a file whose extraction produced too little text.
	ErrNoUsableText = errors.New("no usable text extracted")
	// ErrNoFiles marks a directory with no supported files.
	ErrNoFiles = errors.New("no supported files found")
	// ErrNoResults marks a batch where every file failed.
	ErrNoResults = errors.New("no files could be processed")
)

// Runner executes the chunking pipeline for files and directories.
type Runner struct {
	dispatcher *parser.Dispatcher
	chunker    *chunker.Chunker
	est        token.Estimator
	log        *slog.Logger
	workers    int
}

func NewRunner(cfg config.Config, est token.Estimator, log *slog.Logger) *Runner {
	return &Runner{
		dispatcher: parser.New(log, parser.Options{
			PdftotextTimeout:  cfg.PdftotextTimeout,
			FallbackPdftotext: cfg.PDFFallbackPdftotext,
		}),
		chunker: chunker.New(est, cfg.MaxTokens, cfg.OverlapTokens),
		est:     est,
		log:     log,
		workers: cfg.WorkerCount,
	}
}

// RunFile extracts, detects boundaries, and chunks a single file.
func (r *Runner) RunFile(path string) (*document.Result, error) {
	abs, err := filepath.Abs(path)
	if err == nil {
		path = abs
	}
	filename := filepath.Base(path)
	ext := strings.ToLower(filepath.Ext(path))

	log := r.log.With("file", filename)
	log.Info("extracting text")

	blocks, err := r.dispatcher.Extract(path)
	if err != nil {
		return nil, err
	}

	totalChars := parser.TotalChars(blocks)
	if totalChars < minUsableFileChars {
		return nil, fmt.Errorf("%w: %s (%d chars)", ErrNoUsableText, filename, totalChars)
	}

	fullText := document.JoinBlocks(blocks)
	totalTokens := r.est.Count(fullText)
	totalPages := document.MaxPage(blocks)
	log.Info("extracted", "chars", totalChars, "tokens", totalTokens, "pages", totalPages)

	boundaries := section.DetectBoundaries(blocks)
	highConf := section.HighConfidenceOnly(boundaries)
	log.Info("detected boundaries", "high_confidence", len(highConf), "total", len(boundaries))

	mode := r.chunker.SelectMode(highConf)
	chunks := r.chunker.Chunk(mode, blocks, highConf)
	log.Info("chunked", "chunks", len(chunks), "mode", mode)

	structure := make([]document.Heading, 0, len(highConf))
	for _, b := range highConf {
		structure = append(structure, document.Heading{
			Heading: b.Heading,
			Level:   b.Level,
			Page:    b.Page,
		})
	}

	return &document.Result{
		SourceFile:        path,
		Filename:          filename,
		FileType:          strings.TrimPrefix(ext, "."),
		TotalPages:        totalPages,
		TotalTokens:       totalTokens,
		TotalChars:        totalChars,
		ChunkingMode:      mode,
		DocumentStructure: structure,
		Chunks:            chunks,
	}, nil
}

// RunDirectory processes every supported file in a directory with a bounded
// worker pool. Failed files are skipped with a diagnostic; results keep the
// sorted-input order. Only a batch where nothing succeeds is an error.
func (r *Runner) RunDirectory(dir string) ([]*document.Result, error) {
	files, err := FindSupportedFiles(dir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoFiles, dir)
	}
	r.log.Info("directory mode", "dir", dir, "files", len(files))

	results := make([]*document.Result, len(files))
	jobs := make(chan int, len(files))

	var wg sync.WaitGroup
	workers := r.workers
	if workers > len(files) {
		workers = len(files)
	}
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				res, err := r.RunFile(files[idx])
				if err != nil {
					r.log.Warn("skipping file", "file", filepath.Base(files[idx]), "error", err)
					continue
				}
				results[idx] = res
			}
		}()
	}
	for i := range files {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	processed := make([]*document.Result, 0, len(results))
	for _, res := range results {
		if res != nil {
			processed = append(processed, res)
		}
	}
	if len(processed) == 0 {
		return nil, ErrNoResults
	}
	return processed, nil
}

// FindSupportedFiles lists supported document files in a directory,
// non-recursive, in sorted name order.
func FindSupportedFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !parser.IsSupported(entry.Name()) {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(files)
	return files, nil
}
