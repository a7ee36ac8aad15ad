// Package writer serializes chunking results for the downstream summarizer:
// one text file per chunk plus a metadata.json index.
package writer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dgallion1/docchunk/internal/document"
)

// firstLineLen is how much chunk text goes into the first_line preview.
const firstLineLen = 120

// ChunkMeta describes one written chunk file.
type ChunkMeta struct {
	ID         int    `json:"id"`
	LocalID    int    `json:"local_id,omitempty"`
	File       string `json:"file"`
	TokenCount int    `json:"token_count"`
	StartPage  int    `json:"start_page"`
	EndPage    int    `json:"end_page"`
	Heading    string `json:"heading"`
	FirstLine  string `json:"first_line"`
}

// SingleMetadata is the metadata.json layout for single-file mode.
type SingleMetadata struct {
	Mode              string             `json:"mode"`
	SourceFile        string             `json:"source_file"`
	FileType          string             `json:"file_type"`
	TotalPages        int                `json:"total_pages"`
	TotalTokens       int                `json:"total_tokens"`
	TotalChars        int                `json:"total_chars"`
	ChunkingMode      string             `json:"chunking_mode"`
	NumChunks         int                `json:"num_chunks"`
	OverlapTokens     int                `json:"overlap_tokens"`
	MaxTokensPerChunk int                `json:"max_tokens_per_chunk"`
	DocumentStructure []document.Heading `json:"document_structure"`
	Chunks            []ChunkMeta        `json:"chunks"`
}

// FileMetadata is one file's entry in multi-file metadata.json.
type FileMetadata struct {
	FileIndex         int                `json:"file_index"`
	SourceFile        string             `json:"source_file"`
	Filename          string             `json:"filename"`
	FileType          string             `json:"file_type"`
	TotalPages        int                `json:"total_pages"`
	TotalTokens       int                `json:"total_tokens"`
	TotalChars        int                `json:"total_chars"`
	ChunkingMode      string             `json:"chunking_mode"`
	NumChunks         int                `json:"num_chunks"`
	DocumentStructure []document.Heading `json:"document_structure"`
	Chunks            []ChunkMeta        `json:"chunks"`
}

// MultiMetadata is the metadata.json layout for directory mode.
type MultiMetadata struct {
	Mode              string         `json:"mode"`
	SourceDir         string         `json:"source_dir"`
	NumFiles          int            `json:"num_files"`
	TotalTokens       int            `json:"total_tokens"`
	TotalChunks       int            `json:"total_chunks"`
	OverlapTokens     int            `json:"overlap_tokens"`
	MaxTokensPerChunk int            `json:"max_tokens_per_chunk"`
	Files             []FileMetadata `json:"files"`
}

// Status is the machine-readable summary emitted on stdout after a run.
type Status struct {
	Status       string       `json:"status"`
	Mode         string       `json:"mode"`
	OutputDir    string       `json:"output_dir"`
	NumChunks    int          `json:"num_chunks,omitempty"`
	NumFiles     int          `json:"num_files,omitempty"`
	TotalChunks  int          `json:"total_chunks,omitempty"`
	TotalTokens  int          `json:"total_tokens"`
	TotalPages   int          `json:"total_pages,omitempty"`
	ChunkingMode string       `json:"chunking_mode,omitempty"`
	Files        []FileStatus `json:"files,omitempty"`
}

// FileStatus summarizes one file in a multi-file Status.
type FileStatus struct {
	Filename string `json:"filename"`
	Chunks   int    `json:"chunks"`
}

// Writer persists results under an output directory.
type Writer struct {
	MaxTokens int
	Overlap   int
}

func New(maxTokens, overlap int) *Writer {
	return &Writer{MaxTokens: maxTokens, Overlap: overlap}
}

// WriteSingle writes one file's chunks and metadata.
func (w *Writer) WriteSingle(result *document.Result, outputDir string) (*Status, error) {
	chunksDir, err := prepareDirs(outputDir)
	if err != nil {
		return nil, err
	}

	metas := make([]ChunkMeta, 0, len(result.Chunks))
	for _, chunk := range result.Chunks {
		name := fmt.Sprintf("chunk_%03d.txt", chunk.ID)
		if err := os.WriteFile(filepath.Join(chunksDir, name), []byte(chunk.Text), 0o644); err != nil {
			return nil, fmt.Errorf("write chunk %d: %w", chunk.ID, err)
		}
		metas = append(metas, chunkMeta(chunk, chunk.ID, "chunks/"+name))
	}

	meta := SingleMetadata{
		Mode:              "single_file",
		SourceFile:        result.SourceFile,
		FileType:          result.FileType,
		TotalPages:        result.TotalPages,
		TotalTokens:       result.TotalTokens,
		TotalChars:        result.TotalChars,
		ChunkingMode:      result.ChunkingMode,
		NumChunks:         len(result.Chunks),
		OverlapTokens:     w.Overlap,
		MaxTokensPerChunk: w.MaxTokens,
		DocumentStructure: result.DocumentStructure,
		Chunks:            metas,
	}
	if err := writeJSON(filepath.Join(outputDir, "metadata.json"), meta); err != nil {
		return nil, err
	}

	return &Status{
		Status:       "success",
		Mode:         "single_file",
		OutputDir:    outputDir,
		NumChunks:    len(result.Chunks),
		TotalTokens:  result.TotalTokens,
		TotalPages:   result.TotalPages,
		ChunkingMode: result.ChunkingMode,
	}, nil
}

// WriteMulti writes chunks and metadata for a directory batch. Chunk files
// are prefixed per source file so outputs stay partitioned, and a global id
// runs across files in input order alongside each chunk's per-file id.
func (w *Writer) WriteMulti(results []*document.Result, sourceDir, outputDir string) (*Status, error) {
	chunksDir, err := prepareDirs(outputDir)
	if err != nil {
		return nil, err
	}

	var files []FileMetadata
	globalID := 0
	totalTokens := 0

	for fileIdx, result := range results {
		prefix := fmt.Sprintf("f%02d", fileIdx+1)
		metas := make([]ChunkMeta, 0, len(result.Chunks))

		for _, chunk := range result.Chunks {
			globalID++
			name := fmt.Sprintf("%s_chunk_%03d.txt", prefix, chunk.ID)
			if err := os.WriteFile(filepath.Join(chunksDir, name), []byte(chunk.Text), 0o644); err != nil {
				return nil, fmt.Errorf("write chunk %s: %w", name, err)
			}
			m := chunkMeta(chunk, globalID, "chunks/"+name)
			m.LocalID = chunk.ID
			metas = append(metas, m)
		}

		files = append(files, FileMetadata{
			FileIndex:         fileIdx + 1,
			SourceFile:        result.SourceFile,
			Filename:          result.Filename,
			FileType:          result.FileType,
			TotalPages:        result.TotalPages,
			TotalTokens:       result.TotalTokens,
			TotalChars:        result.TotalChars,
			ChunkingMode:      result.ChunkingMode,
			NumChunks:         len(result.Chunks),
			DocumentStructure: result.DocumentStructure,
			Chunks:            metas,
		})
		totalTokens += result.TotalTokens
	}

	absSource, err := filepath.Abs(sourceDir)
	if err != nil {
		absSource = sourceDir
	}
	meta := MultiMetadata{
		Mode:              "multi_file",
		SourceDir:         absSource,
		NumFiles:          len(results),
		TotalTokens:       totalTokens,
		TotalChunks:       globalID,
		OverlapTokens:     w.Overlap,
		MaxTokensPerChunk: w.MaxTokens,
		Files:             files,
	}
	if err := writeJSON(filepath.Join(outputDir, "metadata.json"), meta); err != nil {
		return nil, err
	}

	status := &Status{
		Status:      "success",
		Mode:        "multi_file",
		OutputDir:   outputDir,
		NumFiles:    len(results),
		TotalChunks: globalID,
		TotalTokens: totalTokens,
	}
	for _, r := range results {
		status.Files = append(status.Files, FileStatus{Filename: r.Filename, Chunks: len(r.Chunks)})
	}
	return status, nil
}

func chunkMeta(chunk document.Chunk, id int, file string) ChunkMeta {
	return ChunkMeta{
		ID:         id,
		File:       file,
		TokenCount: chunk.Tokens,
		StartPage:  chunk.StartPage,
		EndPage:    chunk.EndPage,
		Heading:    chunk.Heading,
		FirstLine:  firstLine(chunk.Text),
	}
}

// firstLine previews the start of a chunk: first 120 characters with
// newlines collapsed to spaces.
func firstLine(text string) string {
	runes := []rune(text)
	if len(runes) > firstLineLen {
		runes = runes[:firstLineLen]
	}
	return strings.ReplaceAll(strings.TrimSpace(string(runes)), "\n", " ")
}

// prepareDirs creates the chunks/ and summaries/ output directories. The
// summaries directory is left empty for the downstream summarizer.
func prepareDirs(outputDir string) (chunksDir string, err error) {
	chunksDir = filepath.Join(outputDir, "chunks")
	for _, dir := range []string{chunksDir, filepath.Join(outputDir, "summaries")} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("create output dir: %w", err)
		}
	}
	return chunksDir, nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}
	return nil
}
