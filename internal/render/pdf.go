// Package render paginates sanitized checklist text into PDF documents.
//
// Robustness contract: Render produces a document for any input. Lines go
// through the word-wrapping cell first; if the layout primitive rejects one
// (an edge case sanitization missed), the line is re-emitted as fixed-size
// chunks through non-wrapping cells. The chunk path does no measurement and
// cannot fail, so the only error left is temp-file IO.
package render

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-pdf/fpdf"
)

const (
	pageMargin = 15.0 // mm
	fontSize   = 11.0
	lineHeight = 5.5 // mm

	// chunkLen is the slice width on the fallback path. Narrow enough to
	// fit the printable width at fontSize without measuring.
	chunkLen = 60
)

// Document is a rendered PDF backed by a uniquely named temp file. The
// pipeline execution that created it owns it exclusively and must Cleanup
// before the request completes.
type Document struct {
	Path string
}

// Bytes reads the rendered document.
func (d *Document) Bytes() ([]byte, error) {
	return os.ReadFile(d.Path)
}

// Cleanup releases the backing file. Best-effort and safe to call twice.
func (d *Document) Cleanup() {
	if d == nil || d.Path == "" {
		return
	}
	_ = os.Remove(d.Path)
	d.Path = ""
}

// Renderer writes paginated A4 documents into a temp directory.
type Renderer struct {
	dir string // "" means the system temp dir
}

// NewRenderer creates a Renderer writing temp files under dir.
func NewRenderer(dir string) *Renderer {
	return &Renderer{dir: dir}
}

// Render paginates text into a new Document. Input is split on newlines and
// each line is word-wrapped at a fixed font size; auto page breaks handle
// pagination. Layout never propagates an error to the caller.
func (r *Renderer) Render(text string) (*Document, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "", fontSize)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			pdf.Ln(lineHeight)
			continue
		}
		pdf.MultiCell(0, lineHeight, tr(line), "", "L", false)
		if pdf.Err() {
			pdf.ClearError()
			writeChunked(pdf, tr(line))
		}
	}

	f, err := os.CreateTemp(r.dir, "checklist-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	path := f.Name()
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return nil, fmt.Errorf("close temp file: %w", err)
	}

	if err := pdf.OutputFileAndClose(path); err != nil {
		_ = os.Remove(path)
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return &Document{Path: path}, nil
}

// writeChunked emits line as fixed chunkLen slices in non-wrapping cells.
func writeChunked(pdf *fpdf.Fpdf, line string) {
	for i := 0; i < len(line); i += chunkLen {
		end := i + chunkLen
		if end > len(line) {
			end = len(line)
		}
		pdf.CellFormat(0, lineHeight, line[i:end], "", 1, "L", false, 0, "")
	}
	if pdf.Err() {
		pdf.ClearError()
	}
}
