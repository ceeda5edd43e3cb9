// Package pdf renders an assembled story document to a paginated PDF.
package pdf

import (
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/brogergvhs/storyd/internal/document"
)

type Renderer struct{}

func NewRenderer() *Renderer {
	return &Renderer{}
}

// Render writes the document to path: a title block, then per chapter an
// optional heading (labeled chapters only), part headings for page
// boundaries, and one body block per paragraph.
func (r *Renderer) Render(doc document.Document, path string) error {
	f := fpdf.New("P", "mm", "A4", "")
	f.SetMargins(22, 24, 22)
	f.SetAutoPageBreak(true, 24)
	f.AddPage()

	// core fonts are cp1252; map what we can, drop the rest
	tr := f.UnicodeTranslatorFromDescriptor("")

	f.SetFont("Helvetica", "B", 20)
	f.MultiCell(0, 9, tr(doc.Title), "", "C", false)
	f.Ln(7)

	for _, ch := range doc.Chapters {
		if ch.Label != "" {
			f.SetFont("Helvetica", "B", 15)
			f.MultiCell(0, 8, tr(ch.Heading()), "", "L", false)
			f.Ln(5)
		}

		for _, part := range ch.Parts {
			if strings.HasPrefix(part, document.PartPrefix) {
				f.SetFont("Helvetica", "B", 12)
				f.MultiCell(0, 7, tr(part), "", "L", false)
				f.Ln(3)
				continue
			}

			f.SetFont("Helvetica", "", 11)
			f.MultiCell(0, 5.5, tr(part), "", "L", false)
			f.Ln(2.5)
		}
	}

	if err := f.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("pdf: %w", err)
	}

	return nil
}
