package pdf

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/brogergvhs/storyd/internal/document"
)

func TestRenderWritesPDF(t *testing.T) {
	d := document.Assemble("A Winter Tale", []document.Chapter{
		{
			Number: 1,
			Label:  "A Winter Tale Ch. 1",
			Parts: []string{
				"The first paragraph of the opening chapter.",
				document.PartMarker(2),
				"A paragraph from the chapter's second page.",
			},
		},
		{
			Number: 2,
			Label:  "A Winter Tale Ch. 2",
			Parts:  []string{"The closing chapter's only paragraph."},
		},
	})

	path := filepath.Join(t.TempDir(), "out.pdf")
	if err := NewRenderer().Render(d, path); err != nil {
		t.Fatalf("render: %v", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(b), "%PDF") {
		t.Fatalf("output is not a PDF, starts with %q", string(b[:min(8, len(b))]))
	}
}

func TestRenderUnlabeledChapter(t *testing.T) {
	// single-story mode: one chapter, no label, no heading block
	d := document.Assemble("Standalone", []document.Chapter{
		{Number: 1, Parts: []string{"Only paragraph, long enough to wrap around."}},
	})

	path := filepath.Join(t.TempDir(), "standalone.pdf")
	if err := NewRenderer().Render(d, path); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !document.Exists(path) {
		t.Fatal("artifact missing")
	}
}

func TestRenderFailsOnBadPath(t *testing.T) {
	d := document.Assemble("x", []document.Chapter{{Number: 1, Parts: []string{"text"}}})

	err := NewRenderer().Render(d, filepath.Join(t.TempDir(), "no", "such", "dir", "x.pdf"))
	if err == nil {
		t.Fatal("expected error for unwritable path")
	}
}
