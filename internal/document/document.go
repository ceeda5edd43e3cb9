// Package document holds the assembled in-memory form of a scraped
// story and the naming rules for its on-disk artifact.
package document

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Chapter is one ordered subdivision of a story. Parts is the paragraph
// stream across all pages of the chapter; a "PART n" marker entry
// precedes the paragraphs of every page after the first. A Chapter with
// an empty Label is the implicit chapter of single-story mode and
// renders without a heading.
type Chapter struct {
	Number int
	Label  string
	Parts  []string
}

type Document struct {
	Title    string
	Chapters []Chapter
}

// Assemble builds the final document from ordered chapters.
func Assemble(title string, chapters []Chapter) Document {
	return Document{Title: title, Chapters: chapters}
}

// Empty reports whether no chapter contributed any content; empty
// documents are never written to disk.
func (d Document) Empty() bool {
	for _, c := range d.Chapters {
		if len(c.Parts) > 0 {
			return false
		}
	}
	return true
}

// PartPrefix starts every part-boundary marker entry in Chapter.Parts.
const PartPrefix = "PART "

func PartMarker(n int) string {
	return fmt.Sprintf("%s%d", PartPrefix, n)
}

// Heading is the rendered chapter heading, e.g. "Chapter 2: The Return".
func (c Chapter) Heading() string {
	return fmt.Sprintf("Chapter %d: %s", c.Number, c.Label)
}

var (
	forbiddenChars = regexp.MustCompile(`[<>:"/\\|?*]`)
	multiSpace     = regexp.MustCompile(`\s+`)
)

// SanitizeTitle turns a resolved story title into a safe, length-capped
// filename stem.
func SanitizeTitle(title string) string {
	s := forbiddenChars.ReplaceAllString(title, "")
	s = strings.TrimSpace(multiSpace.ReplaceAllString(s, " "))

	if r := []rune(s); len(r) > 200 {
		s = string(r[:200])
	}
	if s == "" {
		return "untitled"
	}

	return s
}

// OutputPath is the artifact location for a story title; its existence
// is the idempotent completion marker checked before any crawling.
func OutputPath(dir, title string) string {
	return filepath.Join(dir, SanitizeTitle(title)+".pdf")
}

func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
