// Package document turns resume files into plain text.
package document

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"github.com/gen2brain/go-fitz"
)

// MinTextLength is the fewest non-space characters a usable resume has.
const MinTextLength = 20

var (
	// ErrUnsupported is returned for file types we cannot read.
	ErrUnsupported = errors.New("unsupported file format")
	// ErrTooShort is returned when a file holds too little text to analyse.
	ErrTooShort = errors.New("resume text is too short")
)

// Extensions lists the accepted file extensions.
var Extensions = []string{".txt", ".pdf"}

var (
	manyNewlines = regexp.MustCompile(`\n{3,}`)
	manySpaces   = regexp.MustCompile(` {2,}`)
	pageNumber   = regexp.MustCompile(`(?m)^[ \t]*(?:\d+|Page \d+ of \d+)[ \t]*\n`)
	bullet       = regexp.MustCompile(`(?m)^([ \t]*)[•●■◆➢→*+][ \t]*`)
)

// Supported reports whether path has an accepted extension.
func Supported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// Load reads a resume file and returns its cleaned text.
func Load(path string) (string, error) {
	var (
		text string
		err  error
	)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt":
		var data []byte
		data, err = os.ReadFile(path)
		text = string(data)
	case ".pdf":
		text, err = pdfText(path)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupported, filepath.Base(path))
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}

	return Check(Clean(text))
}

// Check rejects text with fewer than MinTextLength non-space characters.
func Check(text string) (string, error) {
	n := 0
	for _, r := range text {
		if !unicode.IsSpace(r) {
			n++
		}
	}
	if n < MinTextLength {
		return "", fmt.Errorf("%w: %d characters, need at least %d", ErrTooShort, n, MinTextLength)
	}
	return text, nil
}

func pdfText(path string) (string, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer doc.Close()

	pages := make([]string, 0, doc.NumPage())
	for i := 0; i < doc.NumPage(); i++ {
		page, err := doc.Text(i)
		if err != nil {
			return "", fmt.Errorf("extract text of page %d: %w", i+1, err)
		}
		pages = append(pages, page)
	}

	return strings.Join(pages, "\n"), nil
}

// Clean tidies extracted text: unified line endings, tabs and space runs
// collapsed, standalone page numbers dropped and bullets turned into "- ".
func Clean(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.ReplaceAll(text, "\t", " ")
	text = manySpaces.ReplaceAllString(text, " ")
	text = pageNumber.ReplaceAllString(text, "")
	text = bullet.ReplaceAllString(text, "$1- ")
	text = manyNewlines.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
