// Package document loads requirement documents (job descriptions) from disk.
//
// Plain text and Markdown files are read as-is. PDF files are converted to
// plain text page by page; pages without extractable text are skipped.
package document

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	rlerrors "github.com/matzehuels/repolens/pkg/errors"
)

// Extensions lists the supported file extensions.
var Extensions = []string{".txt", ".md", ".markdown", ".pdf"}

// Load returns the normalized text of the document at path.
func Load(path string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return "", rlerrors.New(rlerrors.ErrCodeFileNotFound, "document not found: %s", path)
		}
		return "", fmt.Errorf("stat document: %w", err)
	}

	var (
		text string
		err  error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".txt", ".md", ".markdown", "":
		text, err = readText(path)
	case ".pdf":
		text, err = readPDF(path)
	default:
		return "", rlerrors.New(rlerrors.ErrCodeUnsupported, "unsupported document type %q (want one of %s)", ext, strings.Join(Extensions, ", "))
	}
	if err != nil {
		return "", err
	}

	text = Clean(text)
	if text == "" {
		return "", rlerrors.New(rlerrors.ErrCodeInvalidInput, "document %s has no text", path)
	}
	return text, nil
}

// Clean trims every line and drops blank ones.
func Clean(text string) string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	out := lines[:0]
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

func readText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read document: %w", err)
	}
	return string(data), nil
}

func readPDF(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", rlerrors.Wrap(rlerrors.ErrCodeInvalidInput, err, "open PDF %s", path)
	}
	defer f.Close()

	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		b.WriteString(text)
		b.WriteString("\n")
	}
	return b.String(), nil
}
