package textextract

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// charsPerPage approximates page count for sources without page
// structure (plain text uploads).
const charsPerPage = 3000

// Result is the full extracted text of one stored file.
type Result struct {
	Text  string
	Pages int
}

// FromReader extracts text from a stored file. PDF files are parsed
// page by page; anything else is treated as UTF-8 plain text.
func FromReader(r io.Reader, storageRef string) (*Result, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read source: %w", err)
	}

	if strings.ToLower(filepath.Ext(storageRef)) == ".pdf" {
		return fromPDF(content)
	}

	return fromPlainText(content), nil
}

func fromPDF(content []byte) (*Result, error) {
	reader := bytes.NewReader(content)

	pdfReader, err := pdf.NewReader(reader, reader.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}

	numPages := pdfReader.NumPage()
	var sb strings.Builder

	for i := 1; i <= numPages; i++ {
		page := pdfReader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to get text from page %d: %w", i, err)
		}

		sb.WriteString(text)
		sb.WriteString("\n\n")
	}

	return &Result{
		Text:  strings.TrimSpace(sb.String()),
		Pages: numPages,
	}, nil
}

func fromPlainText(content []byte) *Result {
	text := strings.TrimSpace(string(content))

	pages := (len(text) + charsPerPage - 1) / charsPerPage
	if pages < 1 {
		pages = 1
	}

	return &Result{Text: text, Pages: pages}
}
