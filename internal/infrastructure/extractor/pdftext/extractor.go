package pdftext

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

// Extractor is the local text extraction engine used when no cloud OCR is
// configured. It reads the embedded text layer of PDFs and passes plain
// text through; scanned images need the cloud engine.
type Extractor struct{}

func New() *Extractor {
	return &Extractor{}
}

func (e *Extractor) ExtractText(ctx context.Context, content []byte, mimeType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(content) == 0 {
		return "", fmt.Errorf("empty document content")
	}

	switch {
	case mimeType == "application/pdf":
		return extractPDF(content)
	case strings.HasPrefix(mimeType, "text/"):
		if !utf8.Valid(content) {
			return "", fmt.Errorf("text document is not valid utf-8")
		}
		return strings.TrimSpace(string(content)), nil
	default:
		return "", fmt.Errorf("unsupported mime type %q for local extraction", mimeType)
	}
}

func extractPDF(content []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	textReader, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("read pdf text layer: %w", err)
	}

	var b strings.Builder
	if _, err := io.Copy(&b, textReader); err != nil {
		return "", fmt.Errorf("copy pdf text: %w", err)
	}

	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", fmt.Errorf("pdf has no text layer")
	}
	return text, nil
}
