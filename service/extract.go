package service

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ErrNoExtractableText is returned when a document parses but yields no page
// text. Callers surface it as a user-facing rejection; it is never retried.
var ErrNoExtractableText = errors.New("document contains no extractable text")

// PageProvider turns an uploaded document into an ordered sequence of page
// texts. The pipeline itself only ever sees the in-memory page strings.
type PageProvider interface {
	Pages(r io.ReaderAt, size int64) ([]string, error)
}

// PDFExtractor extracts per-page text from PDF bytes.
type PDFExtractor struct{}

func NewPDFExtractor() *PDFExtractor {
	return &PDFExtractor{}
}

// Pages returns one string per page that contains text. Pages that fail to
// decode are skipped; a document where every page is empty or unreadable
// yields ErrNoExtractableText.
func (e *PDFExtractor) Pages(r io.ReaderAt, size int64) (pages []string, err error) {
	// The parser panics on some malformed files instead of returning an
	// error; convert that into a normal extraction failure.
	defer func() {
		if rec := recover(); rec != nil {
			pages = nil
			err = fmt.Errorf("pdf parsing failed: %v", rec)
		}
	}()

	reader, err := pdf.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}

	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if strings.TrimSpace(text) != "" {
			pages = append(pages, text)
		}
	}

	if len(pages) == 0 {
		return nil, ErrNoExtractableText
	}
	return pages, nil
}
