// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pdftext extracts the plain text of a PDF, page by page.
package pdftext

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/pdiddy/paper-analysis/pkg/types"
)

// pageSource is the view of a parsed PDF the extractor walks. Pages are
// numbered from 1.
type pageSource interface {
	NumPage() int
	PageText(n int) (string, error)
}

// readerSource adapts *pdf.Reader to pageSource.
type readerSource struct {
	r *pdf.Reader
}

func (s readerSource) NumPage() int { return s.r.NumPage() }

// PageText returns "" for a null page object; the parser yields no text for it.
func (s readerSource) PageText(n int) (string, error) {
	p := s.r.Page(n)
	if p.V.IsNull() {
		return "", nil
	}
	return p.GetPlainText(nil)
}

// CheckPath verifies that path names an existing regular file.
func CheckPath(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return types.Wrap(types.KindPath, "checking "+path, err)
	}
	if !info.Mode().IsRegular() {
		return types.Wrap(types.KindPath, "checking "+path, fmt.Errorf("not a regular file"))
	}
	return nil
}

// Extract opens the PDF at path and returns the text of every page in page
// order. A missing path is a path error; any parse or per-page failure is an
// extraction error and no partial document is returned.
func Extract(path string) (types.Document, error) {
	if err := CheckPath(path); err != nil {
		return types.Document{}, err
	}

	f, err := os.Open(path)
	if err != nil {
		return types.Document{}, types.Wrap(types.KindPath, "opening "+path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return types.Document{}, types.Wrap(types.KindPath, "opening "+path, err)
	}

	pages, err := readPages(f, info.Size())
	if err != nil {
		return types.Document{}, types.Wrap(types.KindExtraction, "reading "+path, err)
	}

	return types.Document{Path: path, Pages: pages}, nil
}

// Text joins the page texts in order. No separator is inserted, so a page
// without trailing whitespace runs into the next one.
func Text(doc types.Document) string {
	return strings.Join(doc.Pages, "")
}

// readPages parses the PDF and collects page texts. The parser panics on some
// malformed input; the panic is returned as an error.
func readPages(r io.ReaderAt, size int64) (pages []string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			pages = nil
			err = fmt.Errorf("malformed PDF: %v", rec)
		}
	}()

	reader, err := pdf.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("parsing PDF: %w", err)
	}
	return collectPages(readerSource{r: reader})
}

func collectPages(src pageSource) ([]string, error) {
	n := src.NumPage()
	pages := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		text, err := src.PageText(i)
		if err != nil {
			return nil, fmt.Errorf("extracting page %d: %w", i, err)
		}
		pages = append(pages, text)
	}
	return pages, nil
}
