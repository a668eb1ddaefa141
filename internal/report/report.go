// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report names and writes analysis result files.
package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/paper-analysis/pkg/types"
)

// Suffix is appended to the input file's stem to form the output name.
const Suffix = "_analysis.txt"

// OutputName derives the result file name from a PDF path: the base name with
// its last extension removed, followed by Suffix. "paper1.pdf" becomes
// "paper1_analysis.txt" and "a.b.pdf" becomes "a.b_analysis.txt".
func OutputName(pdfPath string) string {
	base := filepath.Base(pdfPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" {
		// Dotfiles such as ".pdf" have no stem; keep the whole name.
		stem = base
	}
	return stem + Suffix
}

// Write stores text in dir/name, replacing any existing file, and returns the
// path written. The content is written once, as-is, with no framing.
func Write(dir, name, text string) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", types.Wrap(types.KindWrite, "creating output directory", err)
	}

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", types.Wrap(types.KindWrite, "creating output file", err)
	}

	if _, err := io.WriteString(f, text); err != nil {
		f.Close()
		return "", types.Wrap(types.KindWrite, "writing output file", fmt.Errorf("%s: %w", path, err))
	}
	if err := f.Close(); err != nil {
		return "", types.Wrap(types.KindWrite, "closing output file", fmt.Errorf("%s: %w", path, err))
	}
	return path, nil
}
