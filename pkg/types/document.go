// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Document is a PDF identified by its filesystem path together with the
// plain text of each page, in physical page order.
type Document struct {
	// Path is the filesystem path the document was read from.
	Path string `json:"path" yaml:"path"`

	// Pages holds the extracted text of each page. A page without
	// extractable text (e.g. a scanned image) holds "".
	Pages []string `json:"pages" yaml:"pages"`
}

// AnalysisStatus records how an analysis run ended: StatusSucceeded or the
// Kind of the failure that halted it.
type AnalysisStatus string

// StatusSucceeded marks a run whose result file was written.
const StatusSucceeded AnalysisStatus = "succeeded"

// StatusFor maps a run error to its status.
func StatusFor(err error) AnalysisStatus {
	if err == nil {
		return StatusSucceeded
	}
	if kind := KindOf(err); kind != "" {
		return AnalysisStatus(kind)
	}
	return AnalysisStatus("unknown")
}

// Analysis describes one run of the pipeline over a single PDF.
type Analysis struct {
	// ID uniquely identifies the run.
	ID string `json:"id" yaml:"id"`

	// PDFPath is the input path as entered by the user.
	PDFPath string `json:"pdf_path" yaml:"pdf_path"`

	// OutputPath is the written result file. Empty when the run failed.
	OutputPath string `json:"output_path,omitempty" yaml:"output_path,omitempty"`

	// Model is the chat model the run was configured with.
	Model string `json:"model" yaml:"model"`

	// Pages is the number of pages in the document.
	Pages int `json:"pages" yaml:"pages"`

	// TextChars is the length of the extracted text in characters.
	TextChars int `json:"text_chars" yaml:"text_chars"`

	// PromptChars is the length of the formatted prompt in characters.
	PromptChars int `json:"prompt_chars" yaml:"prompt_chars"`

	// Truncated reports whether the extracted text exceeded the prompt budget.
	Truncated bool `json:"truncated" yaml:"truncated"`

	// PromptTokens and CompletionTokens are the usage reported by the endpoint.
	PromptTokens     int `json:"prompt_tokens" yaml:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens" yaml:"completion_tokens"`

	// Status is StatusSucceeded or the failure kind.
	Status AnalysisStatus `json:"status" yaml:"status"`

	// Error holds the failure message. Empty on success.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`

	// CreatedAt is when the run started (UTC).
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}
