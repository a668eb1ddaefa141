// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package analyze

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paper-analysis/internal/completion"
	"github.com/pdiddy/paper-analysis/internal/metrics"
	"github.com/pdiddy/paper-analysis/internal/pdftext"
	"github.com/pdiddy/paper-analysis/internal/pdftext/pdftest"
	"github.com/pdiddy/paper-analysis/internal/prompt"
	"github.com/pdiddy/paper-analysis/pkg/types"
)

// --- fakes ---

type fakeCompleter struct {
	content string
	err     error
	prompts []string
}

func (f *fakeCompleter) Complete(_ context.Context, p string) (completion.Result, error) {
	f.prompts = append(f.prompts, p)
	if f.err != nil {
		return completion.Result{}, f.err
	}
	return completion.Result{Content: f.content, Model: "gpt-test", PromptTokens: 42, CompletionTokens: 7}, nil
}

type fakeRecorder struct {
	runs []types.Analysis
	err  error
}

func (f *fakeRecorder) Record(_ context.Context, a types.Analysis) (types.Analysis, error) {
	if f.err != nil {
		return a, f.err
	}
	a.ID = "run-1"
	f.runs = append(f.runs, a)
	return a, nil
}

type fakeMetrics struct {
	stages []string
	runs   []types.Analysis
}

func (f *fakeMetrics) ObserveStage(stage string, _ time.Duration) { f.stages = append(f.stages, stage) }
func (f *fakeMetrics) RecordRun(a types.Analysis)                 { f.runs = append(f.runs, a) }

func newAnalyzer(t *testing.T, c completion.Completer) (*Analyzer, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	return &Analyzer{
		Config: types.AnalysisConfig{
			AIConfig:  types.AIConfig{Model: "gpt-test"},
			OutputDir: t.TempDir(),
		},
		Completer: c,
		Out:       &out,
	}, &out
}

// --- tests ---

func TestRunWritesResult(t *testing.T) {
	pdfPath := pdftest.Write(t, "paper1.pdf", pdftest.Build([]string{"IntroductionText", "ResultsText"}))
	fc := &fakeCompleter{content: "1. 主要研究目的\n- 提出新方法\n"}
	rec := &fakeRecorder{}
	m := &fakeMetrics{}

	a, out := newAnalyzer(t, fc)
	a.Recorder = rec
	a.Metrics = m

	run, err := a.Run(context.Background(), pdfPath)
	require.NoError(t, err)

	want := filepath.Join(a.Config.OutputDir, "paper1_analysis.txt")
	assert.Equal(t, want, run.OutputPath)
	data, err := os.ReadFile(want)
	require.NoError(t, err)
	assert.Equal(t, fc.content, string(data))

	assert.Equal(t, "正在提取论文文本...\n正在使用GPT分析论文...\n分析完成！结果已保存到 "+want+"\n", out.String())

	require.Len(t, fc.prompts, 1)
	assert.Contains(t, fc.prompts[0], "IntroductionText")
	assert.Contains(t, fc.prompts[0], "ResultsText")
	assert.Less(t, strings.Index(fc.prompts[0], "IntroductionText"), strings.Index(fc.prompts[0], "ResultsText"))

	assert.Equal(t, types.StatusSucceeded, run.Status)
	assert.Equal(t, "run-1", run.ID)
	assert.Equal(t, 2, run.Pages)
	assert.Equal(t, 42, run.PromptTokens)
	assert.Equal(t, 7, run.CompletionTokens)
	assert.False(t, run.Truncated)

	require.Len(t, rec.runs, 1)
	assert.Equal(t, types.StatusSucceeded, rec.runs[0].Status)
	assert.Equal(t, []string{metrics.StageExtract, metrics.StageComplete, metrics.StageWrite}, m.stages)
	require.Len(t, m.runs, 1)
}

func TestRunIsIdempotent(t *testing.T) {
	pdfPath := pdftest.Write(t, "paper.pdf", pdftest.Build([]string{"SameText"}))
	a, _ := newAnalyzer(t, &fakeCompleter{content: "确定性的分析结果"})

	first, err := a.Run(context.Background(), pdfPath)
	require.NoError(t, err)
	data1, err := os.ReadFile(first.OutputPath)
	require.NoError(t, err)

	second, err := a.Run(context.Background(), pdfPath)
	require.NoError(t, err)
	data2, err := os.ReadFile(second.OutputPath)
	require.NoError(t, err)

	assert.Equal(t, first.OutputPath, second.OutputPath)
	assert.Equal(t, data1, data2)
}

func TestRunMissingFile(t *testing.T) {
	fc := &fakeCompleter{content: "unused"}
	rec := &fakeRecorder{}
	a, out := newAnalyzer(t, fc)
	a.Recorder = rec

	run, err := a.Run(context.Background(), "/no/such/file.pdf")
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrPath)

	assert.Empty(t, fc.prompts, "no request for a missing file")
	assert.Empty(t, out.String())
	entries, err := os.ReadDir(a.Config.OutputDir)
	require.NoError(t, err)
	assert.Empty(t, entries)

	assert.Equal(t, types.AnalysisStatus("path"), run.Status)
	require.Len(t, rec.runs, 1)
	assert.NotEmpty(t, rec.runs[0].Error)
}

func TestRunExtractionFailure(t *testing.T) {
	pdfPath := pdftest.Write(t, "broken.pdf", []byte("not a pdf at all"))
	fc := &fakeCompleter{content: "unused"}
	a, out := newAnalyzer(t, fc)

	_, err := a.Run(context.Background(), pdfPath)
	assert.ErrorIs(t, err, types.ErrExtraction)
	assert.Empty(t, fc.prompts)
	assert.Equal(t, "正在提取论文文本...\n", out.String())
}

func TestRunRemoteFailureKeepsExistingOutput(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"tagged", types.Wrap(types.KindRemoteService, "chat completion", errors.New("401 Unauthorized"))},
		{"untagged", errors.New("connection reset by peer")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pdfPath := pdftest.Write(t, "paper1.pdf", pdftest.Build([]string{"Body"}))
			a, out := newAnalyzer(t, &fakeCompleter{err: tt.err})

			existing := filepath.Join(a.Config.OutputDir, "paper1_analysis.txt")
			require.NoError(t, os.WriteFile(existing, []byte("previous analysis"), 0o644))

			run, err := a.Run(context.Background(), pdfPath)
			require.Error(t, err)
			assert.ErrorIs(t, err, types.ErrRemoteService)
			assert.Empty(t, run.OutputPath)

			data, err := os.ReadFile(existing)
			require.NoError(t, err)
			assert.Equal(t, "previous analysis", string(data))
			assert.NotContains(t, out.String(), "分析完成")
		})
	}
}

func TestRunWriteFailure(t *testing.T) {
	pdfPath := pdftest.Write(t, "paper.pdf", pdftest.Build([]string{"Body"}))
	a, _ := newAnalyzer(t, &fakeCompleter{content: "result"})

	blocker := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))
	a.Config.OutputDir = blocker

	run, err := a.Run(context.Background(), pdfPath)
	assert.ErrorIs(t, err, types.ErrWrite)
	assert.Equal(t, types.AnalysisStatus("write"), run.Status)
}

func TestRunTruncatesLongText(t *testing.T) {
	long := strings.Repeat("x", prompt.MaxChars+5000)
	pdfPath := pdftest.Write(t, "long.pdf", pdftest.Build([]string{long}))
	fc := &fakeCompleter{content: "ok"}
	a, _ := newAnalyzer(t, fc)

	run, err := a.Run(context.Background(), pdfPath)
	require.NoError(t, err)

	assert.True(t, run.Truncated)
	assert.GreaterOrEqual(t, run.TextChars, prompt.MaxChars+5000)

	doc, err := pdftext.Extract(pdfPath)
	require.NoError(t, err)
	head, truncated := prompt.Truncate(pdftext.Text(doc), prompt.MaxChars)
	require.True(t, truncated)
	require.Equal(t, prompt.MaxChars, utf8.RuneCountInString(head))

	require.Len(t, fc.prompts, 1)
	assert.True(t, strings.HasSuffix(fc.prompts[0], "论文内容：\n"+head+"\n"),
		"prompt must end with exactly the first MaxChars characters of the extracted text")
}

func TestRunRecorderFailureDoesNotFailRun(t *testing.T) {
	pdfPath := pdftest.Write(t, "paper.pdf", pdftest.Build([]string{"Body"}))
	a, _ := newAnalyzer(t, &fakeCompleter{content: "result"})
	a.Recorder = &fakeRecorder{err: errors.New("database is locked")}

	run, err := a.Run(context.Background(), pdfPath)
	require.NoError(t, err)
	assert.Equal(t, types.StatusSucceeded, run.Status)
	assert.FileExists(t, run.OutputPath)
}
