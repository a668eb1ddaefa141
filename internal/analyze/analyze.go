// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package analyze runs the paper analysis pipeline: extract the PDF text,
// format the prompt, request the completion and write the result file.
package analyze

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/pdiddy/paper-analysis/internal/completion"
	"github.com/pdiddy/paper-analysis/internal/metrics"
	"github.com/pdiddy/paper-analysis/internal/pdftext"
	"github.com/pdiddy/paper-analysis/internal/prompt"
	"github.com/pdiddy/paper-analysis/internal/report"
	"github.com/pdiddy/paper-analysis/pkg/types"
)

// Recorder persists finished runs. *history.Store implements it.
type Recorder interface {
	Record(ctx context.Context, a types.Analysis) (types.Analysis, error)
}

// Metrics observes stage durations and finished runs. *metrics.Collector
// implements it.
type Metrics interface {
	ObserveStage(stage string, d time.Duration)
	RecordRun(a types.Analysis)
}

// Analyzer holds the dependencies of one analysis. Config and Completer are
// required; the rest default to no-ops (Out to io.Discard).
type Analyzer struct {
	Config    types.AnalysisConfig
	Completer completion.Completer
	Recorder  Recorder
	Metrics   Metrics
	Logger    *slog.Logger
	Out       io.Writer
}

// Run analyzes the PDF at pdfPath and writes the result file. It stops at
// the first failure; the returned error carries the failure Kind. The
// output file is opened only after the completion succeeded, so a failed
// run leaves any earlier result untouched. The returned Analysis describes
// the run whether it succeeded or not.
func (a *Analyzer) Run(ctx context.Context, pdfPath string) (run types.Analysis, err error) {
	out := a.Out
	if out == nil {
		out = io.Discard
	}
	log := a.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	run = types.Analysis{
		PDFPath:   pdfPath,
		Model:     a.Config.Model,
		CreatedAt: time.Now().UTC(),
	}
	defer func() {
		run.Status = types.StatusFor(err)
		if err != nil {
			run.Error = err.Error()
		}
		run = a.finish(ctx, log, run)
	}()

	// Checked before the first progress line so a bad path prints nothing
	// else; Extract repeats the check for its other callers.
	if err := pdftext.CheckPath(pdfPath); err != nil {
		return run, err
	}

	fmt.Fprintln(out, "正在提取论文文本...")
	start := time.Now()
	doc, err := pdftext.Extract(pdfPath)
	a.observe(metrics.StageExtract, time.Since(start))
	if err != nil {
		return run, err
	}
	text := pdftext.Text(doc)
	run.Pages = len(doc.Pages)
	run.TextChars = utf8.RuneCountInString(text)
	log.Debug("extracted text", "path", pdfPath, "pages", run.Pages, "chars", run.TextChars)

	fmt.Fprintln(out, "正在使用GPT分析论文...")
	p := prompt.Format(text)
	run.PromptChars = utf8.RuneCountInString(p)
	run.Truncated = run.TextChars > prompt.MaxChars
	if run.Truncated {
		log.Info("paper text truncated", "chars", run.TextChars, "kept", prompt.MaxChars)
	}

	start = time.Now()
	res, err := a.Completer.Complete(ctx, p)
	a.observe(metrics.StageComplete, time.Since(start))
	if err != nil {
		if types.KindOf(err) == "" {
			err = types.Wrap(types.KindRemoteService, "chat completion", err)
		}
		return run, err
	}
	run.PromptTokens = res.PromptTokens
	run.CompletionTokens = res.CompletionTokens
	log.Debug("completion received", "model", res.Model,
		"prompt_tokens", res.PromptTokens, "completion_tokens", res.CompletionTokens)

	start = time.Now()
	path, err := report.Write(a.Config.OutputDir, report.OutputName(pdfPath), res.Content)
	a.observe(metrics.StageWrite, time.Since(start))
	if err != nil {
		return run, err
	}
	run.OutputPath = path

	fmt.Fprintf(out, "分析完成！结果已保存到 %s\n", path)
	return run, nil
}

func (a *Analyzer) observe(stage string, d time.Duration) {
	if a.Metrics != nil {
		a.Metrics.ObserveStage(stage, d)
	}
}

// finish hands the run to the recorder and metrics. A recording failure is
// logged and does not change the run's outcome.
func (a *Analyzer) finish(ctx context.Context, log *slog.Logger, run types.Analysis) types.Analysis {
	if a.Recorder != nil {
		// Record even when ctx was cancelled mid-run.
		recorded, err := a.Recorder.Record(context.WithoutCancel(ctx), run)
		if err != nil {
			log.Warn("recording analysis failed", "error", err)
		} else {
			run = recorded
		}
	}
	if a.Metrics != nil {
		a.Metrics.RecordRun(run)
	}
	log.Info("analysis finished", "status", run.Status, "path", run.PDFPath, "output", run.OutputPath)
	return run
}
