// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-analysis/internal/analyze"
	"github.com/pdiddy/paper-analysis/internal/completion"
	"github.com/pdiddy/paper-analysis/internal/history"
	"github.com/pdiddy/paper-analysis/internal/logging"
	"github.com/pdiddy/paper-analysis/internal/metrics"
)

const pathPrompt = "请输入论文PDF文件的完整路径: "

// runAnalyze loads the configuration, which needs the credential, before
// asking for a path, so a missing key fails before any file is touched.
func (a *app) runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := a.loader.Load(a.v, userAgent())
	if err != nil {
		return err
	}
	log := logging.New(a.errOut, cfg.LogLevel)

	fmt.Fprint(a.out, pathPrompt)
	pdfPath, err := readPath(a.in)
	if err != nil {
		return fmt.Errorf("reading path: %w", err)
	}

	collector := metrics.NewCollector()
	analyzer := &analyze.Analyzer{
		Config:    cfg,
		Completer: completion.NewOpenAIClient(cfg.AIConfig),
		Metrics:   collector,
		Logger:    log,
		Out:       a.out,
	}

	if cfg.HistoryDB != "" {
		store, err := history.Open(cfg.HistoryDB)
		if err != nil {
			fmt.Fprintf(a.errOut, "warning: history disabled: %v\n", err)
		} else {
			defer store.Close()
			analyzer.Recorder = store
		}
	}

	_, runErr := analyzer.Run(cmd.Context(), pdfPath)

	if err := collector.Flush(cfg.MetricsFile); err != nil {
		fmt.Fprintf(a.errOut, "warning: %v\n", err)
	}
	return runErr
}

// readPath reads one line and trims surrounding whitespace. End of input
// without a newline yields whatever was read, possibly "".
func readPath(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
