// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the paper-analysis CLI. It asks for
// the path of a PDF, sends the paper text to a chat model and saves the
// structured summary as <name>_analysis.txt.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/paper-analysis/internal/config"
	"github.com/pdiddy/paper-analysis/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

func userAgent() string {
	return "paper-analysis/" + version
}

// app carries the streams and configuration sources of one invocation.
type app struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer

	v      *viper.Viper
	loader config.Loader

	// home anchors the default config file search path.
	home string
}

func newApp(in io.Reader, out, errOut io.Writer) *app {
	home, _ := os.UserHomeDir()
	return &app{
		in:     in,
		out:    out,
		errOut: errOut,
		v:      viper.New(),
		loader: config.NewLoader(),
		home:   home,
	}
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "paper-analysis",
		Short: "Summarize an academic paper PDF with a chat model",
		Long: `paper-analysis prompts for the path of a PDF, extracts its text and asks a
chat model for a structured summary: research purpose and contribution,
methodology, key findings, and limitations with future work. The summary is
saved as <name>_analysis.txt in the output directory.

The API key is read from OPENAI_API_KEY, a .env file, or .secrets/openai-api-key.`,
		Args:              cobra.NoArgs,
		SilenceErrors:     true,
		SilenceUsage:      true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return a.initConfig(cmd) },
		RunE:              a.runAnalyze,
	}
	root.SetIn(a.in)
	root.SetOut(a.out)
	root.SetErr(a.errOut)

	pf := root.PersistentFlags()
	pf.String("config", "", "config file (default: ./paper-analysis.yaml or ~/.config/paper-analysis/paper-analysis.yaml)")
	pf.String("env-file", "", "dotenv file holding OPENAI_API_KEY")
	pf.String("model", config.DefaultModel, "chat model")
	pf.String("base-url", "", "API base URL for OpenAI-compatible endpoints")
	pf.String("output-dir", ".", "directory for result files")
	pf.String("history-db", "", "SQLite file recording analysis runs (empty disables history)")
	pf.String("metrics-file", "", "write Prometheus metrics to this file after each run")
	pf.String("log-level", "info", "diagnostic log level: debug, info, warn, error")

	for key, flag := range map[string]string{
		config.KeyEnvFile:     "env-file",
		config.KeyModel:       "model",
		config.KeyBaseURL:     "base-url",
		config.KeyOutputDir:   "output-dir",
		config.KeyHistoryDB:   "history-db",
		config.KeyMetricsFile: "metrics-file",
		config.KeyLogLevel:    "log-level",
	} {
		_ = a.v.BindPFlag(key, pf.Lookup(flag))
	}

	root.AddCommand(a.versionCmd(), a.historyCmd())
	return root
}

// initConfig reads the optional config file and PAPER_ANALYSIS_* variables.
// A missing default config file is fine; an unreadable one is not.
func (a *app) initConfig(cmd *cobra.Command) error {
	config.SetDefaults(a.v)

	cfgFile, _ := cmd.Flags().GetString("config")
	if cfgFile != "" {
		a.v.SetConfigFile(cfgFile)
	} else {
		a.v.SetConfigName("paper-analysis")
		a.v.SetConfigType("yaml")
		a.v.AddConfigPath(".")
		if a.home != "" {
			a.v.AddConfigPath(filepath.Join(a.home, ".config", "paper-analysis"))
		}
	}

	a.v.SetEnvPrefix("PAPER_ANALYSIS")
	a.v.AutomaticEnv()

	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return nil
		}
		return types.Wrap(types.KindConfiguration, "reading config file", err)
	}
	fmt.Fprintln(a.errOut, "Using config file:", a.v.ConfigFileUsed())
	return nil
}

// execute runs the CLI and returns the process exit code. Every failure
// exits with 1.
func (a *app) execute(ctx context.Context, args []string) int {
	cmd := a.rootCmd()
	cmd.SetArgs(args)
	if err := cmd.ExecuteContext(ctx); err != nil {
		if types.KindOf(err) != "" {
			fmt.Fprintln(a.out, describe(err))
		} else {
			fmt.Fprintln(a.errOut, "Error:", err)
		}
		return 1
	}
	return 0
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := newApp(os.Stdin, os.Stdout, os.Stderr).execute(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}
