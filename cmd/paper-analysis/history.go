// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-analysis/internal/config"
	"github.com/pdiddy/paper-analysis/internal/history"
	"github.com/pdiddy/paper-analysis/pkg/types"
)

func (a *app) historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded analysis runs",
		Long: `History lists the runs recorded in the history database, newest first.
Recording is enabled by setting history_db in the config file or passing
--history-db.`,
		Args: cobra.NoArgs,
		RunE: a.runHistory,
	}
	cmd.Flags().Bool("json", false, "print runs as a JSON array")
	cmd.Flags().Int("limit", history.DefaultLimit, "maximum number of runs to list")

	export := &cobra.Command{
		Use:   "export",
		Short: "Write every recorded run as YAML or JSON",
		Args:  cobra.NoArgs,
		RunE:  a.runHistoryExport,
	}
	export.Flags().String("format", "yaml", "output format: yaml or json")

	cmd.AddCommand(export)
	return cmd
}

func (a *app) openHistory() (*history.Store, error) {
	path := a.v.GetString(config.KeyHistoryDB)
	if path == "" {
		return nil, types.Wrap(types.KindConfiguration, "opening history",
			errors.New("history is disabled; set history_db or pass --history-db"))
	}
	return history.Open(path)
}

func (a *app) runHistory(cmd *cobra.Command, args []string) error {
	asJSON, _ := cmd.Flags().GetBool("json")
	limit, _ := cmd.Flags().GetInt("limit")

	store, err := a.openHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.List(cmd.Context(), limit)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if asJSON {
		if runs == nil {
			runs = []types.Analysis{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	}

	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return nil
	}
	for _, r := range runs {
		fmt.Fprintf(w, "%s  %-14s  %3d pages  %s", r.CreatedAt.Local().Format(time.DateTime), r.Status, r.Pages, r.PDFPath)
		if r.OutputPath != "" {
			fmt.Fprintf(w, " -> %s", r.OutputPath)
		}
		fmt.Fprintln(w)
	}
	return nil
}

func (a *app) runHistoryExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	store, err := a.openHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	switch format {
	case "yaml":
		return store.ExportYAML(cmd.Context(), cmd.OutOrStdout())
	case "json":
		return store.ExportJSON(cmd.Context(), cmd.OutOrStdout())
	default:
		return fmt.Errorf("unknown format %q: use yaml or json", format)
	}
}
