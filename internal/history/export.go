// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package history

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paper-analysis/pkg/types"
)

// ExportYAML writes every recorded run to w as a YAML sequence, newest first.
func (s *Store) ExportYAML(ctx context.Context, w io.Writer) error {
	runs, err := s.exportRuns(ctx)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(runs); err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return enc.Close()
}

// ExportJSON writes every recorded run to w as an indented JSON array,
// newest first.
func (s *Store) ExportJSON(ctx context.Context, w io.Writer) error {
	runs, err := s.exportRuns(ctx)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(runs); err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return nil
}

func (s *Store) exportRuns(ctx context.Context) ([]types.Analysis, error) {
	runs, err := s.query(ctx, -1)
	if err != nil {
		return nil, fmt.Errorf("querying for export: %w", err)
	}
	if runs == nil {
		runs = []types.Analysis{}
	}
	return runs, nil
}
