package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/verte-zerg/tachy/internal/store"
)

var exportFormat string

type exportDoc struct {
	Learner  string         `json:"learner" yaml:"learner"`
	Profiles store.Profiles `json:"profiles" yaml:"profiles"`
}

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Print every normalized profile of the learner",
		Args:  cobra.NoArgs,
		RunE:  runExportCmd,
	}
	cmd.Flags().StringVar(&exportFormat, "format", "json", "output format (json, yaml)")
	return cmd
}

func runExportCmd(cmd *cobra.Command, _ []string) error {
	if exportFormat != "json" && exportFormat != "yaml" {
		return fmt.Errorf("--format must be json or yaml")
	}
	ctx := cmd.Context()
	return withExistingLearner(ctx, cmd.OutOrStdout(), func(st *store.Store, learner string) error {
		profiles, err := st.Profiles(ctx, learner)
		if err != nil {
			return fmt.Errorf("failed to load profiles: %w", err)
		}
		return writeExport(cmd.OutOrStdout(), exportFormat, exportDoc{Learner: rootLearner, Profiles: profiles})
	})
}

func writeExport(w io.Writer, format string, doc exportDoc) error {
	if format == "yaml" {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode json: %w", err)
	}
	return nil
}
