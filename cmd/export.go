package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/covariate-cli/internal/store"
)

var (
	exportFormat string
	exportDir    string
)

var exportCmd = &cobra.Command{
	Use:   "export <run-id>",
	Short: "Re-export a stored run's feature table",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("export"); err != nil {
			return err
		}
		ctx := cmd.Context()
		runID := args[0]

		st, err := store.NewSQLite(cfg.Store.Path)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		run, err := st.GetRun(ctx, runID)
		if err != nil {
			return err
		}
		if run.Status != store.RunStatusComplete {
			return eris.Errorf("run %s is %s, not complete", runID, run.Status)
		}

		table, err := st.FeaturePreview(ctx, runID, run.RowCount)
		if err != nil {
			return err
		}

		format := exportFormat
		if format == "" {
			format = cfg.Output.Format
		}
		dir := exportDir
		if dir == "" {
			dir = cfg.Output.Dir
		}

		path, err := exportTable(table, dir, format, runID)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "exported %d rows -> %s\n", len(table.Rows), path)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "", "output format: csv or xlsx (default from config)")
	exportCmd.Flags().StringVar(&exportDir, "out", "", "output directory (default from config)")
	rootCmd.AddCommand(exportCmd)
}
