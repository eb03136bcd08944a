package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/covariate-cli/internal/config"
	"github.com/sells-group/covariate-cli/internal/pipeline"
	"github.com/sells-group/covariate-cli/internal/stack"
	"github.com/sells-group/covariate-cli/internal/store"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Build the covariate feature table",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("run"); err != nil {
			return err
		}
		ctx := cmd.Context()

		st, err := store.NewSQLite(cfg.Store.Path)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		src, err := loadSources(cfg)
		if err != nil {
			return err
		}

		run, err := st.CreateRun(ctx, store.RunParams{
			Boundary: cfg.Boundary.Path,
			Proj4:    cfg.Grid.Proj4,
			CellSize: cfg.Grid.CellSize,
		})
		if err != nil {
			return err
		}
		zap.L().Info("run started", zap.String("run_id", run.ID))

		result, err := pipeline.Run(ctx, pipelineParams(cfg), src)
		if err != nil {
			if failErr := st.FailRun(ctx, run.ID, err); failErr != nil {
				zap.L().Warn("could not record failure", zap.Error(failErr))
			}
			return err
		}

		if err := st.InsertFeatures(ctx, run.ID, result.Table); err != nil {
			return err
		}
		if err := st.CompleteRun(ctx, run.ID, result.Table.Columns, len(result.Table.Rows)); err != nil {
			return err
		}

		path, err := exportTable(result.Table, cfg.Output.Dir, cfg.Output.Format, run.ID)
		if err != nil {
			return err
		}

		zap.L().Info("run complete",
			zap.String("run_id", run.ID),
			zap.Int("rows", len(result.Table.Rows)),
			zap.String("output", path),
		)
		fmt.Fprintf(cmd.OutOrStdout(), "run %s: %d rows -> %s\n", run.ID, len(result.Table.Rows), path)
		return nil
	},
}

func pipelineParams(cfg *config.Config) pipeline.Params {
	return pipeline.Params{
		Proj4:    cfg.Grid.Proj4,
		CellSize: cfg.Grid.CellSize,
		NoData:   cfg.Grid.NoData,
		Road:     pipeline.ExposureParams{Radius: cfg.Road.Radius, Sigma: cfg.Road.Sigma},
		Tourism:  pipeline.ExposureParams{Radius: cfg.Tourism.Radius, Sigma: cfg.Tourism.Sigma},
		Building: pipeline.ExposureParams{Radius: cfg.Building.Radius, Sigma: cfg.Building.Sigma},
	}
}

// exportTable writes the feature table to dir in the requested format
// and returns the output path.
func exportTable(table *stack.FeatureTable, dir, format, runID string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", eris.Wrap(err, "create output dir")
	}

	switch format {
	case "csv":
		path := filepath.Join(dir, "features_"+runID+".csv")
		f, err := os.Create(path)
		if err != nil {
			return "", eris.Wrap(err, "create csv")
		}
		defer f.Close() //nolint:errcheck
		if err := stack.WriteCSV(table, f); err != nil {
			return "", err
		}
		return path, nil
	case "xlsx":
		path := filepath.Join(dir, "features_"+runID+".xlsx")
		if err := stack.WriteXLSX(table, path); err != nil {
			return "", err
		}
		return path, nil
	default:
		return "", eris.Errorf("unknown output format %q", format)
	}
}

func init() {
	rootCmd.AddCommand(runCmd)
}
