// Package normalize standardizes raster values for use as regression
// covariates.
package normalize

import (
	"github.com/rotisserie/eris"
	"gonum.org/v1/gonum/stat"

	"github.com/sells-group/covariate-cli/internal/raster"
)

// ZScore returns (v - mean) / stddev for every data cell, with mean and
// stddev computed over the non-NoData cells. NoData cells stay NoData.
// Fails with ErrDegenerateInput for a constant raster.
func ZScore(r *raster.Raster) (*raster.Raster, error) {
	valid := r.ValidValues()
	if len(valid) == 0 {
		return nil, eris.Wrap(raster.ErrDegenerateInput, "normalize: no valid cells")
	}

	mean, std := stat.MeanStdDev(valid, nil)
	if std == 0 || len(valid) == 1 {
		return nil, eris.Wrapf(raster.ErrDegenerateInput,
			"normalize: zero variance over %d cells (mean %g)", len(valid), mean)
	}

	return r.Apply(func(v float64) float64 { return (v - mean) / std }), nil
}
