package raster

import "github.com/rotisserie/eris"

// Error kinds shared by every pipeline stage. Stages wrap these with
// eris.Wrapf to add the offending layer names, dimensions, or proj strings;
// callers match with eris.Is.
var (
	// ErrShapeMismatch reports a value array whose dimensions disagree with
	// its grid.
	ErrShapeMismatch = eris.New("shape mismatch")

	// ErrCRSMismatch reports mixed coordinate systems reaching a stage that
	// assumes aligned inputs. The pipeline never reprojects silently.
	ErrCRSMismatch = eris.New("crs mismatch")

	// ErrGridMismatch reports an attempt to combine rasters on different grids.
	ErrGridMismatch = eris.New("grid mismatch")

	// ErrDegenerateInput reports a zero-variance normalization target.
	ErrDegenerateInput = eris.New("degenerate input")

	// ErrEmptyGeometryResult reports a vector layer with no geometries. It is
	// propagated rather than treated as "zero everywhere".
	ErrEmptyGeometryResult = eris.New("empty geometry result")
)
