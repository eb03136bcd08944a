package main

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/covariate-cli/internal/config"
	"github.com/sells-group/covariate-cli/internal/fetch"
	"github.com/sells-group/covariate-cli/internal/vector"
	"github.com/sells-group/covariate-cli/pkg/overpass"
	"golang.org/x/time/rate"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download OSM layers and remote rasters for a run",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("fetch"); err != nil {
			return err
		}
		ctx := cmd.Context()

		if err := fetchRemoteFiles(cmd, cfg); err != nil {
			return err
		}

		bbox, err := studyBBox(cfg)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(cfg.Overpass.CacheDir, 0o755); err != nil {
			return eris.Wrapf(err, "fetch: cache dir %s", cfg.Overpass.CacheDir)
		}

		client := overpass.NewClient(
			overpass.WithBaseURL(cfg.Overpass.BaseURL),
			overpass.WithRateLimit(rate.Every(time.Duration(cfg.Overpass.RateEverySec*float64(time.Second))), 1),
			overpass.WithRetries(cfg.Overpass.Retries),
		)

		for name, lc := range map[string]config.LayerConfig{
			"roads":     cfg.Road,
			"tourism":   cfg.Tourism,
			"buildings": cfg.Building,
		} {
			if lc.OSMKey == "" || lc.Path != "" {
				continue
			}
			resp, err := client.Query(ctx, overpass.Query{
				BBox:    bbox,
				Filters: []overpass.TagFilter{{Key: lc.OSMKey, Value: lc.OSMValue}},
				Timeout: cfg.Overpass.TimeoutSecs,
			})
			if err != nil {
				return eris.Wrapf(err, "fetch %s", name)
			}
			path := cachePath(cfg, name)
			if err := overpass.SaveResponse(resp, path); err != nil {
				return err
			}
			zap.L().Info("layer fetched",
				zap.String("layer", name),
				zap.Int("elements", len(resp.Elements)),
				zap.String("path", path),
			)
		}

		return nil
	},
}

// studyBBox computes the geographic bounding box of the boundary layer
// for Overpass queries.
func studyBBox(cfg *config.Config) (overpass.BBox, error) {
	boundary, err := loadShapefileLayer("boundary", cfg.Boundary.Path, cfg.Boundary.Proj4, cfg)
	if err != nil {
		return overpass.BBox{}, err
	}
	geographic, err := vector.Reproject(boundary, vector.GeographicProj4)
	if err != nil {
		return overpass.BBox{}, err
	}
	minX, minY, maxX, maxY, err := geographic.Bounds()
	if err != nil {
		return overpass.BBox{}, err
	}
	return overpass.BBox{South: minY, West: minX, North: maxY, East: maxX}, nil
}

// fetchRemoteFiles downloads the boundary archive and DEM when the
// config names URLs and the local files are missing.
func fetchRemoteFiles(cmd *cobra.Command, cfg *config.Config) error {
	ctx := cmd.Context()
	web := fetch.NewHTTPDownloader(fetch.HTTPOptions{})
	mirror := fetch.NewFTPDownloader(fetch.FTPOptions{})

	download := func(rawURL, dest string) error {
		if strings.HasPrefix(rawURL, "ftp://") {
			_, err := mirror.DownloadToFile(ctx, rawURL, dest)
			return err
		}
		_, err := web.DownloadToFile(ctx, rawURL, dest)
		return err
	}

	if cfg.Boundary.URL != "" && !fileExists(cfg.Boundary.Path) {
		archive := cfg.Boundary.Path + ".zip"
		if err := download(cfg.Boundary.URL, archive); err != nil {
			return eris.Wrap(err, "fetch boundary")
		}
		if _, err := fetch.ExtractZIP(archive, filepath.Dir(cfg.Boundary.Path)); err != nil {
			return err
		}
		zap.L().Info("boundary downloaded", zap.String("path", cfg.Boundary.Path))
	}

	if cfg.DEM.URL != "" && !fileExists(cfg.DEM.Path) {
		if strings.EqualFold(filepath.Ext(cfg.DEM.URL), ".zip") {
			archive := cfg.DEM.Path + ".zip"
			if err := download(cfg.DEM.URL, archive); err != nil {
				return eris.Wrap(err, "fetch dem")
			}
			extracted, err := fetch.ExtractZIPByExt(archive, ".asc", filepath.Dir(cfg.DEM.Path))
			if err != nil {
				return err
			}
			if extracted != cfg.DEM.Path {
				if err := os.Rename(extracted, cfg.DEM.Path); err != nil {
					return eris.Wrap(err, "fetch: move dem")
				}
			}
		} else if err := download(cfg.DEM.URL, cfg.DEM.Path); err != nil {
			return eris.Wrap(err, "fetch dem")
		}
		zap.L().Info("dem downloaded", zap.String("path", cfg.DEM.Path))
	}

	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func init() {
	rootCmd.AddCommand(fetchCmd)
}
