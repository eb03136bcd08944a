package rasterio

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
)

// LayerMeta describes one grid file in a layer manifest: the metadata an
// ASCII raster cannot carry itself.
type LayerMeta struct {
	Name        string  `json:"name"`
	Path        string  `json:"path"`
	Description string  `json:"description,omitempty"`
	Proj4       string  `json:"proj4"`
	NoData      float64 `json:"no_data"`
}

// Manifest maps layer names to their grid files and metadata.
type Manifest map[string]LayerMeta

// ReadManifest loads a layers.json file.
func ReadManifest(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "rasterio: read manifest %s", path)
	}

	m := Manifest{}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, eris.Wrapf(err, "rasterio: parse manifest %s", path)
	}
	return m, nil
}

// WriteManifest stores a layers.json file.
func WriteManifest(m Manifest, path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return eris.Wrap(err, "rasterio: marshal manifest")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "rasterio: write manifest %s", path)
	}
	return nil
}

// ReadLayer loads the named layer's grid using the manifest's CRS.
func (m Manifest) ReadLayer(name string) (*LayerMeta, error) {
	meta, ok := m[name]
	if !ok {
		return nil, eris.Errorf("rasterio: layer %q not in manifest", name)
	}
	return &meta, nil
}
