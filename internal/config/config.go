package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Grid     GridConfig     `yaml:"grid" mapstructure:"grid"`
	Boundary BoundaryConfig `yaml:"boundary" mapstructure:"boundary"`
	Coast    LayerConfig    `yaml:"coast" mapstructure:"coast"`
	Road     LayerConfig    `yaml:"road" mapstructure:"road"`
	Tourism  LayerConfig    `yaml:"tourism" mapstructure:"tourism"`
	Building LayerConfig    `yaml:"building" mapstructure:"building"`
	DEM      DEMConfig      `yaml:"dem" mapstructure:"dem"`
	Overpass OverpassConfig `yaml:"overpass" mapstructure:"overpass"`
	Output   OutputConfig   `yaml:"output" mapstructure:"output"`
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// GridConfig defines the analysis grid. The extent comes from the
// boundary layer; cell size and CRS come from here.
type GridConfig struct {
	Proj4    string  `yaml:"proj4" mapstructure:"proj4"`
	CellSize float64 `yaml:"cell_size" mapstructure:"cell_size"`
	NoData   float64 `yaml:"nodata" mapstructure:"nodata"`
}

// BoundaryConfig locates the study-area polygon. Proj4 declares the
// shapefile's CRS; empty means it is already in the grid CRS.
type BoundaryConfig struct {
	Path  string `yaml:"path" mapstructure:"path"`
	Proj4 string `yaml:"proj4" mapstructure:"proj4"`
	URL   string `yaml:"url" mapstructure:"url"`
}

// LayerConfig configures one input layer and, for exposure layers, its
// smoothing kernel.
type LayerConfig struct {
	Path  string `yaml:"path" mapstructure:"path"`
	Proj4 string `yaml:"proj4" mapstructure:"proj4"`
	// OSMKey/OSMValue select Overpass elements when the layer is
	// fetched instead of read from a shapefile.
	OSMKey   string  `yaml:"osm_key" mapstructure:"osm_key"`
	OSMValue string  `yaml:"osm_value" mapstructure:"osm_value"`
	Radius   int     `yaml:"radius" mapstructure:"radius"`
	Sigma    float64 `yaml:"sigma" mapstructure:"sigma"`
}

// DEMConfig locates the elevation raster.
type DEMConfig struct {
	Path  string `yaml:"path" mapstructure:"path"`
	Proj4 string `yaml:"proj4" mapstructure:"proj4"`
	URL   string `yaml:"url" mapstructure:"url"`
}

// OverpassConfig configures the Overpass API client.
type OverpassConfig struct {
	BaseURL      string  `yaml:"base_url" mapstructure:"base_url"`
	TimeoutSecs  int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RateEverySec float64 `yaml:"rate_every_sec" mapstructure:"rate_every_sec"`
	Retries      int     `yaml:"retries" mapstructure:"retries"`
	CacheDir     string  `yaml:"cache_dir" mapstructure:"cache_dir"`
}

// OutputConfig configures where and how feature tables are written.
type OutputConfig struct {
	Dir    string `yaml:"dir" mapstructure:"dir"`
	Format string `yaml:"format" mapstructure:"format"`
}

// StoreConfig configures the run database.
type StoreConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// ServerConfig configures the HTTP status server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("COVARIATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("grid.proj4", "+proj=utm +zone=33 +datum=WGS84 +units=m +no_defs")
	v.SetDefault("grid.cell_size", 100.0)
	v.SetDefault("grid.nodata", -9999.0)
	v.SetDefault("road.radius", 100)
	v.SetDefault("road.osm_key", "highway")
	v.SetDefault("tourism.radius", 200)
	v.SetDefault("tourism.osm_key", "tourism")
	v.SetDefault("building.radius", 199)
	v.SetDefault("building.osm_key", "building")
	v.SetDefault("dem.proj4", "+proj=longlat +ellps=WGS84 +datum=WGS84 +no_defs")
	v.SetDefault("overpass.base_url", "https://overpass-api.de/api/interpreter")
	v.SetDefault("overpass.timeout_secs", 90)
	v.SetDefault("overpass.rate_every_sec", 2.0)
	v.SetDefault("overpass.retries", 2)
	v.SetDefault("overpass.cache_dir", "data/overpass")
	v.SetDefault("output.dir", "out")
	v.SetDefault("output.format", "csv")
	v.SetDefault("store.path", "covariate.db")
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the config for the given command mode.
func (c *Config) Validate(mode string) error {
	var problems []string

	checkGrid := func() {
		if c.Grid.CellSize <= 0 {
			problems = append(problems, "grid.cell_size must be > 0")
		}
		if c.Grid.Proj4 == "" {
			problems = append(problems, "grid.proj4 is required")
		}
	}

	switch mode {
	case "run":
		checkGrid()
		if c.Boundary.Path == "" {
			problems = append(problems, "boundary.path is required")
		}
		if c.Coast.Path == "" {
			problems = append(problems, "coast.path is required")
		}
		if c.DEM.Path == "" {
			problems = append(problems, "dem.path is required")
		}
		for name, layer := range map[string]LayerConfig{
			"road": c.Road, "tourism": c.Tourism, "building": c.Building,
		} {
			if layer.Radius <= 0 {
				problems = append(problems, name+".radius must be > 0")
			}
			if layer.Path == "" && layer.OSMKey == "" {
				problems = append(problems, name+": either path or osm_key is required")
			}
		}
	case "fetch":
		checkGrid()
		if c.Overpass.BaseURL == "" {
			problems = append(problems, "overpass.base_url is required")
		}
	case "serve":
		if c.Server.Port <= 0 {
			problems = append(problems, "server.port must be > 0")
		}
		if c.Store.Path == "" {
			problems = append(problems, "store.path is required")
		}
	case "export":
		if c.Store.Path == "" {
			problems = append(problems, "store.path is required")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
