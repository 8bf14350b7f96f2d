package commands

import (
	"os"
	"path/filepath"

	"pydocparser/lib/configutil"
	"pydocparser/lib/httpcache"
	"pydocparser/lib/scrapers/pydocs"
	"pydocparser/lib/session"
	"pydocparser/lib/telemetry"
)

type OutputConfig struct {
	PageSize int `json:"page_size"`
}

type Config struct {
	// BaseDir defaults to the working directory, paths starting with
	// "<base>" are relative to it.
	BaseDir      string           `json:"base_dir"`
	MainDocUrl   string           `json:"main_doc_url"`
	PepUrl       string           `json:"pep_url"`
	DownloadsDir string           `json:"downloads_dir"`
	ResultsDir   string           `json:"results_dir"`
	Cache        httpcache.Config `json:"cache"`
	Http         session.Config   `json:"http"`
	Output       OutputConfig     `json:"output"`
	Telemetry    telemetry.Config `json:"telemetry"`
}

func DefaultConfig() Config {
	return Config{
		MainDocUrl:   pydocs.MainDocUrl,
		PepUrl:       pydocs.PepUrl,
		DownloadsDir: "<base>/downloads",
		ResultsDir:   "<base>/results",
		Cache: httpcache.Config{
			File: "<base>/http_cache.db",
		},
		Http: session.Config{
			TimeoutSeconds: 30,
		},
		Output: OutputConfig{
			PageSize: 20,
		},
	}
}

// LoadConfig reads `path` (and its .local override) over DefaultConfig and
// resolves every "<base>" path except the cache file, which the cache
// resolves itself.
func LoadConfig(path string) (Config, error) {
	config, err := configutil.ReadConfigOrDefault(path, DefaultConfig())
	if err != nil {
		return Config{}, err
	}

	if config.BaseDir == "" {
		config.BaseDir, err = os.Getwd()
		if err != nil {
			return Config{}, err
		}
	}
	config.BaseDir, err = filepath.Abs(config.BaseDir)
	if err != nil {
		return Config{}, err
	}

	config.DownloadsDir = configutil.ResolvePath(config.BaseDir, config.DownloadsDir)
	config.ResultsDir = configutil.ResolvePath(config.BaseDir, config.ResultsDir)
	if config.Http.DumpDir != "" {
		config.Http.DumpDir = configutil.ResolvePath(config.BaseDir, config.Http.DumpDir)
	}
	return config, nil
}
