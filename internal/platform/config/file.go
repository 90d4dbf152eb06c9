package config

// File-backed configuration (TOML), layered under env overrides.
// The default location is os.UserConfigDir()/retroscope/config.toml

import (
	"os"
	"path/filepath"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"retroscope/internal/platform/bind"
	perr "retroscope/internal/platform/errors"
)

// AppDir is the directory name used under the user config and cache roots
const AppDir = "retroscope"

// File is the on-disk configuration shape
type File struct {
	Auth     Auth     `koanf:"auth" toml:"auth"`
	Server   Server   `koanf:"server" toml:"server"`
	LLM      LLM      `koanf:"llm" toml:"llm"`
	Defaults Defaults `koanf:"defaults" toml:"defaults"`
	Filters  Filters  `koanf:"filters" toml:"filters"`
	Cache    Cache    `koanf:"cache" toml:"cache"`
}

// Auth holds the GitHub credential
type Auth struct {
	Token string `koanf:"token" toml:"token"`
}

// Server holds the GitHub endpoints
type Server struct {
	APIURL    string `koanf:"api_url" toml:"api_url" validate:"required,url"`
	WebURL    string `koanf:"web_url" toml:"web_url" validate:"omitempty,url"`
	VerifySSL bool   `koanf:"verify_ssl" toml:"verify_ssl"`
}

// LLM holds the completion gateway settings
type LLM struct {
	Endpoint    string  `koanf:"endpoint" toml:"endpoint" validate:"omitempty,url"`
	Model       string  `koanf:"model" toml:"model"`
	Temperature float64 `koanf:"temperature" toml:"temperature" validate:"gte=0,lte=2"`
}

// Defaults holds fallback knobs for collection runs
type Defaults struct {
	Months int `koanf:"months" toml:"months" validate:"gte=1,lte=60"`
}

// Filters holds the default activity filters applied to collected items
type Filters struct {
	IncludeBranches  []string `koanf:"include_branches" toml:"include_branches"`
	ExcludeBranches  []string `koanf:"exclude_branches" toml:"exclude_branches"`
	IncludePaths     []string `koanf:"include_paths" toml:"include_paths"`
	ExcludePaths     []string `koanf:"exclude_paths" toml:"exclude_paths"`
	IncludeLanguages []string `koanf:"include_languages" toml:"include_languages"`
	ExcludeBots      bool     `koanf:"exclude_bots" toml:"exclude_bots"`
}

// Cache holds the on-disk response cache settings
type Cache struct {
	Dir     string `koanf:"dir" toml:"dir"`
	Enabled bool   `koanf:"enabled" toml:"enabled"`
}

// Default returns the baked-in configuration
func Default() File {
	return File{
		Server: Server{
			APIURL:    "https://api.github.com",
			WebURL:    "https://github.com",
			VerifySSL: true,
		},
		LLM: LLM{
			Endpoint:    "http://localhost:8000/v1/chat/completions",
			Temperature: 0.3,
		},
		Defaults: Defaults{Months: 12},
		Filters:  Filters{ExcludeBots: true},
		Cache:    Cache{Enabled: true},
	}
}

// DefaultPath returns the per-user config file location
func DefaultPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", perr.Wrap(err, perr.ErrorCodeInvalidArgument, "resolving user config dir")
	}
	return filepath.Join(base, AppDir, "config.toml"), nil
}

// DefaultCacheDir returns the per-user cache root
func DefaultCacheDir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", perr.Wrap(err, perr.ErrorCodeInvalidArgument, "resolving user cache dir")
	}
	return filepath.Join(base, AppDir), nil
}

// LoadResult reports the effective file config and where it came from
type LoadResult struct {
	File   File
	Source string // empty when no file was found
}

// Load reads the TOML config at path, layered over Default().
// An empty path means the default location; a missing file yields defaults
func Load(path string) (LoadResult, error) {
	out := LoadResult{File: Default()}

	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return out, err
		}
		path = p
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return out, nil
		}
		return out, perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "stat config %s", path)
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
		return out, perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "parse config %s", path)
	}
	if err := k.Unmarshal("", &out.File); err != nil {
		return out, perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "decode config %s", path)
	}

	if err := bind.Validate(out.File); err != nil {
		return out, err
	}

	out.Source = path
	return out, nil
}
