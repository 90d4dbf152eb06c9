package main

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"retroscope/internal/adapters/github"
	"retroscope/internal/core/filter"
	"retroscope/internal/core/version"
	"retroscope/internal/platform/cache"
	"retroscope/internal/platform/config"
)

// Cache lifetimes: REST bodies turn over quickly, completion results are
// stable for a given prompt
const (
	restCacheTTL = time.Hour
	llmCacheTTL  = 7 * 24 * time.Hour
)

var (
	flagConfig  string
	flagToken   string
	flagNoCache bool
	flagNoColor bool
)

var rootCmd = &cobra.Command{
	Use:   "retroscope",
	Short: "Practical feedback on recent GitHub activity",
	Long: `Retroscope collects a repository's recent commits, pull requests,
reviews, and issues, then reports practical feedback on commit messages,
pull request titles, review tone, and issue quality.`,
	Version:       version.Info().Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagConfig, "config", "", "config file path (default: user config dir)")
	pf.StringVar(&flagToken, "token", "", "GitHub token (overrides env and config file)")
	pf.BoolVar(&flagNoCache, "no-cache", false, "disable the response cache")
	pf.BoolVar(&flagNoColor, "no-color", false, "disable colored output")
}

// loadConfig layers the file config under RETRO_* env overrides
func loadConfig() (config.LoadResult, error) {
	lr, err := config.Load(flagConfig)
	if err != nil {
		return lr, err
	}

	env := config.New().Prefix("RETRO_")
	cfg := &lr.File
	cfg.Server.APIURL = env.MayString("API_URL", cfg.Server.APIURL)
	cfg.LLM.Endpoint = env.MayString("LLM_ENDPOINT", cfg.LLM.Endpoint)
	cfg.LLM.Model = env.MayString("LLM_MODEL", cfg.LLM.Model)
	cfg.LLM.Temperature = env.MayFloat64("LLM_TEMPERATURE", cfg.LLM.Temperature)
	cfg.Defaults.Months = env.MayInt("MONTHS", cfg.Defaults.Months)
	cfg.Cache.Dir = env.MayString("CACHE_DIR", cfg.Cache.Dir)
	cfg.Cache.Enabled = env.MayBool("CACHE_ENABLED", cfg.Cache.Enabled)
	return lr, nil
}

// resolveToken picks the GitHub credential: flag, then env, then config file
func resolveToken(cfg config.File) string {
	if flagToken != "" {
		return flagToken
	}
	env := config.New()
	if t := env.Prefix("RETRO_").MayString("GITHUB_TOKEN", ""); t != "" {
		return t
	}
	if t := env.MayString("GITHUB_TOKEN", ""); t != "" {
		return t
	}
	return cfg.Auth.Token
}

// openCaches builds the two cache handles sharing one root: REST bodies
// under github/, completion results under llm/
func openCaches(cfg config.File) (*cache.Cache, *cache.Cache, error) {
	root := cfg.Cache.Dir
	if root == "" {
		r, err := config.DefaultCacheDir()
		if err != nil {
			return nil, nil, err
		}
		root = r
	}
	enabled := cfg.Cache.Enabled && !flagNoCache

	rest, err := cache.New(filepath.Join(root, "github"), restCacheTTL, enabled)
	if err != nil {
		return nil, nil, err
	}
	completions, err := cache.New(filepath.Join(root, "llm"), llmCacheTTL, enabled)
	if err != nil {
		return nil, nil, err
	}
	return rest, completions, nil
}

func githubClient(cfg config.File, cc *cache.Cache) (*github.Client, error) {
	return github.NewClient(github.Options{
		BaseURL: cfg.Server.APIURL,
		Token:   resolveToken(cfg),
	}, cc)
}

// filtersFromConfig maps the file's filter section onto the collector spec
func filtersFromConfig(f config.Filters) filter.Spec {
	return filter.Spec{
		IncludeBranches:  f.IncludeBranches,
		ExcludeBranches:  f.ExcludeBranches,
		IncludePaths:     f.IncludePaths,
		ExcludePaths:     f.ExcludePaths,
		IncludeLanguages: f.IncludeLanguages,
		ExcludeBots:      f.ExcludeBots,
	}
}

// llmBaseURL normalizes a configured completions endpoint to the API base
// the SDK expects; the path segment is appended by the SDK itself
func llmBaseURL(endpoint string) string {
	return strings.TrimSuffix(strings.TrimSuffix(endpoint, "/"), "/chat/completions")
}
