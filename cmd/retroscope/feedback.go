package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"retroscope/internal/adapters/llm"
	"retroscope/internal/platform/config"
	perr "retroscope/internal/platform/errors"
	"retroscope/internal/report"
	adomain "retroscope/internal/services/analyze/domain"
	analyzesvc "retroscope/internal/services/analyze/service"
	cdomain "retroscope/internal/services/collect/domain"
	collectsvc "retroscope/internal/services/collect/service"
)

var feedbackCmd = &cobra.Command{
	Use:   "feedback <owner/repo>",
	Short: "Collect recent activity and report practical feedback",
	Long: `Collects commits, pull requests, reviews, and issues for the lookback
window, analyzes them, and renders the feedback report. Analysis uses the
configured completions endpoint and falls back to built-in heuristics when
the endpoint is unreachable.`,
	Args: cobra.ExactArgs(1),
	RunE: runFeedback,
}

func init() {
	f := feedbackCmd.Flags()
	f.Int("months", 0, "lookback window in months (default from config)")
	f.String("author", "", "scope activity to one login")
	f.Int("limit", 0, "per-resource record cap")
	f.String("format", "console", "output format: console or markdown")
	f.StringP("output", "o", "", "write the report to a file instead of stdout")
	f.Bool("skip-analysis", false, "collect and report without the analysis pass")
	f.StringSlice("include-branches", nil, "only collect commits from these branches")
	f.StringSlice("exclude-branches", nil, "skip commits from these branches")
	f.StringSlice("include-paths", nil, "only keep activity touching these path substrings")
	f.StringSlice("exclude-paths", nil, "drop activity touching these path substrings")
	f.StringSlice("include-languages", nil, "only keep activity touching these file extensions")
	f.Bool("include-bots", false, "keep activity from bot accounts")

	rootCmd.AddCommand(feedbackCmd)
}

func runFeedback(cmd *cobra.Command, args []string) error {
	repo := args[0]

	lr, err := loadConfig()
	if err != nil {
		return err
	}
	cfg := lr.File

	restCache, llmCache, err := openCaches(cfg)
	if err != nil {
		return err
	}
	gh, err := githubClient(cfg, restCache)
	if err != nil {
		return err
	}

	months, _ := cmd.Flags().GetInt("months")
	if months <= 0 {
		months = cfg.Defaults.Months
	}
	author, _ := cmd.Flags().GetString("author")
	limit, _ := cmd.Flags().GetInt("limit")

	filters := filtersFromConfig(cfg.Filters)
	if v, _ := cmd.Flags().GetStringSlice("include-branches"); cmd.Flags().Changed("include-branches") {
		filters.IncludeBranches = v
	}
	if v, _ := cmd.Flags().GetStringSlice("exclude-branches"); cmd.Flags().Changed("exclude-branches") {
		filters.ExcludeBranches = v
	}
	if v, _ := cmd.Flags().GetStringSlice("include-paths"); cmd.Flags().Changed("include-paths") {
		filters.IncludePaths = v
	}
	if v, _ := cmd.Flags().GetStringSlice("exclude-paths"); cmd.Flags().Changed("exclude-paths") {
		filters.ExcludePaths = v
	}
	if v, _ := cmd.Flags().GetStringSlice("include-languages"); cmd.Flags().Changed("include-languages") {
		filters.IncludeLanguages = v
	}
	if v, _ := cmd.Flags().GetBool("include-bots"); cmd.Flags().Changed("include-bots") {
		filters.ExcludeBots = !v
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	collector := collectsvc.New(gh, collectsvc.Config{Limit: limit})

	var res *cdomain.Result
	err = withSpinner(fmt.Sprintf("Collecting %s", repo), func() error {
		var runErr error
		res, runErr = collector.Run(ctx, cdomain.RunInput{
			Repo:    repo,
			Months:  months,
			Author:  author,
			Limit:   limit,
			Filters: filters,
		})
		return runErr
	})
	if err != nil {
		return err
	}

	var analysis *adomain.Report
	if skip, _ := cmd.Flags().GetBool("skip-analysis"); !skip {
		completer, err := llm.New(llm.Options{
			APIKey:  llmAPIKey(),
			BaseURL: llmBaseURL(cfg.LLM.Endpoint),
			Model:   cfg.LLM.Model,
		}, llmCache)
		if err != nil {
			return err
		}
		analyzer := analyzesvc.New(completer, analyzesvc.Config{Temperature: cfg.LLM.Temperature})

		err = withSpinner("Analyzing activity", func() error {
			var aErr error
			analysis, aErr = analyzer.AnalyzeAll(ctx, adomain.FromCollection(res))
			return aErr
		})
		if err != nil {
			if perr.IsCode(err, perr.ErrorCodeUnauthorized) {
				return perr.Wrap(err, perr.ErrorCodeUnauthorized, "analysis endpoint rejected the credentials")
			}
			return err
		}
	}

	out := io.Writer(os.Stdout)
	output, _ := cmd.Flags().GetString("output")
	if output != "" {
		file, err := os.Create(output)
		if err != nil {
			return perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "creating %s", output)
		}
		defer file.Close()
		out = file
	}

	switch format, _ := cmd.Flags().GetString("format"); format {
	case "markdown":
		report.NewMarkdown(out).Render(res, analysis)
	case "console":
		colored := !flagNoColor && output == ""
		report.NewConsole(out, colored).Render(res, analysis)
	default:
		return perr.InvalidArgf("unknown format %q (want console or markdown)", format)
	}
	return nil
}

// llmAPIKey reads the completions credential from the environment; local
// endpoints commonly run without one
func llmAPIKey() string {
	env := config.New()
	if k := env.Prefix("RETRO_").MayString("LLM_API_KEY", ""); k != "" {
		return k
	}
	return env.MayString("OPENAI_API_KEY", "")
}

// withSpinner runs fn with an indeterminate spinner on stderr. The spinner
// is cleared whether fn succeeds or fails
func withSpinner(label string, fn func() error) error {
	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetWidth(20),
		progressbar.OptionSetDescription(label),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
	)
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(120 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				_ = bar.Add(1)
			}
		}
	}()

	err := fn()
	close(done)
	_ = bar.Finish()
	_ = bar.Clear()
	return err
}
