package main

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"

	"retroscope/internal/platform/cache"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the response cache",
}

var cacheInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show cache location, entry counts, and ages",
	RunE:  runCacheInfo,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every cached response",
	RunE:  runCacheClear,
}

func init() {
	cacheCmd.AddCommand(cacheInfoCmd, cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}

func runCacheInfo(cmd *cobra.Command, args []string) error {
	lr, err := loadConfig()
	if err != nil {
		return err
	}
	rest, completions, err := openCaches(lr.File)
	if err != nil {
		return err
	}
	if !rest.Enabled() {
		fmt.Fprintln(os.Stdout, "Cache is disabled.")
		return nil
	}

	table := tablewriter.NewTable(os.Stdout,
		tablewriter.WithRendition(tw.Rendition{
			Borders:  tw.Border{Left: tw.Off, Right: tw.Off, Top: tw.Off, Bottom: tw.Off},
			Settings: tw.Settings{Separators: tw.Separators{BetweenColumns: tw.Off}},
		}),
	)
	table.Header([]string{"Cache", "Location", "Entries", "Size", "Oldest"})
	for _, c := range []struct {
		name   string
		handle *cache.Cache
	}{
		{"github", rest},
		{"llm", completions},
	} {
		stats, err := c.handle.GetStats()
		if err != nil {
			return err
		}
		table.Append([]string{
			c.name,
			c.handle.Dir(),
			fmt.Sprintf("%d", stats.Entries),
			formatBytes(stats.TotalSize),
			formatAge(stats.OldestAge),
		})
	}
	table.Render()
	return nil
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	lr, err := loadConfig()
	if err != nil {
		return err
	}
	rest, completions, err := openCaches(lr.File)
	if err != nil {
		return err
	}
	if err := rest.Clear(); err != nil {
		return err
	}
	if err := completions.Clear(); err != nil {
		return err
	}
	color.Green("Cache cleared")
	return nil
}

func formatBytes(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MiB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KiB", float64(n)/(1<<10))
	}
	return fmt.Sprintf("%d B", n)
}

func formatAge(d time.Duration) string {
	if d <= 0 {
		return "-"
	}
	return d.Round(time.Minute).String()
}
