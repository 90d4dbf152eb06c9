// Command retroscope collects recent GitHub activity for a repository and
// turns it into practical feedback on commit messages, pull request titles,
// review tone, and issue quality
package main

import (
	"os"

	"github.com/fatih/color"
	"github.com/joho/godotenv"

	"retroscope/internal/platform/logger"
)

func main() {
	// a local .env is optional; missing files are fine
	_ = godotenv.Load()
	logger.Init(logger.FromEnv())

	if err := rootCmd.Execute(); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
