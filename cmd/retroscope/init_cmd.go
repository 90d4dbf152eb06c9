package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/pelletier/go-toml"
	"github.com/spf13/cobra"

	"retroscope/internal/platform/config"
	perr "retroscope/internal/platform/errors"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter config file",
	Long: `Writes a config file with the defaults filled in. Without --config the
file goes to the per-user config directory.`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().Bool("force", false, "overwrite an existing config file")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	path := flagConfig
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}

	force, _ := cmd.Flags().GetBool("force")
	if _, err := os.Stat(path); err == nil && !force {
		return perr.InvalidArgf("config %s already exists (use --force to overwrite)", path)
	}

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "creating %s", dir)
		}
	}

	blob, err := toml.Marshal(config.Default())
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeUnknown, "encoding default config")
	}

	var buf strings.Builder
	buf.WriteString("# retroscope configuration\n")
	buf.WriteString("# The GitHub token can also come from RETRO_GITHUB_TOKEN or GITHUB_TOKEN.\n\n")
	buf.Write(blob)

	// may hold a token, keep it private
	if err := os.WriteFile(path, []byte(buf.String()), 0o600); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnknown, "writing %s", path)
	}

	color.Green("Created %s", path)
	return nil
}
