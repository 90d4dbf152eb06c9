package main

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml"
	"github.com/spf13/cobra"

	perr "retroscope/internal/platform/errors"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Work with the config file",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE:  runConfigShow,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	lr, err := loadConfig()
	if err != nil {
		return err
	}

	if lr.Source == "" {
		fmt.Fprintln(os.Stdout, "# no config file found, showing defaults")
	} else {
		fmt.Fprintf(os.Stdout, "# %s\n", lr.Source)
	}

	shown := lr.File
	if shown.Auth.Token != "" {
		shown.Auth.Token = "(redacted)"
	}

	blob, err := toml.Marshal(shown)
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeUnknown, "encoding config")
	}
	_, err = os.Stdout.Write(blob)
	return err
}
