package main

import (
	"fmt"
	"net/url"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"
)

var reposCmd = &cobra.Command{
	Use:   "repos",
	Short: "List repositories visible to the configured token",
	RunE:  runRepos,
}

func init() {
	reposCmd.Flags().Int("limit", 50, "maximum repositories to show")
	reposCmd.Flags().Bool("forks", false, "include forks")
	rootCmd.AddCommand(reposCmd)
}

func runRepos(cmd *cobra.Command, args []string) error {
	lr, err := loadConfig()
	if err != nil {
		return err
	}
	restCache, _, err := openCaches(lr.File)
	if err != nil {
		return err
	}
	gh, err := githubClient(lr.File, restCache)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	user, err := gh.AuthenticatedUser(ctx)
	if err != nil {
		return err
	}

	repos, err := gh.ListViewerRepos(ctx, url.Values{
		"per_page": {"100"},
		"sort":     {"updated"},
	})
	if err != nil {
		return err
	}

	limit, _ := cmd.Flags().GetInt("limit")
	includeForks, _ := cmd.Flags().GetBool("forks")

	fmt.Fprintf(os.Stdout, "Repositories visible to %s:\n\n", user.Login)

	table := tablewriter.NewTable(os.Stdout,
		tablewriter.WithRendition(tw.Rendition{
			Borders:  tw.Border{Left: tw.Off, Right: tw.Off, Top: tw.Off, Bottom: tw.Off},
			Settings: tw.Settings{Separators: tw.Separators{BetweenColumns: tw.Off}},
		}),
	)
	table.Header([]string{"Repository", "Visibility", "Language", "Stars", "Pushed"})

	shown := 0
	for _, r := range repos {
		if shown >= limit {
			break
		}
		if r.Fork && !includeForks {
			continue
		}
		visibility := "public"
		if r.Private {
			visibility = "private"
		}
		if r.Archived {
			visibility += ", archived"
		}
		lang := r.Language
		if lang == "" {
			lang = "-"
		}
		table.Append([]string{
			r.FullName,
			visibility,
			lang,
			strconv.Itoa(r.Stargazers),
			r.PushedAt.Format("2006-01-02"),
		})
		shown++
	}
	table.Render()
	return nil
}
