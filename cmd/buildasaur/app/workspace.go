package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/buildasaur/buildasaur/internal/app"
	"github.com/buildasaur/buildasaur/internal/config"
	"github.com/buildasaur/buildasaur/internal/workspace"
)

// workspaceInfo is the printed form of discovered metadata
type workspaceInfo struct {
	ProjectName           string `json:"projectName"`
	ProjectPath           string `json:"projectPath"`
	WorkingCopyIdentifier string `json:"workingCopyIdentifier"`
	WorkingCopyName       string `json:"workingCopyName"`
	URL                   string `json:"url"`
	CheckoutType          string `json:"checkoutType"`
	Owner                 string `json:"owner,omitempty"`
	Repository            string `json:"repository,omitempty"`
}

func newWorkspaceInfo(meta workspace.Metadata) workspaceInfo {
	info := workspaceInfo{
		ProjectName:           meta.ProjectName(),
		ProjectPath:           meta.ProjectPath(),
		WorkingCopyIdentifier: meta.WorkingCopyIdentifier(),
		WorkingCopyName:       meta.WorkingCopyName(),
		URL:                   meta.URL().String(),
		CheckoutType:          string(meta.CheckoutType()),
	}
	if owner, repo, ok := meta.URL().OwnerAndRepo(); ok {
		info.Owner, info.Repository = owner, repo
	}
	return info
}

func newWorkspaceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workspace",
		Short: "Inspect local project checkouts",
	}
	cmd.AddCommand(newWorkspaceInspectCmd())
	return cmd
}

func newWorkspaceInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect [path]",
		Short: "Print the metadata buildasaur derives from a checkout",
		Long: `Print the metadata buildasaur derives from a local git checkout.

With --config and --project the path and URL override of that project are used
and --check verifies the GitHub token and CI server credentials.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runWorkspaceInspect,
	}
	cmd.Flags().String("url", "", "Override the origin URL")
	cmd.Flags().String("config", "", "Path to configuration file")
	cmd.Flags().String("project", "", "Project from the configuration file to inspect")
	cmd.Flags().Bool("check", false, "Verify GitHub and CI server access (requires --config and --project)")
	return cmd
}

func runWorkspaceInspect(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	urlOverride, _ := flags.GetString("url")
	configPath, _ := flags.GetString("config")
	projectName, _ := flags.GetString("project")
	check, _ := flags.GetBool("check")

	var project *config.ProjectConfig
	if configPath != "" {
		if projectName == "" {
			return errors.New("--project is required with --config")
		}
		cfg, err := config.LoadConfig(config.WithConfigPath(configPath))
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		p, ok := cfg.Project(projectName)
		if !ok {
			return fmt.Errorf("project %s not found in %s", projectName, configPath)
		}
		project = p
	}

	path := "."
	switch {
	case len(args) == 1:
		path = args[0]
	case project != nil:
		path = project.Path
	}
	if urlOverride == "" && project != nil {
		urlOverride = project.URL
	}

	meta, err := workspace.DiscoverMetadata(path, urlOverride)
	if err != nil {
		return err
	}

	output, err := json.MarshalIndent(newWorkspaceInfo(meta), "", "  ")
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintln(cmd.OutOrStdout(), string(output)); err != nil {
		return err
	}

	if !check {
		return nil
	}
	if project == nil {
		return errors.New("--check requires --config and --project")
	}

	gh, err := app.NewGitHubClient(cmd.Context(), project)
	if err != nil {
		return err
	}
	ci, err := app.NewCIServerClient(project)
	if err != nil {
		return err
	}
	if errs := app.CheckAvailability(cmd.Context(), slog.Default(), meta, gh, ci); len(errs) > 0 {
		return fmt.Errorf("availability check failed: %w", errors.Join(errs...))
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), "GitHub and CI server are reachable")
	return err
}
