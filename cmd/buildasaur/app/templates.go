package app

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/buildasaur/buildasaur/internal/buildtemplate"
	"github.com/buildasaur/buildasaur/internal/config"
	"github.com/buildasaur/buildasaur/internal/storage"
)

func newTemplatesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "templates",
		Short: "Manage build templates",
		Long: `Build templates describe the bots buildasaur creates: scheme, schedule,
actions and triggers. They are stored as JSON documents in <dataDir>/templates.`,
	}
	cmd.PersistentFlags().String("config", "", "Path to configuration file; its dataDir is used")
	cmd.PersistentFlags().String("data-dir", config.DefaultDataDir, "Data directory, ignored when --config is set")

	cmd.AddCommand(newTemplatesListCmd(), newTemplatesCreateCmd(), newTemplatesShowCmd(), newTemplatesDeleteCmd())
	return cmd
}

// openTemplateStore opens the store of the configured data directory
func openTemplateStore(cmd *cobra.Command) (*storage.FileTemplateStore, error) {
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	if configPath != "" {
		cfg, err := config.LoadConfig(config.WithConfigPath(configPath))
		if err != nil {
			return nil, fmt.Errorf("failed to load configuration: %w", err)
		}
		return storage.NewFileTemplateStore(cfg.TemplatesDir())
	}

	dataDir, err := cmd.Flags().GetString("data-dir")
	if err != nil {
		return nil, err
	}
	return storage.NewFileTemplateStore(filepath.Join(dataDir, config.TemplatesDirName))
}

func newTemplatesListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored build templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openTemplateStore(cmd)
			if err != nil {
				return err
			}
			project, err := cmd.Flags().GetString("project")
			if err != nil {
				return err
			}

			var templates []*buildtemplate.BuildTemplate
			if project != "" {
				templates, err = store.ListForProject(cmd.Context(), project)
			} else {
				templates, err = store.List(cmd.Context())
			}
			if err != nil {
				return fmt.Errorf("failed to list templates: %w", err)
			}
			return renderTemplateTable(cmd.OutOrStdout(), templates)
		},
	}
	cmd.Flags().String("project", "", "Only templates offered to this project")
	return cmd
}

func renderTemplateTable(w io.Writer, templates []*buildtemplate.BuildTemplate) error {
	table := tablewriter.NewWriter(w)
	table.Header("ID", "Name", "Project", "Scheme", "Schedule", "Test")
	for _, tpl := range templates {
		err := table.Append(
			tpl.ID,
			tpl.DisplayName(),
			valueOr(tpl.ProjectName, "(any)"),
			valueOr(tpl.Scheme, "-"),
			scheduleName(tpl.Schedule),
			strconv.FormatBool(tpl.ShouldTest != nil && *tpl.ShouldTest),
		)
		if err != nil {
			return err
		}
	}
	return table.Render()
}

func valueOr(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}

func scheduleName(s buildtemplate.Schedule) string {
	switch s.Type {
	case buildtemplate.ScheduleTypeOnCommit:
		return "commit"
	case buildtemplate.ScheduleTypeManual:
		return "manual"
	case buildtemplate.ScheduleTypePeriodic:
		return "periodic"
	default:
		return "unknown"
	}
}

func newTemplatesCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a build template and print its ID",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tpl, err := templateFromFlags(cmd)
			if err != nil {
				return err
			}
			store, err := openTemplateStore(cmd)
			if err != nil {
				return err
			}
			if err := store.Save(cmd.Context(), tpl); err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), tpl.ID)
			return err
		},
	}
	cmd.Flags().String("project", "", "Project the template is offered to; empty offers it to every project")
	cmd.Flags().String("name", buildtemplate.DefaultName, "Template name")
	cmd.Flags().String("scheme", "", "Scheme to build (required)")
	cmd.Flags().String("schedule", "commit", "When to integrate: commit or manual")
	cmd.Flags().String("platform", "", "Platform identifier, e.g. "+string(buildtemplate.PlatformIOS))
	cmd.Flags().Bool("analyze", false, "Run the static analyzer")
	cmd.Flags().Bool("test", false, "Run tests")
	cmd.Flags().Bool("archive", false, "Archive the product")
	_ = cmd.MarkFlagRequired("scheme")
	return cmd
}

func templateFromFlags(cmd *cobra.Command) (*buildtemplate.BuildTemplate, error) {
	flags := cmd.Flags()
	project, _ := flags.GetString("project")
	name, _ := flags.GetString("name")
	scheme, _ := flags.GetString("scheme")
	schedule, _ := flags.GetString("schedule")
	platform, _ := flags.GetString("platform")
	analyze, _ := flags.GetBool("analyze")
	test, _ := flags.GetBool("test")
	archive, _ := flags.GetBool("archive")

	if scheme == "" {
		return nil, fmt.Errorf("scheme cannot be empty")
	}

	tpl := buildtemplate.New(project)
	if project == "" {
		tpl.ProjectName = nil
	}
	tpl.Name = &name
	tpl.Scheme = &scheme
	tpl.ShouldAnalyze = &analyze
	tpl.ShouldTest = &test
	tpl.ShouldArchive = &archive

	switch schedule {
	case "commit":
		tpl.Schedule = buildtemplate.OnCommitSchedule()
	case "manual":
		tpl.Schedule = buildtemplate.ManualSchedule()
	default:
		return nil, fmt.Errorf("unknown schedule %q, expected commit or manual", schedule)
	}

	if platform != "" {
		p, ok := buildtemplate.ParsePlatformType(platform)
		if !ok {
			return nil, fmt.Errorf("unknown platform %q", platform)
		}
		tpl.PlatformType = &p
	}
	return tpl, nil
}

func newTemplatesShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print a build template as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openTemplateStore(cmd)
			if err != nil {
				return err
			}
			tpl, err := store.Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			output, err := json.MarshalIndent(tpl, "", "  ")
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(output))
			return err
		},
	}
}

func newTemplatesDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a build template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openTemplateStore(cmd)
			if err != nil {
				return err
			}
			return store.Delete(cmd.Context(), args[0])
		},
	}
}
