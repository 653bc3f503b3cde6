package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sandeepkv93/taskwise/internal/model"
	"github.com/sandeepkv93/taskwise/internal/views"
)

func (c *CLI) analyticsCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "analytics",
		Short: "Show productivity metrics, insights and goals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "md" && format != "json" {
				return fmt.Errorf("%w: --format must be md or json, got %q", errUsage, format)
			}
			svc, err := c.service(cmd)
			if err != nil {
				return err
			}
			report, err := svc.Analytics(cmd.Context())
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if format == "json" {
				return writeJSON(w, report)
			}
			fmt.Fprintln(w, views.RenderMetrics(report))
			fmt.Fprintln(w, views.RenderMarkdown(views.InsightsMarkdown(report), markdownStyle(w)))
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "md", "output format: md or json")
	return cmd
}

func (c *CLI) settingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show, change, export and import settings",
	}
	cmd.AddCommand(c.settingsShowCmd(), c.settingsEnergyCmd(), c.settingsResetCmd(), c.settingsExportCmd(), c.settingsImportCmd())
	return cmd
}

func (c *CLI) settingsShowCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the current settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.service(cmd)
			if err != nil {
				return err
			}
			settings, err := svc.Settings(cmd.Context())
			if err != nil {
				return err
			}
			switch strings.ToLower(format) {
			case "json":
				return writeJSON(cmd.OutOrStdout(), settings)
			case "yaml", "yml":
				out, err := yaml.Marshal(settings)
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(out)
				return err
			default:
				return fmt.Errorf("%w: --format must be yaml or json, got %q", errUsage, format)
			}
		},
	}
	cmd.Flags().StringVar(&format, "format", "yaml", "output format: yaml or json")
	return cmd
}

func (c *CLI) settingsEnergyCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "energy morning|afternoon|evening|flexible",
		Short:     "Set the daily energy pattern",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"morning", "afternoon", "evening", "flexible"},
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.service(cmd)
			if err != nil {
				return err
			}
			settings, err := svc.Settings(cmd.Context())
			if err != nil {
				return err
			}
			settings.AIPreferences.EnergyPattern = model.EnergyType(strings.ToLower(args[0]))
			if err := svc.SaveSettings(cmd.Context(), settings); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "energy pattern set to %s\n", settings.AIPreferences.EnergyPattern)
			return nil
		},
	}
}

func (c *CLI) settingsResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Restore the default settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.service(cmd)
			if err != nil {
				return err
			}
			if err := svc.SaveSettings(cmd.Context(), model.DefaultSettings()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "settings reset to defaults")
			return nil
		},
	}
}

func (c *CLI) settingsExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export PATH",
		Short: "Write settings to a .json or .yaml file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.service(cmd)
			if err != nil {
				return err
			}
			if err := svc.ExportSettings(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported settings to %s\n", args[0])
			return nil
		},
	}
}

func (c *CLI) settingsImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import PATH",
		Short: "Replace settings with an exported file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.service(cmd)
			if err != nil {
				return err
			}
			res, err := svc.ImportSettings(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !res.OK {
				return fmt.Errorf("import %s rejected: %s", args[0], res.Reason)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported settings from %s\n", args[0])
			return nil
		},
	}
}
