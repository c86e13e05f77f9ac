package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/iksnae/research-chat/internal"
	"github.com/spf13/cobra"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List LLM providers and their models",
	Long:  `List the providers the backend accepts and the models each offers. The selected pair is marked with *.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, cfg, err := loadConfig()
		if err != nil {
			return err
		}
		displayModels(cmd.OutOrStdout(), cfg.Selection())
		return nil
	},
}

var modelsUseCmd = &cobra.Command{
	Use:   "use <provider> [model]",
	Short: "Select the provider and model used for questions",
	Long: `Persist a provider and model in the config file. Without a model the
provider's first model is selected.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		paths, cfg, err := loadConfig()
		if err != nil {
			return err
		}

		sel, err := cfg.Selection().WithProvider(args[0])
		if err != nil {
			return err
		}
		if len(args) == 2 {
			if sel, err = sel.WithModel(args[1]); err != nil {
				return err
			}
		}
		cfg.Provider, cfg.Model = sel.Provider, sel.Model

		path := resolvedConfigPath(paths)
		if err := internal.SaveConfig(path, cfg); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Selected %s (saved to %s)\n", sel, path)
		return nil
	},
}

func displayModels(out io.Writer, selected internal.Selection) {
	for _, p := range internal.Providers {
		fmt.Fprintln(out, titleStyle.Render(p.Name)+" "+idStyle.Render("("+p.ID+")"))
		for _, m := range p.Models {
			marker := "  "
			if strings.EqualFold(p.ID, selected.Provider) && m == selected.Model {
				marker = currentStyle.Render("*") + " "
			}
			fmt.Fprintf(out, "  %s%s\n", marker, m)
		}
	}
}

func init() {
	modelsCmd.AddCommand(modelsUseCmd)
	rootCmd.AddCommand(modelsCmd)
}
