package cmd

import (
	"fmt"

	"github.com/MeKo-Tech/bubblex/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or create the configuration file",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the resolved configuration as YAML (secrets masked)",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := GetConfig().Redacted().YAML()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if used := configLoader.GetConfigFileUsed(); used != "" {
			_, _ = fmt.Fprintf(out, "# config file: %s\n", used)
		}
		_, err = out.Write(data)
		return err
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write the default configuration to bubblex.yaml (or path)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.ConfigFileName + ".yaml"
		if len(args) == 1 {
			path = args[0]
		}
		if err := config.GenerateDefaultConfigFile(path); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
		return nil
	},
}

var configPathsCmd = &cobra.Command{
	Use:   "paths",
	Short: "List the directories searched for bubblex.yaml",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, p := range config.GetConfigSearchPaths() {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), p)
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "environment prefix: %s_\n", config.EnvPrefix)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd, configInitCmd, configPathsCmd)
	rootCmd.AddCommand(configCmd)
}
