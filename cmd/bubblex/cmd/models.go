package cmd

import (
	"fmt"

	"github.com/MeKo-Tech/bubblex/internal/models"
	"github.com/spf13/cobra"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Manage the detector model files",
}

var modelsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List known models and whether they are installed",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		for _, m := range models.Known {
			path := models.PathFor(cfg.ModelsDir, m)
			state := "missing"
			if models.ValidateModelExists(path) == nil {
				state = "installed"
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%-12s %-9s %s\n", m.Name, state, m.Description)
		}
		return nil
	},
}

var modelsPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the models directory and the detector model in use",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "models dir: %s\n", models.GetModelsDir(cfg.ModelsDir))
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "detector:   %s\n", cfg.DetectorModelPath())
		return nil
	},
}

var modelsDownloadCmd = &cobra.Command{
	Use:   "download [model]...",
	Short: "Download detector models into the models directory",
	Long: `Download detector models into <models-dir>/<type>/<variant>/.

With no arguments the mobile detector (det-mobile) is fetched. The source
repository can be changed with --repository or models.repository.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		repo := cfg.Models.Repository
		if cmd.Flags().Changed("repository") {
			repo, _ = cmd.Flags().GetString("repository")
		}
		force, _ := cmd.Flags().GetBool("force")

		if len(args) == 0 {
			args = []string{models.Known[0].Name}
		}
		d := models.NewDownloader(repo)
		for _, name := range args {
			m, err := models.Lookup(name)
			if err != nil {
				return err
			}
			path, err := d.Download(cmd.Context(), cfg.ModelsDir, m, force)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", m.Name, path)
		}
		return nil
	},
}

func init() {
	modelsDownloadCmd.Flags().String("repository", models.DefaultRepository, "base URL of the model repository")
	modelsDownloadCmd.Flags().Bool("force", false, "download even if the file exists")

	modelsCmd.AddCommand(modelsListCmd, modelsPathCmd, modelsDownloadCmd)
	rootCmd.AddCommand(modelsCmd)
}
