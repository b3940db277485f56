package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/layermerge/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the layermerge data directories",
	Long: `Create the data root with its layers/ and state/ directories.

The root is ~/.layermerge unless LAYERMERGE_ROOT is set. Existing directories
are left as they are. The merged tree is created by publish.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		paths, err := config.DefaultPaths()
		if err != nil {
			return fmt.Errorf("failed to get config paths: %w", err)
		}
		if err := paths.EnsureDirectories(); err != nil {
			return err
		}

		if jsonOutput {
			return outputJSON(paths)
		}

		PrintSuccess(fmt.Sprintf("Initialized %s", paths.Root))
		PrintLabelValue("Layers", paths.Layers)
		PrintLabelValue("State", paths.State)
		PrintLabelValue("Config", paths.Config)
		return nil
	},
}
