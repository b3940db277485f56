package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/layermerge/internal/engine"
)

var layersCmd = &cobra.Command{
	Use:   "layers",
	Short: "List layers in priority order",
	Long: `List the enabled layers with their rank. Rank 0 wins every conflict.
Option sub-layers are shown with the layer that owns them.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSettings(cmd)
		if err != nil {
			return err
		}

		result, err := newEngine(s).Layers(cmd.Context(), &engine.LayersRequest{Settings: s})
		if err != nil {
			return err
		}

		if jsonOutput {
			return outputJSON(result)
		}

		if len(result.Layers) == 0 {
			PrintEmptyState(fmt.Sprintf("No layers found in %s", result.Root))
		} else {
			rows := make([][]string, 0, len(result.Layers))
			for _, l := range result.Layers {
				parent := "-"
				if l.IsOption() {
					parent = l.Parent
				}
				rows = append(rows, []string{fmt.Sprintf("%d", l.Rank), l.Path, parent})
			}
			PrintTable([]string{"RANK", "LAYER", "OPTION OF"}, rows)
		}

		if len(result.Disabled) > 0 {
			fmt.Fprintln(stdout)
			PrintSubsection("Disabled:")
			PrintList(result.Disabled, 1)
		}
		return nil
	},
}
