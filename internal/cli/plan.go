package cli

import (
	"fmt"
	"maps"
	"slices"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/layermerge/internal/engine"
	"github.com/danieljhkim/layermerge/internal/planner"
)

var planFiles bool

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show which layer supplies each merged file",
	Long: `Simulate a merge and report the files each layer would contribute
and every path a higher-ranked layer takes from a lower one.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSettings(cmd)
		if err != nil {
			return err
		}

		result, err := newEngine(s).Plan(cmd.Context(), &engine.PlanRequest{Settings: s})
		if err != nil {
			return err
		}

		if jsonOutput {
			return outputJSON(result)
		}

		if result.BaseMissing {
			PrintWarning(fmt.Sprintf("Base file %s is missing; publish will fail", result.BaseFile))
		}

		PrintSection("Merge Plan")
		if len(result.Plan.Operations) == 0 {
			PrintEmptyState("No files would be merged")
		}

		perLayer := make(map[string]int)
		for _, op := range result.Plan.Operations {
			perLayer[op.Layer]++
		}
		rows := make([][]string, 0, len(result.Plan.Layers))
		for _, l := range result.Plan.Layers {
			rows = append(rows, []string{fmt.Sprintf("%d", l.Rank), l.Path, fmt.Sprintf("%d", perLayer[l.Path])})
		}
		PrintTable([]string{"RANK", "LAYER", "FILES"}, rows)

		if planFiles && len(result.Plan.Operations) > 0 {
			fmt.Fprintln(stdout)
			PrintSubsection("Files:")
			winners := result.Plan.Winners()
			paths := slices.Sorted(maps.Keys(winners))
			items := make([]string, 0, len(paths))
			for _, rel := range paths {
				items = append(items, fmt.Sprintf("%s ← %s", rel, winners[rel]))
			}
			PrintList(items, 1)
		}

		printOverrides(result.Plan.Overrides)
		return nil
	},
}

// printOverrides lists paths shadowed by a higher-ranked layer.
func printOverrides(overrides []planner.Override) {
	if len(overrides) == 0 {
		return
	}
	fmt.Fprintln(stdout)
	PrintSubsection(fmt.Sprintf("Overridden (%s):", PrintCount(len(overrides), "path", "paths")))
	items := make([]string, 0, len(overrides))
	for _, o := range overrides {
		items = append(items, fmt.Sprintf("%s: %s shadows %s", o.RelPath, o.Winner, o.Shadowed))
	}
	PrintList(items, 1)
}

func init() {
	planCmd.Flags().BoolVar(&planFiles, "files", false, "List every file and the layer it comes from")
}
