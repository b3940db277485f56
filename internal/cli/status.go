package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/layermerge/internal/engine"
)

var statusDigest bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the last publish run",
	Long: `Display the last recorded publish run. With --digest the output is hashed
again and compared with the digest recorded at publish time.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSettings(cmd)
		if err != nil {
			return err
		}

		result, err := newEngine(s).Status(cmd.Context(), &engine.StatusRequest{Digest: statusDigest})
		if errors.Is(err, engine.ErrNoRun) {
			if jsonOutput {
				return outputJSON(map[string]any{"manifest": nil})
			}
			PrintEmptyState("No publish run recorded yet")
			return nil
		}
		if err != nil {
			return err
		}

		if jsonOutput {
			return outputJSON(result)
		}

		m := result.Manifest
		PrintSection("Last Run")
		PrintLabelValue("Finished", m.FinishedAt.Local().Format(time.RFC3339))
		PrintLabelValue("Duration", m.Duration().String())
		PrintLabelValue("Output", m.Output)
		PrintLabelValue("Strategy", m.Strategy)
		PrintLabelValue("Layers", fmt.Sprintf("%d", len(m.Layers)))
		PrintLabelValue("Files", fmt.Sprintf("%d", len(m.Winners)))
		if m.BaseLinked {
			PrintLabelValue("Base file", "linked")
		}

		if !result.OutputPresent {
			PrintWarning("Output folder is missing; run publish again")
			return nil
		}

		if statusDigest {
			PrintLabelValue("Digest", result.Digest)
			switch {
			case result.DigestMatches == nil:
				PrintEmptyState("No digest recorded for comparison; publish with --digest")
			case *result.DigestMatches:
				PrintSuccess("Output matches the published tree")
			default:
				PrintWarning("Output differs from the published tree")
			}
		}
		return nil
	},
}

func init() {
	statusCmd.Flags().BoolVar(&statusDigest, "digest", false, "Hash the output and compare with the recorded digest")
}
