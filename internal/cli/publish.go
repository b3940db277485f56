package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/layermerge/internal/engine"
	"github.com/danieljhkim/layermerge/internal/lock"
)

var (
	publishDryRun bool
	publishDigest bool
)

var publishCmd = &cobra.Command{
	Use:   "publish [output]",
	Short: "Rebuild the merged tree and publish it",
	Long: `Rebuild the merged tree from all enabled layers and publish it at the output folder.

[output] overrides the configured export directory. When neither is set the
command does nothing. An existing output directory is cleared first; a file
already at the output path is left alone and the run fails as empty.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSettings(cmd)
		if err != nil {
			return err
		}

		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get current directory: %w", err)
		}

		req := &engine.PublishRequest{
			Settings: s,
			CWD:      cwd,
			DryRun:   publishDryRun,
			Digest:   publishDigest,
		}
		if len(args) > 0 {
			req.Output = args[0]
		}

		if !publishDryRun {
			l, err := lock.Acquire(s.MergedRoot)
			if err != nil {
				if errors.Is(err, lock.ErrLocked) {
					PrintError("Another publish is running against " + s.MergedRoot)
				}
				return err
			}
			newLogger().Debug("acquired run lock", slog.String("path", l.Path()))
			defer func() {
				_ = l.Release()
			}()
		}

		result, err := newEngine(s).PublishMergedTree(cmd.Context(), req)
		if err != nil {
			return err
		}

		if jsonOutput {
			return outputJSON(result)
		}

		if result.Skipped {
			PrintWarning("No output folder configured; nothing to publish")
			return nil
		}

		if result.DryRun {
			PrintSection("Dry Run")
			PrintInfo(fmt.Sprintf("Would link %s into %s",
				PrintCount(len(result.Plan.Operations), "file", "files"), s.MergedRoot))
			PrintInfo(fmt.Sprintf("Would publish to %s", result.Output))
			printOverrides(result.Plan.Overrides)
			return nil
		}

		PrintSuccess(fmt.Sprintf("Published %s from %s",
			PrintCount(len(result.Merge.Winners), "file", "files"),
			PrintCount(len(result.Merge.Layers), "layer", "layers")))
		PrintLabelValue("Output", result.Output)
		PrintLabelValue("Strategy", result.Publish.Strategy)
		if result.Merge.BaseLinked {
			PrintLabelValue("Base file", s.BaseFile())
		}
		if result.Digest != "" {
			PrintLabelValue("Digest", result.Digest)
		}
		PrintLabelValue("Duration", result.Duration.String())
		return nil
	},
}

func init() {
	publishCmd.Flags().BoolVar(&publishDryRun, "dry-run", false, "Show what would be merged without touching the filesystem")
	publishCmd.Flags().BoolVar(&publishDigest, "digest", false, "Record a content digest of the published output")
}
