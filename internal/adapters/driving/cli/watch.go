package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa/internal/adapters/driving/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Ingest files as they are written to a directory",
	Long: `Watch a directory and ingest every supported file that is created or
rewritten in it. Each ingested file replaces the previous document.

Hidden files and unsupported extensions are ignored. Press Ctrl+C to stop.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if err := requireUpload(); err != nil {
		return err
	}

	w, err := watch.New(args[0], uploadService)
	if err != nil {
		return err
	}

	results, err := w.Watch(cmd.Context())
	if err != nil {
		return err
	}

	cmd.Printf("Watching %s\n", w.Dir())
	for result := range results {
		if result.Err != nil {
			cmd.PrintErrf("%s: %v\n", result.Path, result.Err)
			continue
		}
		cmd.Printf("%s: %s\n", result.Path, result.Upload.Message)
	}
	return nil
}
