package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var (
	ingestText string
	ingestName string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [file]",
	Short: "Load a document",
	Long: `Load a document to answer questions about. The new document replaces the
previous one.

Files are read by extension: .txt, .pdf, .docx, .md and .html are supported.
Use --text to ingest raw text instead of a file.

Examples:
  docqa ingest policy.pdf
  docqa ingest --text "Refunds are accepted within 30 days." --name policy`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestText, "text", "", "ingest this text instead of a file")
	ingestCmd.Flags().StringVar(&ingestName, "name", "", "display name for --text documents")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if err := requireQA(); err != nil {
		return err
	}

	if ingestText != "" {
		if len(args) > 0 {
			return errors.New("use either a file or --text, not both")
		}
		msg, err := qaService.Ingest(cmd.Context(), ingestText, ingestName)
		if err != nil {
			return fmt.Errorf("ingest failed: %w", err)
		}
		cmd.Println(msg)
		return nil
	}

	if len(args) == 0 {
		return errors.New("a file or --text is required")
	}
	if err := requireUpload(); err != nil {
		return err
	}

	path := args[0]
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	result, err := uploadService.IngestFile(cmd.Context(), content, filepath.Base(path))
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	cmd.Println(result.Message)
	cmd.Printf("Extracted %d characters from %s\n", result.TextLength, result.Filename)
	return nil
}
