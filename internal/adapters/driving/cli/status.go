package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var statusJSON bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the loaded document",
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "output status as JSON")
	rootCmd.AddCommand(statusCmd)
}

type statusOutput struct {
	HasDocument      bool     `json:"has_document"`
	DocumentName     string   `json:"document_name,omitempty"`
	IngestedAt       string   `json:"ingested_at,omitempty"`
	Segments         int      `json:"segments,omitempty"`
	GenerationID     string   `json:"generation_id,omitempty"`
	SupportedFormats []string `json:"supported_formats"`
}

func runStatus(cmd *cobra.Command, _ []string) error {
	if err := requireQA(); err != nil {
		return err
	}

	status := qaService.Status()
	out := statusOutput{
		HasDocument:      status.HasDocument,
		DocumentName:     status.DocumentName,
		Segments:         status.Segments,
		GenerationID:     status.GenerationID,
		SupportedFormats: []string{},
	}
	if status.IngestedAt != nil {
		out.IngestedAt = status.IngestedAt.Format(time.RFC3339)
	}
	if uploadService != nil {
		out.SupportedFormats = uploadService.SupportedFormats()
	}

	if statusJSON {
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal status: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if !out.HasDocument {
		cmd.Println("No document loaded.")
	} else {
		cmd.Printf("Document:   %s\n", out.DocumentName)
		cmd.Printf("Segments:   %d\n", out.Segments)
		if out.IngestedAt != "" {
			cmd.Printf("Ingested:   %s\n", out.IngestedAt)
		}
		cmd.Printf("Generation: %s\n", out.GenerationID)
	}
	if len(out.SupportedFormats) > 0 {
		cmd.Printf("Formats:    %s\n", strings.Join(out.SupportedFormats, ", "))
	}
	return nil
}
