package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

var askJSON bool

// stdinIsTerminal reports whether stdin is interactive. Replaced in tests.
var stdinIsTerminal = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

var askCmd = &cobra.Command{
	Use:   "ask [question...]",
	Short: "Ask a question about the loaded document",
	Long: `Ask a question about the loaded document.

The question is taken from the arguments, or read from stdin when no
arguments are given and stdin is not a terminal.

Examples:
  docqa ask "How long do I have to request a refund?"
  echo "Who approves refunds?" | docqa ask --json`,
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if err := requireQA(); err != nil {
		return err
	}

	question := strings.TrimSpace(strings.Join(args, " "))
	if question == "" && !stdinIsTerminal() {
		data, err := io.ReadAll(io.LimitReader(cmd.InOrStdin(), 1<<20))
		if err != nil {
			return fmt.Errorf("reading question: %w", err)
		}
		question = strings.TrimSpace(string(data))
	}
	if question == "" {
		return errors.New("a question is required")
	}

	answer := qaService.Answer(cmd.Context(), question)

	if askJSON {
		return outputAnswerJSON(cmd, answer)
	}

	cmd.Println(answer.Result)
	if answer.Confidence != nil {
		cmd.Printf("\nConfidence: %.2f\n", *answer.Confidence)
	}
	return nil
}

func outputAnswerJSON(cmd *cobra.Command, answer domain.Answer) error {
	data, err := json.MarshalIndent(map[string]domain.Answer{"answer": answer}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal answer: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
