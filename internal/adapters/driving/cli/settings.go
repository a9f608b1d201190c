package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and change docqa settings.

Settings are stored in config.toml in the data directory. API keys not set
there are read from OPENAI_API_KEY and ANTHROPIC_API_KEY.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> [value]",
	Short: "Change a setting",
	Long: `Change a setting. Run 'docqa settings keys' to list the keys.

When the value is omitted for an api_key setting, it is read from the
terminal without echo.

Examples:
  docqa settings set llm.provider ollama
  docqa settings set qa.relevance_threshold 0.25
  docqa settings set embedding.api_key`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runSettingsSet,
}

var settingsKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List setting keys",
	RunE:  runSettingsKeys,
}

var settingsCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate settings and ping the configured models",
	RunE:  runSettingsCheck,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsKeysCmd)
	settingsCmd.AddCommand(settingsCheckCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if err := requireSettings(); err != nil {
		return err
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	printModel(cmd, "Embedding", settings.Embedding, domain.DefaultEmbeddingModels())
	if settings.Similarity.Provider.IsValid() {
		printModel(cmd, "Similarity", settings.Similarity, domain.DefaultEmbeddingModels())
	} else {
		cmd.Println("[Similarity]")
		cmd.Println("  Same as embedding")
		cmd.Println()
	}
	printModel(cmd, "LLM", settings.LLM, domain.DefaultLLMModels())

	if settings.Embedding.Provider == domain.AIProviderGemini || settings.LLM.Provider == domain.AIProviderGemini {
		cmd.Println("[Gemini]")
		cmd.Printf("  Project: %s\n", valueOrUnset(settings.Gemini.ProjectID))
		cmd.Printf("  Location: %s\n", settings.Gemini.Location)
		cmd.Println()
	}

	cmd.Println("[QA]")
	cmd.Printf("  Chunk size: %d (overlap %d)\n", settings.QA.ChunkSize, settings.QA.ChunkOverlap)
	cmd.Printf("  Top K: %d\n", settings.QA.TopK)
	cmd.Printf("  Relevance threshold: %.2f\n", settings.QA.RelevanceThreshold)
	cmd.Printf("  Sample size: %d\n", settings.QA.SampleSize)
	cmd.Printf("  Max context: %d\n", settings.QA.MaxContextChars)
	cmd.Printf("  Gate policy: %s\n", settings.QA.GatePolicy)
	cmd.Println()

	cmd.Println("[Storage]")
	cmd.Printf("  Backend: %s\n", settings.Storage.Backend)
	cmd.Printf("  Index dir: %s\n", valueOrUnset(settings.Storage.IndexDir))
	cmd.Println()

	cmd.Println("[Server]")
	cmd.Printf("  Address: %s\n", settings.Server.Addr)
	cmd.Printf("  Rate limit: %.1f/s (burst %d)\n", settings.Server.RateLimit, settings.Server.Burst)
	cmd.Println()

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'docqa settings set <key> <value>' to fix configuration issues.")
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func printModel(cmd *cobra.Command, title string, m domain.ModelSettings, defaults map[domain.AIProvider]string) {
	cmd.Printf("[%s]\n", title)
	cmd.Printf("  Provider: %s\n", m.Provider.Description())
	cmd.Printf("  Model: %s\n", m.ModelOrDefault(defaults))
	if m.BaseURL != "" {
		cmd.Printf("  Base URL: %s\n", m.BaseURL)
	}
	if m.Provider.RequiresAPIKey() {
		if m.APIKey != "" {
			cmd.Printf("  API Key: %s\n", maskAPIKey(m.APIKey))
		} else {
			cmd.Printf("  API Key: (not set)\n")
		}
	}
	status := "configured"
	if !m.IsConfigured() {
		status = "not configured"
	}
	cmd.Printf("  Status: %s\n", status)
	cmd.Println()
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if err := requireSettings(); err != nil {
		return err
	}

	key := args[0]
	var value string
	if len(args) == 2 {
		value = args[1]
	} else {
		if !strings.HasSuffix(key, ".api_key") {
			return fmt.Errorf("a value is required for %s", key)
		}
		cmd.Printf("Enter value for %s: ", key)
		value = readPassword()
		cmd.Println()
		if value == "" {
			return errors.New("API key is required")
		}
	}

	if err := settingsService.Set(key, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}

	shown := value
	if strings.HasSuffix(key, ".api_key") {
		shown = maskAPIKey(value)
	}
	cmd.Printf("Set %s = %s\n", key, shown)
	cmd.Println("Restart running servers to apply the change.")
	return nil
}

func runSettingsKeys(cmd *cobra.Command, _ []string) error {
	if err := requireSettings(); err != nil {
		return err
	}

	values, err := settingsService.Values()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	for _, key := range settingsService.Keys() {
		cmd.Printf("%-28s %s\n", key, values[key])
	}
	return nil
}

func runSettingsCheck(cmd *cobra.Command, _ []string) error {
	if err := requireSettings(); err != nil {
		return err
	}

	if err := settingsService.Validate(); err != nil {
		return fmt.Errorf("configuration is invalid: %w", err)
	}

	checks := []struct {
		name string
		run  func() error
	}{
		{"embedding", func() error { return settingsService.ValidateEmbeddingConfig(cmd.Context()) }},
		{"similarity", func() error { return settingsService.ValidateSimilarityConfig(cmd.Context()) }},
		{"llm", func() error { return settingsService.ValidateLLMConfig(cmd.Context()) }},
	}

	var failed []string
	for _, c := range checks {
		cmd.Printf("Checking %s... ", c.name)
		if err := c.run(); err != nil {
			cmd.Printf("FAILED: %v\n", err)
			failed = append(failed, c.name)
			continue
		}
		cmd.Println("OK")
	}

	if len(failed) > 0 {
		return fmt.Errorf("model checks failed: %s", strings.Join(failed, ", "))
	}
	cmd.Println("All models are reachable.")
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readPassword() string {
	// Try to read password without echo
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return string(password)
		}
	}
	// Fallback to regular input
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

func valueOrUnset(v string) string {
	if v == "" {
		return "(not set)"
	}
	return v
}
