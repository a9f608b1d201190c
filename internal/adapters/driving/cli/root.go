// Package cli provides the cobra command tree for docqa.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
	"github.com/custodia-labs/docqa/internal/logger"
	"github.com/custodia-labs/docqa/internal/metrics"
)

// Services holds the driving ports the commands run against.
type Services struct {
	QA       driving.QAService
	Upload   driving.UploadService
	Settings driving.SettingsService
	Metrics  *metrics.Metrics
	Server   domain.ServerSettings

	// Close releases model clients and stores. May be nil.
	Close func() error
}

// Bootstrap builds the services for the given home directory.
type Bootstrap func(ctx context.Context, home string) (*Services, error)

var (
	version = "dev"

	verbose bool
	homeDir string

	bootstrap Bootstrap
	closer    func() error

	qaService       driving.QAService
	uploadService   driving.UploadService
	settingsService driving.SettingsService
	metricsRegistry *metrics.Metrics
	serverSettings  = domain.DefaultAppSettings().Server
)

var errServicesNotConfigured = errors.New("services not configured")

var rootCmd = &cobra.Command{
	Use:   "docqa",
	Short: "Ask questions about a document",
	Long: `docqa answers natural-language questions about a single document.

Ingest a text, PDF, DOCX, Markdown or HTML file, then ask questions from the
command line, an interactive chat, an HTTP API or an MCP client. Questions
unrelated to the document are declined.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupServices,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print pipeline diagnostics to stderr")
	rootCmd.PersistentFlags().StringVar(&homeDir, "home", "", "data directory (default ~/.docqa)")
}

// SetVersion sets the version printed by the version command.
func SetVersion(v string) {
	version = v
}

// SetBootstrap sets the function that builds services before a command runs.
func SetBootstrap(b Bootstrap) {
	bootstrap = b
}

// SetServices installs services directly, bypassing Bootstrap.
func SetServices(s *Services) {
	qaService = s.QA
	uploadService = s.Upload
	settingsService = s.Settings
	metricsRegistry = s.Metrics
	if s.Server.Addr != "" {
		serverSettings = s.Server
	}
	closer = s.Close
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if closer != nil {
		if cerr := closer(); cerr != nil {
			logger.Warn("shutdown: %v", cerr)
		}
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}

// setupServices runs Bootstrap unless services are already installed.
func setupServices(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	if !needsServices(cmd) || qaService != nil || bootstrap == nil {
		return nil
	}

	s, err := bootstrap(cmd.Context(), homeDir)
	if err != nil {
		return fmt.Errorf("starting docqa: %w", err)
	}
	SetServices(s)
	return nil
}

// needsServices reports whether cmd talks to the session.
func needsServices(cmd *cobra.Command) bool {
	switch cmd.Name() {
	case versionCmd.Name(), "help", "completion":
		return false
	}
	return true
}

func requireQA() error {
	if qaService == nil {
		return fmt.Errorf("qa service: %w", errServicesNotConfigured)
	}
	return nil
}

func requireUpload() error {
	if uploadService == nil {
		return fmt.Errorf("upload service: %w", errServicesNotConfigured)
	}
	return nil
}

func requireSettings() error {
	if settingsService == nil {
		return fmt.Errorf("settings service: %w", errServicesNotConfigured)
	}
	return nil
}
