package cli

import (
	"github.com/spf13/cobra"

	httpapi "github.com/custodia-labs/docqa/internal/adapters/driving/http"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start the HTTP API.

Endpoints:
  POST /upload   multipart "file" field
  POST /ask      {"question": "..."}
  GET  /status
  GET  /health
  GET  /metrics  Prometheus metrics`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from server.addr)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if err := requireQA(); err != nil {
		return err
	}

	server, err := newHTTPServer()
	if err != nil {
		return err
	}

	addr := serveAddr
	if addr == "" {
		addr = serverSettings.Addr
	}
	cmd.Printf("HTTP API listening on %s\n", addr)
	return server.Run(cmd.Context(), addr)
}

func newHTTPServer() (*httpapi.Server, error) {
	opts := []httpapi.Options{
		httpapi.WithRateLimit(serverSettings.RateLimit, serverSettings.Burst),
	}
	if uploadService != nil {
		opts = append(opts, httpapi.WithUpload(uploadService))
	}
	if metricsRegistry != nil {
		opts = append(opts, httpapi.WithMetrics(metricsRegistry))
	}
	return httpapi.New(qaService, opts...)
}
