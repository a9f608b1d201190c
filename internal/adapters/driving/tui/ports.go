// Package tui provides an interactive chat interface for docqa.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
)

// Ports aggregates the driving ports used by the TUI.
type Ports struct {
	// QA answers questions about the loaded document.
	QA driving.QAService

	// Upload loads files from the chat with /load. Optional.
	Upload driving.UploadService
}

// Validate ensures the required ports are set.
func (p *Ports) Validate() error {
	if p == nil || p.QA == nil {
		return ErrMissingQAService
	}
	return nil
}
