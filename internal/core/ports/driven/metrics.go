package driven

import (
	"time"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// Ingest outcomes reported to Metrics.
const (
	IngestSucceeded = "succeeded"
	IngestRejected  = "rejected"
	IngestFailed    = "failed"
)

// Metrics records pipeline measurements.
// Implementations must be safe for concurrent use.
type Metrics interface {
	// ObserveIngest records one ingestion. segments is the size of the new
	// generation and is only meaningful for IngestSucceeded.
	ObserveIngest(outcome string, segments int, elapsed time.Duration)

	// ObserveAnswer records one answered question by outcome.
	ObserveAnswer(kind domain.AnswerKind, elapsed time.Duration)

	// ObserveSimilarity records a relevance gate score.
	ObserveSimilarity(similarity float64)
}
