package services

import (
	"time"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// nopMetrics discards measurements.
type nopMetrics struct{}

var _ driven.Metrics = nopMetrics{}

func (nopMetrics) ObserveIngest(string, int, time.Duration) {}
func (nopMetrics) ObserveAnswer(domain.AnswerKind, time.Duration) {}
func (nopMetrics) ObserveSimilarity(float64) {}
