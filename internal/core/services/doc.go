// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The question-answering pipeline is split into small collaborators that
// the Session wires together:
//
//	Ingest: Chunker -> EmbeddingService -> IndexManager (allocate, build, mark, swap)
//	Answer: RelevanceGate -> Retriever -> AnswerGenerator
//
// Services are pure Go with no CGO or external dependencies.
package services
