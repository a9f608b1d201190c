// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - EmbeddingService: Turns segments, questions and document samples into vectors
//   - LLMService: Produces an answer from a rendered prompt
//   - VectorStore: Builds and reopens index generations
//   - StorageAllocator: Hands out and records generation directories
//   - ConfigStore: Application configuration
//   - PromptStore: Prompt templates
//
// # Optional Interfaces
//
//   - TextExtractor: Needed only by the upload path (files rather than raw text)
//   - GroundedGenerator: Models that take question and passages directly
//   - PromptStoreAware: Models whose prompts can be customised
//   - Metrics: Pipeline measurements (a no-op recorder is used when absent)
//   - AIConfigValidator: Connectivity checks behind "settings check"
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or normaliser package
package driven
