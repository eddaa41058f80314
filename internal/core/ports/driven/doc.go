// Package driven declares what the core needs from infrastructure.
//
// The vectorization pipeline uses TextExtractor, Chunker, EmbeddingService,
// VectorStore and ResourceVectorIndex. Search reads VectorStore and joins
// with ResourceRepository, the canonical record owned by the Resource
// Service. ConfigStore and EmbeddingValidator back settings.
//
// ResourceCatalogue is the local stand-in for the Resource Service used by
// the CLI and the upload watcher; it also satisfies ResourceRepository.
// MaintenanceLog keeps the reconcile schedule and run history across
// restarts.
package driven
