// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// VectorizationManager owns the per-document vector lifecycle, Dispatcher
// runs it in the background with one writer per document, SearchService is
// the query engine and Reconciler with Maintenance cleans up orphaned entries.
//
// Services are pure Go with no CGO or external dependencies.
package services
