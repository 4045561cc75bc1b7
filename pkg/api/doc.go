// Package api contains the contracts shared by the proctree editor, executor
// and their collaborators.
//
// Most users interact with the higher-level proctree package, which re-exports
// selected types and helpers from this package. The api package is intended
// for custom integrations such as alternative clipboards, serializers or
// execution services.
//
// # Collaborators
//
//   - ExecutionService runs one task at a time and queues the rest.
//   - Clipboard stores the payload produced by copy and cut.
//   - Serializer snapshots and restores components and connections.
//   - Transactions brackets compound edits into undo units.
//
// # Errors
//
// Preconditions fail with *ValidationError before anything is mutated.
// Invalid clipboard content fails with *InvalidClipboardData. Issues met
// while an edit is already under way never abort it; they are reported as
// *StructuralIntegrityWarning or *MatchingFailure in EditResult.Diagnostics
// and through Observer.OnDiagnostic.
//
// # Observability
//
// Observer receives execution lifecycle callbacks and edit diagnostics.
// LoggingObserver, BasicMetrics and CompositeObserver are ready-made
// implementations.
package api
