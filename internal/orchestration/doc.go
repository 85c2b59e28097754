// Package orchestration runs orders in the single, concurrent and sequential
// regimes, compares the two batch regimes and mirrors every state change into
// a ResultStore. It decouples business logic from presentation via the
// ProgressReporter and ResultPresenter interfaces.
package orchestration
