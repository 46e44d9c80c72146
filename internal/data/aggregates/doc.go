// Package aggregates contains infrastructure implementations of domain aggregate contracts.
//
// Implementations compose table-level repos from internal/data/repos and own the
// transaction boundary of every user-progress write. Writes are version guarded;
// nothing here retries.
package aggregates
