// Package aggregates defines domain-facing aggregate contracts and the error
// taxonomy shared by stores, services and the HTTP layer.
//
// Contracts stay free of persistence/transport details and describe the write
// boundaries where user-progress invariants are enforced atomically.
package aggregates
