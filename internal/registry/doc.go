// Package registry is the ledger that binds public keys to wallet addresses
// and records which files exist, with their digests and owners.
//
// Memory is for tests and single-process use; Badger persists to the data
// directory. Both treat repeated identical writes as no-ops, so a workflow
// may retry a step without tripping over its own earlier attempt.
package registry
