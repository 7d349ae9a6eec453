// Package catalog stores document records and answers lookups by id and by
// address.
//
// Memory and Badger are local backends. Client is a backend that talks to a
// remote catalog over REST, and Server serves any backend over the same API,
// so a local Badger catalog can stand in for the remote service.
//
// Create is idempotent for identical records and rejects a different record
// under an existing id; ids are content locators, so a collision means the
// caller tried to rewrite history.
package catalog
