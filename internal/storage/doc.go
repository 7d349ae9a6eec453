// Package storage implements content-addressed blob stores.
//
// A locator is the CIDv1 (raw codec, sha2-256) of the stored bytes, so the
// same blob always gets the same locator and a locator never changes what it
// points to. Memory serves tests; Filesystem keeps blobs under the data
// directory, sharded by the last two characters of the CID.
package storage
