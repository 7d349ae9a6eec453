// Package kv wraps an embedded badger database for the local catalog and
// registry. Keys are '/'-joined segments so related rows share a prefix and
// can be listed with Scan.
package kv
