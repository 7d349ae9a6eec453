// Package session holds the keypair of the signed-in wallet for the life of
// one process. Nothing here is persisted; Close zeroes the private key.
package session
