// Package documents defines the catalog record shared by every workflow.
//
// A Document is either an upload (the owner's copy, carrying the content key
// wrapped for the owner) or a share (a re-encrypted copy readable by the
// owner and one recipient, carrying both public keys and no key material).
// Role resolution for shares is by wallet address.
package documents
