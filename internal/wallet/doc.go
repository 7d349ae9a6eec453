// Package wallet provides the signers that unlock a session.
//
// A wallet answers two questions: which address it controls, and what its
// signature over a message is. KeyWallet holds an account key loaded from a
// keystore v3 file or a hex string and signs like personal_sign. Static
// returns canned values for tests and scripted use.
package wallet
