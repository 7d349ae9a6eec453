// Package secrets provides the cryptographic pipeline of securechain.
//
// # Encryption Architecture
//
// securechain uses a hybrid scheme:
//
//  1. A random 256-bit content key encrypts each file with Cipher
//  2. The content key is wrapped for the owner's public key with KeyWrapper
//  3. Sharing re-encrypts the plaintext under a static ECDH key between the
//     owner and the recipient (DeriveSharedKey), so no key is ever sent
//
// # Key Derivation
//
// DeriveKeyPair turns a wallet signature into a secp256k1 keypair: SHA-256
// of the signature seeds an HMAC-DRBG that generates the private scalar.
// The same signature always yields the same keypair, so nothing is stored;
// the keypair is re-derived whenever the wallet signs the login message.
//
// # Blob Format
//
// Cipher treats its key as a passphrase. argon2id with a fresh 16-byte salt
// derives the AES-256 key and GCM nonce, and the salt and cost parameters
// are written into the blob header, so a blob decrypts with nothing but the
// key that sealed it. The header is authenticated.
//
// # Failure Reporting
//
// Decrypt and Unwrap return ErrDecryptFailed / ErrUnwrapFailed for every
// failure: wrong key, flipped byte, truncation or an unparsable header all
// look the same to the caller.
package secrets
