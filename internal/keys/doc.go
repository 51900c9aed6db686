// Package keys decodes and formats the key encodings used by Steem-family
// chains: WIF private keys and prefixed base58 public keys.
//
// Private key material never leaves this package in text form except via
// EncodeWIF; nothing here logs.
package keys
