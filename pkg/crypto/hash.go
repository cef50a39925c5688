package crypto

import "crypto/sha256"

// DoubleSHA256 hashes data twice. A single SHA-256 round is vulnerable
// to length-extension; hashing the digest a second time closes that
// off, the same choice Bitcoin made.
func DoubleSHA256(data []byte) [32]byte {
	first := sha256.Sum256(data)
	return sha256.Sum256(first[:])
}
