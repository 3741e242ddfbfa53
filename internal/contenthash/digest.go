package contenthash

import (
	"crypto/md5"
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// IdentifierDigestLen and IntegrityDigestLen are the hex lengths of the two
// digests.
const (
	IdentifierDigestLen = md5.Size * 2
	IntegrityDigestLen  = blake2b.Size * 2
)

// IdentifierDigest is the fast 128-bit digest used for object identity,
// scenario seeds and aggregate hashes. It is not collision resistant against
// an adversary.
func IdentifierDigest(v any) (string, error) {
	canonical, err := Canonicalize(v)
	if err != nil {
		return "", err
	}
	sum := md5.Sum(canonical)
	return hex.EncodeToString(sum[:]), nil
}

// IntegrityDigest is the keyless BLAKE2b-512 digest used for security marks.
func IntegrityDigest(v any) (string, error) {
	canonical, err := Canonicalize(v)
	if err != nil {
		return "", err
	}
	sum := blake2b.Sum512(canonical)
	return hex.EncodeToString(sum[:]), nil
}
