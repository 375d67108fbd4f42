package storage

import (
	"fmt"

	cidlib "github.com/ipfs/go-cid"
	mh "github.com/multiformats/go-multihash"
)

// ComputeCID derives a CIDv1 (raw codec, sha2-256) from an already computed
// sha-256 digest. Providers that store bytes themselves use this so their
// identifiers line up with what a pinning gateway would assign.
func ComputeCID(sha256Digest []byte) (string, error) {
	encoded, err := mh.Encode(sha256Digest, mh.SHA2_256)
	if err != nil {
		return "", fmt.Errorf("encode multihash: %w", err)
	}
	return cidlib.NewCidV1(cidlib.Raw, encoded).String(), nil
}

// ValidCID reports whether s parses as a CID. The write path refuses to
// commit metadata for an identifier the store never could have produced.
func ValidCID(s string) bool {
	_, err := cidlib.Decode(s)
	return err == nil
}
