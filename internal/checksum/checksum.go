// Package checksum computes content digests used for ETags and snapshot dedupe.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Sum returns the hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// JSON encodes v and returns the encoding together with its digest.
// encoding/json sorts map keys, so equal values yield equal digests.
func JSON(v any) ([]byte, string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, "", fmt.Errorf("checksum: marshal: %w", err)
	}
	return data, Sum(data), nil
}
