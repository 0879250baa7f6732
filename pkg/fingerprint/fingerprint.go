// Package fingerprint deterministically hashes a row's value-column tuple,
// the Go-native replacement for the SQL row_hash column this codebase's
// SCD2 loader computes in DuckDB.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/gingermike/bitemporal-timeseries/pkg/value"
)

// Digest returns the lowercase hex SHA-256 digest of the canonical
// encoding of values, in order. Equal value tuples always produce equal
// digests; unequal tuples produce distinct digests with overwhelming
// probability.
func Digest(values []value.Value) string {
	var buf []byte
	for _, v := range values {
		buf = v.CanonicalEncode(buf)
	}
	sum := sha256.Sum256(buf)
	return hex.EncodeToString(sum[:])
}
