package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainCoordinate = "sentropy/coordinate/v1"
	DomainTrace      = "sentropy/trace/v1"
)

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
// The null byte separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// CoordinateKey computes the cache key for an aligned coordinate.
//
// The three raw inputs are hashed by their IEEE-754 bits, so inputs that
// print identically but differ in the last ulp get distinct keys. bucket is
// the coarse time bucket (unix seconds divided by the bucket width); two
// alignments of the same inputs in the same bucket share a key and the later
// one overwrites the earlier.
func CoordinateKey(knowledge, time, entropy float64, bucket int64) (string, error) {
	obj := IRObject{
		"knowledge": FloatBits(knowledge),
		"time":      FloatBits(time),
		"entropy":   FloatBits(entropy),
		"bucket":    IRInt(bucket),
	}

	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("CoordinateKey: failed to marshal: %w", err)
	}

	return hashWithDomain(DomainCoordinate, canonical), nil
}

// TraceHash computes a content hash over a canonical trace object.
func TraceHash(trace IRObject) (string, error) {
	canonical, err := MarshalCanonical(trace)
	if err != nil {
		return "", fmt.Errorf("TraceHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainTrace, canonical), nil
}

// MustCoordinateKey is like CoordinateKey but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustCoordinateKey(knowledge, time, entropy float64, bucket int64) string {
	key, err := CoordinateKey(knowledge, time, entropy, bucket)
	if err != nil {
		panic(err)
	}
	return key
}
