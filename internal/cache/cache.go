// Package cache holds validated stage responses keyed by claim fingerprint,
// so identical resubmissions skip duplicate LLM spend. Only payloads that
// passed schema validation go in; rejected provider output is never cached.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache is the stage-response cache interface.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// StageKey derives the cache key for one (stage, canonical claim) pair.
func StageKey(stage, canonicalID string) string {
	sum := sha256.Sum256([]byte(stage + "|" + canonicalID))
	return "claimforge:v1:" + stage + ":" + hex.EncodeToString(sum[:16])
}
