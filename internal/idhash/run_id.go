package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"sort"
	"strings"

	"github.com/mr-tron/base58"
)

// ComputeRunID computes a deterministic run_id.
// Formula: base58(SHA256(season|panel_fingerprint|sorted models|config_hash))
// The same panel evaluated with the same models and config yields the same id.
func ComputeRunID(season, panelFingerprint string, models []string, configHash string) string {
	sorted := append([]string(nil), models...)
	sort.Strings(sorted)

	data := strings.Join([]string{season, panelFingerprint, strings.Join(sorted, ","), configHash}, "|")
	sum := sha256.Sum256([]byte(data))
	return base58.Encode(sum[:])
}

// ShortID returns the first n characters of id, for directory names and logs.
func ShortID(id string, n int) string {
	if len(id) <= n {
		return id
	}
	return id[:n]
}

// Fingerprint accumulates records into a SHA256 digest.
// Each record is written as its fields joined by '|' and terminated by '\n',
// so the digest depends on record order.
type Fingerprint struct {
	h       hash.Hash
	records int
}

// NewFingerprint creates an empty fingerprint.
func NewFingerprint() *Fingerprint {
	return &Fingerprint{h: sha256.New()}
}

// Add writes one record.
func (f *Fingerprint) Add(fields ...string) {
	f.h.Write([]byte(strings.Join(fields, "|")))
	f.h.Write([]byte{'\n'})
	f.records++
}

// Records returns the number of records added.
func (f *Fingerprint) Records() int {
	return f.records
}

// Sum returns the hex-encoded digest (64 characters).
func (f *Fingerprint) Sum() string {
	return hex.EncodeToString(f.h.Sum(nil))
}

// HashParts returns the hex SHA256 of parts joined by '|'.
func HashParts(parts ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}
