package ir

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"golang.org/x/text/unicode/norm"
)

// DomainRecord is the domain prefix for content-addressed record identity.
// The version suffix enables future algorithm migration.
const DomainRecord = "incompat/record/v1"

// hashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// canonicalRecord serializes a record for hashing: JSON without HTML
// escaping, NFC-normalized so equivalent reason text hashes identically.
func canonicalRecord(r IncompatRecord) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(r); err != nil {
		return nil, err
	}
	return norm.NFC.Bytes(bytes.TrimSpace(buf.Bytes())), nil
}

// RecordID computes the content-addressed ID of a record.
// Records are values, so two structurally equal records share an ID;
// the store uses this to make re-imports idempotent.
func RecordID(r IncompatRecord) (string, error) {
	data, err := canonicalRecord(r)
	if err != nil {
		return "", fmt.Errorf("RecordID: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainRecord, data), nil
}

// MustRecordID is like RecordID but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustRecordID(r IncompatRecord) string {
	id, err := RecordID(r)
	if err != nil {
		panic(err)
	}
	return id
}
