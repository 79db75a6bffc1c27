package db

import (
	"encoding/json"

	"github.com/jonathan/evidence-engine/internal/types"
)

// List limits
const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// StoredEvidence is a stored run together with its raw evidence document.
type StoredEvidence struct {
	types.EvidenceRun
	Document json.RawMessage `json:"document"`
}

// NormalizeLimit clamps a caller-supplied list limit to (0, MaxListLimit],
// using DefaultListLimit for non-positive values.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	if limit > MaxListLimit {
		return MaxListLimit
	}
	return limit
}
