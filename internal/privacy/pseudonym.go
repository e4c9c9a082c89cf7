package privacy

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
)

// pseudonymWidth is the number of hex characters kept from the entity
// hash. Eight gives 32 bits, plenty for within-run uniqueness.
const pseudonymWidth = 8

// PseudonymTable maps normalized entity strings to stable pseudonym
// fragments. One table is constructed per run and discarded after,
// never a process-wide singleton. Insert-or-fetch is serialized so
// parallel workers see identical tokens for identical entities.
type PseudonymTable struct {
	mu      sync.Mutex
	entries map[string]string
}

// NewPseudonymTable creates an empty table for one run.
func NewPseudonymTable() *PseudonymTable {
	return &PseudonymTable{entries: make(map[string]string)}
}

// Token returns the stable pseudonym fragment for an entity. The same
// normalized entity always yields the same fragment; the mapping is
// one-way (truncated SHA-256 of the normalized text).
func (t *PseudonymTable) Token(entity string) string {
	norm := normalizeEntity(entity)

	t.mu.Lock()
	defer t.mu.Unlock()

	if tok, ok := t.entries[norm]; ok {
		return tok
	}
	sum := sha256.Sum256([]byte(norm))
	tok := hex.EncodeToString(sum[:])[:pseudonymWidth]
	t.entries[norm] = tok
	return tok
}

// Len reports how many distinct entities have been pseudonymized.
func (t *PseudonymTable) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

// normalizeEntity lower-cases and collapses whitespace so "John  Smith"
// and "john smith" share one pseudonym.
func normalizeEntity(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
