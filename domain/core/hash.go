package core

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// Short returns the first 12 hex characters, enough for report headers
func (h Hash) Short() string {
	if len(h) <= 12 {
		return string(h)
	}
	return string(h[:12])
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// Domain-specific hash types
type (
	DatasetHash Hash
	RolesHash   Hash
)

func (h DatasetHash) String() string { return Hash(h).String() }
func (h RolesHash) String() string   { return Hash(h).String() }

// ComputeDatasetHash hashes headers and cells in row order
func ComputeDatasetHash(headers []string, rows [][]string) DatasetHash {
	var data strings.Builder
	data.WriteString(strings.Join(headers, "\x1f"))
	for _, row := range rows {
		data.WriteByte('\x1e')
		data.WriteString(strings.Join(row, "\x1f"))
	}
	return DatasetHash(NewHash([]byte(data.String())))
}

// ComputeRolesHash hashes a column->role mapping independent of map order
func ComputeRolesHash(roles map[string]string) RolesHash {
	keys := make([]string, 0, len(roles))
	for k := range roles {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var data strings.Builder
	for _, key := range keys {
		data.WriteString(fmt.Sprintf("%s=%s;", key, roles[key]))
	}
	return RolesHash(NewHash([]byte(data.String())))
}
