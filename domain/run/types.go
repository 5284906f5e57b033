package run

import (
	"crypto/sha256"
	"fmt"

	"setsplit/domain/core"
)

// CodeVersion is recorded in every manifest so reports can be traced to a build
const CodeVersion = "1.0.0"

// RunFingerprint ensures deterministic replay: the same dataset, roles, subset
// count and seed reproduce the same assignment.
type RunFingerprint struct {
	DatasetHash core.DatasetHash `json:"dataset_hash"`
	RolesHash   core.RolesHash   `json:"roles_hash"`
	Sets        int              `json:"sets"`
	Seed        int64            `json:"seed"`
	CodeVersion string           `json:"code_version"`
	Fingerprint core.Hash        `json:"fingerprint"` // Hash of all above
}

// NewRunFingerprint creates a fingerprint from determinism parameters
func NewRunFingerprint(datasetHash core.DatasetHash, rolesHash core.RolesHash,
	sets int, seed int64, codeVersion string) RunFingerprint {

	return RunFingerprint{
		DatasetHash: datasetHash,
		RolesHash:   rolesHash,
		Sets:        sets,
		Seed:        seed,
		CodeVersion: codeVersion,
		Fingerprint: computeRunFingerprint(datasetHash, rolesHash, sets, seed, codeVersion),
	}
}

func computeRunFingerprint(datasetHash core.DatasetHash, rolesHash core.RolesHash,
	sets int, seed int64, codeVersion string) core.Hash {

	data := fmt.Sprintf("dataset:%s|roles:%s|sets:%d|seed:%d|code:%s",
		datasetHash, rolesHash, sets, seed, codeVersion)

	hash := sha256.Sum256([]byte(data))
	return core.Hash(fmt.Sprintf("%x", hash))
}
