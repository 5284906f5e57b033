package run

import (
	"fmt"
	"time"

	"setsplit/domain/core"
)

// Manifest is the complete specification for one partition run. It is built
// before the first cycle and printed in the report header.
type Manifest struct {
	RunID       core.RunID       `json:"run_id"`
	Source      string           `json:"source"`
	DatasetHash core.DatasetHash `json:"dataset_hash"`
	RolesHash   core.RolesHash   `json:"roles_hash"`
	Sets        int              `json:"sets"`
	Seed        int64            `json:"seed"`
	RunNumber   int              `json:"run_number"`
	CodeVersion string           `json:"code_version"`
	Fingerprint RunFingerprint   `json:"fingerprint"`
	CreatedAt   time.Time        `json:"created_at"`
}

// NewManifest creates a run manifest
func NewManifest(source string, datasetHash core.DatasetHash, rolesHash core.RolesHash,
	sets int, seed int64, runNumber int) *Manifest {

	return &Manifest{
		RunID:       core.NewRunID(),
		Source:      source,
		DatasetHash: datasetHash,
		RolesHash:   rolesHash,
		Sets:        sets,
		Seed:        seed,
		RunNumber:   runNumber,
		CodeVersion: CodeVersion,
		Fingerprint: NewRunFingerprint(datasetHash, rolesHash, sets, seed, CodeVersion),
		CreatedAt:   time.Now(),
	}
}

// Validate checks if the manifest is complete
func (m *Manifest) Validate() error {
	if m.RunID.IsEmpty() {
		return fmt.Errorf("run manifest: run_id cannot be empty")
	}
	if m.DatasetHash == "" {
		return fmt.Errorf("run manifest: dataset_hash cannot be empty")
	}
	if m.Sets < 2 {
		return fmt.Errorf("run manifest: %w", core.ErrTooFewSets)
	}
	if m.CodeVersion == "" {
		return fmt.Errorf("run manifest: code_version cannot be empty")
	}
	return nil
}
