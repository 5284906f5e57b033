package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Column errors
	ErrColumn        = errors.New("column error")
	ErrMissingColumn = fmt.Errorf("%w: declared column missing from dataset", ErrColumn)
	ErrUnknownColumn = fmt.Errorf("%w: unknown column", ErrColumn)
	ErrNonNumeric    = fmt.Errorf("%w: non-numeric value in continuous column", ErrColumn)

	// Role configuration errors
	ErrRoles          = errors.New("invalid column roles")
	ErrDuplicateRole  = fmt.Errorf("%w: role may be assigned at most once", ErrRoles)
	ErrUnknownRole    = fmt.Errorf("%w: unknown role code", ErrRoles)
	ErrRoleCount      = fmt.Errorf("%w: role count does not match column count", ErrRoles)
	ErrNoRolesToSplit = fmt.Errorf("%w: no categorical or continuous column to balance", ErrRoles)

	// Dataset errors
	ErrEmptyDataset = errors.New("dataset has no items")
	ErrTooFewSets   = errors.New("at least 2 subsets are required")

	// Clustering errors. Recovered locally by collapsing to a single cluster.
	ErrDegenerateClustering = errors.New("too few items to form at least 2 clusters")
	ErrNotFinite            = errors.New("non-finite dissimilarity")
)
