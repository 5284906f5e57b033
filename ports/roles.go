package ports

import (
	"context"

	"setsplit/domain/dataset"
)

// RolePrompter asks for the role of one column. preview holds a few example
// values from the column.
type RolePrompter interface {
	PromptRole(ctx context.Context, column string, preview []string) (dataset.Role, error)
}
