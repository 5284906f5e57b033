package dataset

import (
	"fmt"
	"strings"

	"setsplit/domain/core"
)

// Role is the part a column plays in the partition
type Role string

const (
	RoleLabel       Role = "label"
	RoleCategorical Role = "categorical"
	RoleContinuous  Role = "continuous"
	RoleAbsolute    Role = "absolute"
	RoleDisregard   Role = "disregard"
)

// RoleCodes lists the one-letter codes accepted from users, in prompt order
var RoleCodes = []string{"l", "c", "n", "a", "d"}

// ParseRole accepts a one-letter code (l/c/n/a/d) or a full role name.
// "stratify" is accepted as an alias for absolute.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "l", "label":
		return RoleLabel, nil
	case "c", "categorical":
		return RoleCategorical, nil
	case "n", "continuous", "numeric":
		return RoleContinuous, nil
	case "a", "absolute", "stratify":
		return RoleAbsolute, nil
	case "d", "disregard", "ignore":
		return RoleDisregard, nil
	}
	return "", fmt.Errorf("%w: %q (expected one of %s)", core.ErrUnknownRole, s, strings.Join(RoleCodes, "/"))
}

// Code returns the one-letter code for the role
func (r Role) Code() string {
	switch r {
	case RoleLabel:
		return "l"
	case RoleCategorical:
		return "c"
	case RoleContinuous:
		return "n"
	case RoleAbsolute:
		return "a"
	default:
		return "d"
	}
}

// Roles assigns a role to each column. Columns without an entry are disregarded.
type Roles struct {
	Order    []string
	ByColumn map[string]Role
}

// NewRoles builds roles from an explicit mapping, keeping the given column order
func NewRoles(order []string, byColumn map[string]Role) Roles {
	m := make(map[string]Role, len(byColumn))
	for k, v := range byColumn {
		m[k] = v
	}
	return Roles{Order: append([]string{}, order...), ByColumn: m}
}

// RolesFromCodes pairs a positional list of role codes with the dataset headers
func RolesFromCodes(headers []string, codes []string) (Roles, error) {
	if len(codes) != len(headers) {
		return Roles{}, fmt.Errorf("%w: %d roles for %d columns", core.ErrRoleCount, len(codes), len(headers))
	}
	byColumn := make(map[string]Role, len(headers))
	for i, code := range codes {
		role, err := ParseRole(code)
		if err != nil {
			return Roles{}, fmt.Errorf("column %q: %w", headers[i], err)
		}
		byColumn[headers[i]] = role
	}
	return NewRoles(headers, byColumn), nil
}

// SplitRoleList splits "l,n,n,c" or "l n n c" into codes
func SplitRoleList(list string) []string {
	fields := strings.FieldsFunc(list, func(r rune) bool {
		return r == ',' || r == ';' || r == ' ' || r == '\t'
	})
	return fields
}

// Role returns the role of a column
func (r Roles) Role(column string) Role {
	if role, ok := r.ByColumn[column]; ok {
		return role
	}
	return RoleDisregard
}

func (r Roles) columnsWith(role Role) []string {
	var cols []string
	for _, c := range r.Order {
		if r.Role(c) == role {
			cols = append(cols, c)
		}
	}
	return cols
}

// Continuous returns the continuous columns in column order
func (r Roles) Continuous() []string { return r.columnsWith(RoleContinuous) }

// Categorical returns the categorical columns in column order
func (r Roles) Categorical() []string { return r.columnsWith(RoleCategorical) }

// Label returns the label column, if any
func (r Roles) Label() (string, bool) {
	cols := r.columnsWith(RoleLabel)
	if len(cols) == 0 {
		return "", false
	}
	return cols[0], true
}

// Absolute returns the stratification column, if any
func (r Roles) Absolute() (string, bool) {
	cols := r.columnsWith(RoleAbsolute)
	if len(cols) == 0 {
		return "", false
	}
	return cols[0], true
}

// Validate checks the roles against a dataset: every named column must exist,
// label and absolute may each appear at most once, and at least one column must
// be balanced.
func (r Roles) Validate(d *Dataset) error {
	for _, c := range r.Order {
		if !d.HasColumn(c) {
			return fmt.Errorf("%w: %q", core.ErrUnknownColumn, c)
		}
	}
	for c := range r.ByColumn {
		if !d.HasColumn(c) {
			return fmt.Errorf("%w: %q", core.ErrUnknownColumn, c)
		}
	}
	if n := len(r.columnsWith(RoleLabel)); n > 1 {
		return fmt.Errorf("%w: %d label columns", core.ErrDuplicateRole, n)
	}
	if n := len(r.columnsWith(RoleAbsolute)); n > 1 {
		return fmt.Errorf("%w: %d absolute columns", core.ErrDuplicateRole, n)
	}
	if len(r.Continuous()) == 0 && len(r.Categorical()) == 0 {
		return core.ErrNoRolesToSplit
	}
	return nil
}

// Codes returns column -> one-letter code, used for hashing and reports
func (r Roles) Codes() map[string]string {
	out := make(map[string]string, len(r.Order))
	for _, c := range r.Order {
		out[c] = r.Role(c).Code()
	}
	return out
}
