// Package roles decides the role of every column from a role list, a YAML role
// file or interactive prompts.
package roles

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"strings"

	"setsplit/domain/core"
	"setsplit/domain/dataset"
	"setsplit/internal"
	"setsplit/internal/errors"
	"setsplit/ports"

	"github.com/mattn/go-isatty"
	"gopkg.in/yaml.v3"
)

// previewSize is the number of sample values shown with each prompt
const previewSize = 3

// RoleFile is the YAML layout of --roles-file
type RoleFile struct {
	Roles map[string]string `yaml:"roles"`
}

// Resolver resolves column roles. Prompter may be nil when stdin is not interactive.
type Resolver struct {
	prompter ports.RolePrompter
	logger   *internal.Logger
}

// NewResolver creates a resolver
func NewResolver(prompter ports.RolePrompter, logger *internal.Logger) *Resolver {
	return &Resolver{prompter: prompter, logger: internal.OrDefault(logger).With("Roles")}
}

// StdinIsTerminal reports whether prompts can be answered
func StdinIsTerminal() bool {
	fd := os.Stdin.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Resolve picks roles for d. A role file wins over a role list. A list whose
// length does not match the column count is ignored with a warning and the
// roles are asked for instead. Every failure is CONFIG_INVALID.
func (r *Resolver) Resolve(ctx context.Context, d *dataset.Dataset, list, file string) (dataset.Roles, error) {
	var (
		roles dataset.Roles
		err   error
	)
	switch {
	case file != "":
		roles, err = LoadFile(file, d)
	case list != "":
		roles, err = dataset.RolesFromCodes(d.Headers, dataset.SplitRoleList(list))
		if stderrors.Is(err, core.ErrRoleCount) {
			r.logger.Warn("%v; asking for roles instead", err)
			roles, err = r.prompt(ctx, d)
		}
	default:
		roles, err = r.prompt(ctx, d)
	}
	if err != nil {
		return dataset.Roles{}, classify(err)
	}
	if err := roles.Validate(d); err != nil {
		return dataset.Roles{}, classify(err)
	}
	r.logger.Info("Roles: %s", describe(roles, d))
	return roles, nil
}

func (r *Resolver) prompt(ctx context.Context, d *dataset.Dataset) (dataset.Roles, error) {
	if r.prompter == nil {
		return dataset.Roles{}, errors.ConfigInvalid("no usable column roles were given and stdin is not a terminal; pass --roles or --roles-file")
	}
	byColumn := make(map[string]dataset.Role, len(d.Headers))
	for _, header := range d.Headers {
		cells, _ := d.Column(header)
		preview := cells[:min(previewSize, len(cells))]
		role, err := r.prompter.PromptRole(ctx, header, preview)
		if err != nil {
			return dataset.Roles{}, err
		}
		byColumn[header] = role
	}
	return dataset.NewRoles(d.Headers, byColumn), nil
}

// LoadFile reads a YAML role file. Columns it does not mention are disregarded.
func LoadFile(path string, d *dataset.Dataset) (dataset.Roles, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return dataset.Roles{}, errors.ConfigInvalidf("cannot read role file %s: %v", path, err)
	}
	var file RoleFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return dataset.Roles{}, errors.ConfigInvalidf("cannot parse role file %s: %v", path, err)
	}
	if len(file.Roles) == 0 {
		return dataset.Roles{}, errors.ConfigInvalidf("role file %s has no roles", path)
	}
	byColumn := make(map[string]dataset.Role, len(file.Roles))
	for column, code := range file.Roles {
		if !d.HasColumn(column) {
			return dataset.Roles{}, fmt.Errorf("role file %s: %w: %q", path, core.ErrUnknownColumn, column)
		}
		role, err := dataset.ParseRole(code)
		if err != nil {
			return dataset.Roles{}, fmt.Errorf("role file %s: column %q: %w", path, column, err)
		}
		byColumn[column] = role
	}
	return dataset.NewRoles(d.Headers, byColumn), nil
}

func describe(roles dataset.Roles, d *dataset.Dataset) string {
	parts := make([]string, len(d.Headers))
	for i, h := range d.Headers {
		parts[i] = h + "=" + roles.Role(h).Code()
	}
	return strings.Join(parts, " ")
}

func classify(err error) error {
	if errors.IsAppError(err) {
		return err
	}
	if stderrors.Is(err, context.Canceled) {
		return err
	}
	return errors.WithCode(errors.CodeConfigInvalid, err)
}
