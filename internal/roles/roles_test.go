package roles

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"setsplit/domain/dataset"
	"setsplit/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func words(t *testing.T) *dataset.Dataset {
	t.Helper()
	d, err := dataset.New("words.csv", []string{"word", "freq", "class"}, [][]string{
		{"cat", "1", "noun"}, {"dog", "2", "noun"}, {"run", "3", "verb"}, {"eat", "4", "verb"},
	})
	require.NoError(t, err)
	return d
}

func TestResolve_List(t *testing.T) {
	roles, err := NewResolver(nil, nil).Resolve(context.Background(), words(t), "l, n c", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"freq"}, roles.Continuous())
	assert.Equal(t, []string{"class"}, roles.Categorical())
}

func TestResolve_ListLengthMismatchFallsBackToPrompt(t *testing.T) {
	var out bytes.Buffer
	prompter := NewStdinPrompter(strings.NewReader("l\nn\nd\n"), &out, nil)

	roles, err := NewResolver(prompter, nil).Resolve(context.Background(), words(t), "l,n", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"freq"}, roles.Continuous())
	assert.Equal(t, dataset.RoleDisregard, roles.Role("class"))
	assert.Contains(t, out.String(), "Column 'word' (e.g. cat, dog, run)")
}

func TestResolve_NoTerminal(t *testing.T) {
	_, err := NewResolver(nil, nil).Resolve(context.Background(), words(t), "l,n", "")
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))

	_, err = NewResolver(nil, nil).Resolve(context.Background(), words(t), "", "")
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
}

func TestResolve_InvalidConfigurations(t *testing.T) {
	resolver := NewResolver(nil, nil)

	_, err := resolver.Resolve(context.Background(), words(t), "l,x,c", "")
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))

	_, err = resolver.Resolve(context.Background(), words(t), "l,l,c", "")
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))

	_, err = resolver.Resolve(context.Background(), words(t), "a,a,n", "")
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))

	// nothing left to balance
	_, err = resolver.Resolve(context.Background(), words(t), "l,d,d", "")
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
}

func TestResolve_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roles.yaml")
	require.NoError(t, os.WriteFile(path, []byte("roles:\n  word: label\n  freq: n\n  class: stratify\n"), 0o644))

	roles, err := NewResolver(nil, nil).Resolve(context.Background(), words(t), "ignored", path)
	require.NoError(t, err)
	absolute, ok := roles.Absolute()
	require.True(t, ok)
	assert.Equal(t, "class", absolute)
	assert.Equal(t, []string{"freq"}, roles.Continuous())

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("roles:\n  ghost: n\n"), 0o644))
	_, err = NewResolver(nil, nil).Resolve(context.Background(), words(t), "", bad)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))

	_, err = NewResolver(nil, nil).Resolve(context.Background(), words(t), "", filepath.Join(t.TempDir(), "none.yaml"))
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
}

func TestStdinPrompter_Reasks(t *testing.T) {
	var out bytes.Buffer
	prompter := NewStdinPrompter(strings.NewReader("x\ncontinuous\n\nc\n"), &out,
		map[string]dataset.Role{"freq": dataset.RoleContinuous})

	role, err := prompter.PromptRole(context.Background(), "freq", []string{"1", "2"})
	require.NoError(t, err)
	// "x", the full word and the empty line are all rejected
	assert.Equal(t, dataset.RoleCategorical, role)
	assert.Equal(t, 3, strings.Count(out.String(), "please enter exactly one of l/c/n/a/d"))
	assert.Contains(t, out.String(), "(suggested: n)")
}

func TestStdinPrompter_EmptyAnswerIsNotASuggestion(t *testing.T) {
	prompter := NewStdinPrompter(strings.NewReader("\n"), &bytes.Buffer{},
		map[string]dataset.Role{"freq": dataset.RoleContinuous})
	_, err := prompter.PromptRole(context.Background(), "freq", nil)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
}

func TestStdinPrompter_EOF(t *testing.T) {
	prompter := NewStdinPrompter(strings.NewReader(""), &bytes.Buffer{}, nil)
	_, err := prompter.PromptRole(context.Background(), "freq", nil)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
}
