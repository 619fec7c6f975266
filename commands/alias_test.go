package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pipesh/pipesh/core/alias"
)

func TestAliasDefineAndUse(t *testing.T) {
	env := newBuiltinEnv(t)

	env.mustExecute(t, "alias greet='echo hello'")
	result := env.mustExecute(t, "greet world")
	assert.Equal(t, "hello world", result)
}

func TestAliasDefineFromWords(t *testing.T) {
	env := newBuiltinEnv(t)

	env.mustExecute(t, "alias greet echo hi there")
	value, ok := env.aliases.Alias("greet")
	require.True(t, ok)
	assert.Equal(t, "echo hi there", value)
}

func TestAliasList(t *testing.T) {
	env := newBuiltinEnv(t)
	env.aliases.SetAlias("ll", "ls -la")
	env.aliases.SetAlias("gg", "git grep")

	env.mustExecute(t, "alias")
	assert.Equal(t, "alias ll='ls -la'\nalias gg='git grep'\n", env.out.String())
}

func TestAliasShowOne(t *testing.T) {
	env := newBuiltinEnv(t)
	env.aliases.SetAlias("ll", "ls -la")

	env.mustExecute(t, "alias ll")
	assert.Equal(t, "alias ll='ls -la'\n", env.out.String())

	_, err := env.dispatcher.Execute("alias nope")
	require.NoError(t, err)
	assert.Contains(t, env.errOut.String(), "not found")
}

func TestAliasSavePersists(t *testing.T) {
	env := newBuiltinEnv(t)

	env.mustExecute(t, "alias -s greet='echo hello'")

	reloaded := alias.NewPersistentManager(env.fs, "aliases")
	require.NoError(t, reloaded.Load())
	value, ok := reloaded.Alias("greet")
	require.True(t, ok)
	assert.Equal(t, "echo hello", value)
}

func TestUnalias(t *testing.T) {
	env := newBuiltinEnv(t)
	env.aliases.SetAlias("ll", "ls -la")

	env.mustExecute(t, "unalias ll")
	_, ok := env.aliases.Alias("ll")
	assert.False(t, ok)
}

func TestUnaliasAll(t *testing.T) {
	env := newBuiltinEnv(t)
	env.aliases.SetAlias("a", "echo a")
	env.aliases.SetAlias("b", "echo b")

	env.mustExecute(t, "unalias -a")
	assert.Empty(t, env.aliases.Aliases())
}
