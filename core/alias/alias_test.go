package alias

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimpleExpansion(t *testing.T) {
	m := NewManager()
	m.SetAlias("ll", "ls -la")

	assert.Equal(t, "ls -la /tmp", m.Expand("ll /tmp"))
	assert.Equal(t, "ls -la", m.Expand("ll"))
}

func TestUnknownFirstWordUnchanged(t *testing.T) {
	m := NewManager()
	m.SetAlias("ll", "ls -la")

	assert.Equal(t, "ls ll", m.Expand("ls ll"))
	assert.Equal(t, "whoami", m.Expand("whoami"))
}

func TestBlankInputUnchanged(t *testing.T) {
	m := NewManager()

	assert.Equal(t, "", m.Expand(""))
	assert.Equal(t, "   ", m.Expand("   "))
}

func TestPositionalParameters(t *testing.T) {
	m := NewManager()
	m.SetAlias("swap", "echo $2 $1")

	assert.Equal(t, "echo b a", m.Expand("swap a b"))
}

func TestPositionalPastSuppliedWordsIsEmpty(t *testing.T) {
	m := NewManager()
	m.SetAlias("three", "echo [$3]")

	assert.Equal(t, "echo []", m.Expand("three a b"))
}

func TestAllArguments(t *testing.T) {
	m := NewManager()
	m.SetAlias("wrap", "run --args $@ --end")

	assert.Equal(t, "run --args a b c --end", m.Expand("wrap a  b   c"))
}

func TestDollarWithoutMarkerKeptLiteral(t *testing.T) {
	m := NewManager()
	m.SetAlias("price", "echo $USD")

	assert.Equal(t, "echo $USD", m.Expand("price"))
}

func TestChainedExpansion(t *testing.T) {
	m := NewManager()
	m.SetAlias("l", "ll")
	m.SetAlias("ll", "ls -la")

	assert.Equal(t, "ls -la", m.Expand("l"))
}

func TestCycleTerminates(t *testing.T) {
	m := NewManager()
	m.SetAlias("a", "b")
	m.SetAlias("b", "a")

	// Each name expands at most once, so the chain stops at "a" again.
	assert.Equal(t, "a", m.Expand("a"))
}

func TestSelfReferenceTerminates(t *testing.T) {
	m := NewManager()
	m.SetAlias("ls", "ls --color")

	assert.Equal(t, "ls --color", m.Expand("ls"))
}

func TestSetRemoveLookup(t *testing.T) {
	m := NewManager()
	m.SetAlias("x", "echo x")

	expansion, ok := m.Alias("x")
	require.True(t, ok)
	assert.Equal(t, "echo x", expansion)

	assert.True(t, m.RemoveAlias("x"))
	assert.False(t, m.RemoveAlias("x"))
	_, ok = m.Alias("x")
	assert.False(t, ok)
}

func TestAliasesKeepDefinitionOrder(t *testing.T) {
	m := NewManager()
	m.SetAlias("z", "1")
	m.SetAlias("a", "2")
	m.SetAlias("z", "3")

	entries := m.Aliases()
	require.Len(t, entries, 2)
	assert.Equal(t, Entry{Name: "z", Expansion: "3"}, entries[0])
	assert.Equal(t, Entry{Name: "a", Expansion: "2"}, entries[1])
}

func TestLoadMissingFileIsEmpty(t *testing.T) {
	m := NewPersistentManager(afero.NewMemMapFs(), "aliases")

	require.NoError(t, m.Load())
	assert.Empty(t, m.Aliases())
}

func TestLoadSkipsCommentsAndBlanks(t *testing.T) {
	fs := afero.NewMemMapFs()
	content := "# my aliases\n\nll=ls -la\n  gs = git status  \nnot-a-pair\n"
	require.NoError(t, afero.WriteFile(fs, "aliases", []byte(content), 0644))

	m := NewPersistentManager(fs, "aliases")
	require.NoError(t, m.Load())

	expansion, ok := m.Alias("ll")
	require.True(t, ok)
	assert.Equal(t, "ls -la", expansion)

	expansion, ok = m.Alias("gs")
	require.True(t, ok)
	assert.Equal(t, "git status", expansion)

	assert.Len(t, m.Aliases(), 2)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	fs := afero.NewMemMapFs()

	m := NewPersistentManager(fs, "conf/aliases")
	m.SetAlias("ll", "ls -la")
	m.SetAlias("gs", "git status")
	require.NoError(t, m.Save())

	loaded := NewPersistentManager(fs, "conf/aliases")
	require.NoError(t, loaded.Load())
	assert.Equal(t, m.Aliases(), loaded.Aliases())
}
