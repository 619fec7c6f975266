package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder(t *testing.T) {
	p := New("ls -la").Pipe("grep pattern").Redirect("output.txt").Build()

	require.Len(t, p.Stages, 2)
	assert.Equal(t, "ls -la", p.Stages[0].Command)
	assert.Equal(t, OpPipe, p.Stages[0].Op)
	assert.Equal(t, "grep pattern", p.Stages[1].Command)
	assert.Equal(t, OpRedirect, p.Stages[1].Op)
	assert.Equal(t, "output.txt", p.Stages[1].RedirectTarget)
	assert.Equal(t, "ls -la | grep pattern > output.txt", p.Source)
}

func TestBuilderAndOr(t *testing.T) {
	p := New("cmd1").And("cmd2").Or("cmd3").Build()

	require.Len(t, p.Stages, 3)
	assert.Equal(t, OpAnd, p.Stages[0].Op)
	assert.Equal(t, OpOr, p.Stages[1].Op)
	assert.Equal(t, OpNone, p.Stages[2].Op)
}

func TestBuilderSequenceAndFlip(t *testing.T) {
	p := New("cmd1").Sequence("cmd2").Flip("cmd3").Build()

	require.Len(t, p.Stages, 3)
	assert.Equal(t, OpSequence, p.Stages[0].Op)
	assert.Equal(t, OpFlip, p.Stages[1].Op)
}

func TestBuilderBackground(t *testing.T) {
	p := New("cmd").Background().Build()

	assert.True(t, p.Background)
	assert.Equal(t, "cmd &", p.Source)
}

func TestBuilderInputRedirect(t *testing.T) {
	p := New("cat").InputRedirect("in.txt").Build()

	require.Len(t, p.Stages, 1)
	assert.Equal(t, "cat", p.Stages[0].Command)
	assert.Equal(t, "in.txt", p.Stages[0].InputSource)
}

func TestBuilderStderrRedirect(t *testing.T) {
	p := New("cmd").StderrRedirect("err.txt").Build()

	require.Len(t, p.Stages, 1)
	assert.Equal(t, OpStderrRedirect, p.Stages[0].Op)
	assert.Equal(t, "err.txt", p.Stages[0].RedirectTarget)
}

func TestBuilderCombinedRedirect(t *testing.T) {
	p := New("cmd").CombinedRedirect("all.txt").Build()

	require.Len(t, p.Stages, 1)
	assert.Equal(t, OpCombinedRedirect, p.Stages[0].Op)
}

func TestBuilderAppend(t *testing.T) {
	p := New("cmd").Append("log.txt").Build()

	require.Len(t, p.Stages, 1)
	assert.True(t, p.Stages[0].Append)
	assert.Equal(t, "log.txt", p.Stages[0].RedirectTarget)
}

func TestOperatorSymbols(t *testing.T) {
	cases := []struct {
		symbol string
		op     Operator
	}{
		{"|", OpPipe},
		{"|;", OpFlip},
		{"&&", OpAnd},
		{"||", OpOr},
		{";", OpSequence},
		{">", OpRedirect},
		{">>", OpAppend},
		{"<", OpInputRedirect},
		{"2>", OpStderrRedirect},
		{"&>", OpCombinedRedirect},
	}

	for _, tc := range cases {
		op, ok := FromSymbol(tc.symbol)
		require.True(t, ok, tc.symbol)
		assert.Equal(t, tc.op, op)
		assert.Equal(t, tc.symbol, tc.op.Symbol())
	}

	_, ok := FromSymbol("???")
	assert.False(t, ok)
}

func TestOperatorNames(t *testing.T) {
	op, ok := FromName("pipe")
	require.True(t, ok)
	assert.Equal(t, OpPipe, op)
	assert.Equal(t, "pipe", OpPipe.String())

	_, ok = FromName("none")
	assert.False(t, ok)
}

func TestDefaultOperatorsIsACopy(t *testing.T) {
	table := DefaultOperators()
	delete(table, "|")

	fresh := DefaultOperators()
	_, ok := fresh["|"]
	assert.True(t, ok)
}
