package shell

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completerDispatcher() *Dispatcher {
	d := NewDispatcher(NewSessionWith(strings.NewReader(""), io.Discard, io.Discard))
	d.AddGroup(NewGroup("g",
		&SimpleCommand{Use: "echo", Short: "print"},
		&SimpleCommand{Use: "exit-status", Short: "status"},
		&SimpleCommand{
			Use:   "open",
			Short: "open a target",
			Complete: []Completer{func(word string) []string {
				return []string{"alpha", "beta"}
			}},
		},
	))
	return d
}

func TestRunPrintsCommandOutputOnce(t *testing.T) {
	out := &bytes.Buffer{}
	sess := NewSessionWith(strings.NewReader("echo hi\nexit\n"), out, io.Discard)
	d := NewDispatcher(sess)
	d.AddGroup(testCommands())

	sh, err := NewShell(d, ShellConfig{})
	require.NoError(t, err)
	defer sh.Close()

	sh.Run()

	// The echo command writes its own output; its returned value must not
	// be printed again by the loop.
	assert.Equal(t, "hi\n", out.String())
}

func TestRunReportsCommandErrors(t *testing.T) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	sess := NewSessionWith(strings.NewReader("nosuch\nexit\n"), out, errOut)
	d := NewDispatcher(sess)
	d.AddGroup(testCommands())

	sh, err := NewShell(d, ShellConfig{})
	require.NoError(t, err)
	defer sh.Close()

	sh.Run()

	assert.Empty(t, out.String())
	assert.Contains(t, errOut.String(), "unknown command: nosuch")
}

func TestCompleterFirstWord(t *testing.T) {
	c := &commandCompleter{dispatcher: completerDispatcher()}

	line := []rune("e")
	got, length := c.Do(line, len(line))
	assert.Equal(t, 1, length)

	var values []string
	for _, r := range got {
		values = append(values, "e"+string(r))
	}
	assert.ElementsMatch(t, []string{"echo", "exit-status"}, values)
}

func TestCompleterArguments(t *testing.T) {
	c := &commandCompleter{dispatcher: completerDispatcher()}

	line := []rune("open al")
	got, length := c.Do(line, len(line))
	assert.Equal(t, 2, length)
	assert.Equal(t, [][]rune{[]rune("pha")}, got)
}

func TestCompleterUnknownCommand(t *testing.T) {
	c := &commandCompleter{dispatcher: completerDispatcher()}

	line := []rune("nosuch ")
	got, length := c.Do(line, len(line))
	assert.Empty(t, got)
	assert.Equal(t, 0, length)
}
