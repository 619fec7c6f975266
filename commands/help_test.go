package commands

import (
	"bytes"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"

	"github.com/pipesh/pipesh/core/shell"
)

func TestHelpOverviewGolden(t *testing.T) {
	color.NoColor = true

	out := &bytes.Buffer{}
	sess := shell.NewSessionWith(strings.NewReader(""), out, io.Discard)
	d := shell.NewDispatcher(sess)
	d.AddGroup(shell.NewGroup("files",
		&shell.SimpleCommand{Use: "list", Names: []string{"ls"}, Short: "List directory contents."},
		&shell.SimpleCommand{Use: "remove", Short: "Remove files."},
	))
	d.AddGroup(HelpGroup(d))

	_, err := d.Execute("help")
	require.NoError(t, err)

	g := goldie.New(
		t,
		goldie.WithFixtureDir(filepath.Join("testdata", "golden")),
		goldie.WithDiffEngine(goldie.ColoredDiff),
		goldie.WithTestNameForDir(true),
	)
	g.Assert(t, "overview", out.Bytes())
}
