package commands

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/pipesh/pipesh/core/alias"
	"github.com/pipesh/pipesh/core/shell"
)

type builtinEnv struct {
	dispatcher *shell.Dispatcher
	session    *shell.Session
	out        *bytes.Buffer
	errOut     *bytes.Buffer
	fs         afero.Fs
	aliases    *alias.Manager
	jobs       *shell.JobManager
}

func newBuiltinEnv(t *testing.T) *builtinEnv {
	t.Helper()
	color.NoColor = true

	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	sess := shell.NewSessionWith(strings.NewReader(""), out, errOut)
	d := shell.NewDispatcher(sess)
	fs := afero.NewMemMapFs()
	d.SetFs(fs)
	aliases := alias.NewPersistentManager(fs, "aliases")
	d.SetAliasManager(aliases)
	jobs := shell.NewJobManager()
	d.SetJobManager(jobs)
	for _, g := range All(d) {
		d.AddGroup(g)
	}
	d.AddGroup(shell.NewGroup("t",
		&shell.SimpleCommand{
			Use:   "wait-for-stop",
			Short: "Block until interrupted.",
			Exec: func(sess *shell.Session, args []string) (any, error) {
				select {
				case <-sess.Context().Done():
					return nil, sess.Context().Err()
				case <-time.After(10 * time.Second):
					return nil, fmt.Errorf("never interrupted")
				}
			},
		},
	))
	return &builtinEnv{dispatcher: d, session: sess, out: out, errOut: errOut, fs: fs, aliases: aliases, jobs: jobs}
}

func writeScript(t *testing.T, env *builtinEnv, path, content string) {
	t.Helper()
	require.NoError(t, afero.WriteFile(env.fs, path, []byte(content), 0o644))
}

func (e *builtinEnv) mustExecute(t *testing.T, line string) any {
	t.Helper()
	result, err := e.dispatcher.Execute(line)
	require.NoError(t, err)
	return result
}
