// Package server exposes the engine over SSH: each connection gets its own
// session, dispatcher, and interactive shell.
package server

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"io"
	"log"

	"github.com/gliderlabs/ssh"
	"github.com/juju/ratelimit"
	"github.com/spf13/afero"
	gossh "golang.org/x/crypto/ssh"

	"github.com/pipesh/pipesh/core/alias"
	"github.com/pipesh/pipesh/core/config"
	"github.com/pipesh/pipesh/core/pipeline"
	"github.com/pipesh/pipesh/core/shell"
)

// Setup registers command groups on a freshly built per-connection
// dispatcher.
type Setup func(d *shell.Dispatcher) []shell.Group

// Server serves interactive engine sessions over SSH.
type Server struct {
	config    *config.Configuration
	setup     Setup
	parser    *pipeline.Parser
	sshServer *ssh.Server
}

// New builds a server from the configuration. Without a host key path a
// fresh RSA key is generated at startup, so host identity does not survive
// restarts.
func New(configuration *config.Configuration, setup Setup) (*Server, error) {
	parser, err := configuration.Parser()
	if err != nil {
		return nil, err
	}
	srv := &Server{
		config: configuration,
		setup:  setup,
		parser: parser,
	}

	srv.sshServer = &ssh.Server{
		Addr: configuration.SSH.Addr,
		Handler: func(s ssh.Session) {
			srv.handle(s)
		},
		PublicKeyHandler: func(ctx ssh.Context, key ssh.PublicKey) bool {
			log.Printf("public key login %s from %s (%s)", ctx.User(), ctx.RemoteAddr(), gossh.FingerprintSHA256(key))
			return true
		},
		PasswordHandler: func(ctx ssh.Context, password string) bool {
			log.Printf("password login %s from %s", ctx.User(), ctx.RemoteAddr())
			return true
		},
	}

	if keyPath := configuration.SSH.HostKeyPath; keyPath != "" {
		srv.sshServer.SetOption(ssh.HostKeyFile(keyPath))
	} else {
		keyPEM, err := generateHostKey()
		if err != nil {
			return nil, fmt.Errorf("host key: %w", err)
		}
		if err := srv.sshServer.SetOption(ssh.HostKeyPEM(keyPEM)); err != nil {
			return nil, fmt.Errorf("host key: %w", err)
		}
	}

	return srv, nil
}

// ListenAndServe blocks serving connections until Shutdown.
func (srv *Server) ListenAndServe() error {
	log.Printf("starting SSH server on %s", srv.sshServer.Addr)
	return srv.sshServer.ListenAndServe()
}

// Shutdown stops accepting connections and waits for active ones.
func (srv *Server) Shutdown(ctx context.Context) error {
	return srv.sshServer.Shutdown(ctx)
}

func (srv *Server) handle(s ssh.Session) {
	out := srv.sessionWriter(s)
	if banner := srv.config.SSH.Banner; banner != "" {
		fmt.Fprintln(out, banner)
	}

	sess := shell.NewSessionWith(s, out, s.Stderr())
	d := shell.NewDispatcher(sess)
	d.SetParser(srv.parser)
	d.SetJobManager(shell.NewJobManager())

	aliases := alias.NewManager()
	if path := srv.config.AliasFile; path != "" {
		aliases = alias.NewPersistentManager(afero.NewOsFs(), path)
		if err := aliases.Load(); err != nil {
			log.Printf("aliases: %v", err)
		}
	}
	d.SetAliasManager(aliases)

	for _, g := range srv.setup(d) {
		d.AddGroup(g)
	}

	sh, err := shell.NewShell(d, shell.ShellConfig{
		Prompt:     srv.config.Prompt,
		InitScript: srv.config.InitScript,
		MOTD:       srv.config.Motd,
	})
	if err != nil {
		fmt.Fprintln(s.Stderr(), err)
		s.Exit(1)
		return
	}
	defer sh.Close()
	defer d.Close()

	log.Printf("session start %s from %s", s.User(), s.RemoteAddr())
	sh.Run()
	log.Printf("session end %s from %s", s.User(), s.RemoteAddr())
	s.Exit(0)
}

// sessionWriter throttles output when a rate limit is configured.
func (srv *Server) sessionWriter(s ssh.Session) io.Writer {
	rate := srv.config.SSH.BytesPerSecond
	if rate <= 0 {
		return s
	}
	bucket := ratelimit.NewBucketWithRate(float64(rate), rate)
	return ratelimit.Writer(s, bucket)
}

func generateHostKey() ([]byte, error) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, err
	}
	return pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	}), nil
}
