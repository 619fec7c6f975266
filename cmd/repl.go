package cmd

import (
	"log"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/pipesh/pipesh/commands"
	"github.com/pipesh/pipesh/core/alias"
	"github.com/pipesh/pipesh/core/shell"
)

// replCmd runs the shell on the local terminal.
var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Run an interactive shell on the local terminal.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		configuration, err := loadConfig()
		if err != nil {
			return err
		}
		parser, err := configuration.Parser()
		if err != nil {
			return err
		}

		d := shell.NewDispatcher(shell.NewSession())
		d.SetParser(parser)
		d.SetJobManager(shell.NewJobManager())

		aliases := alias.NewManager()
		if path := configuration.AliasFile; path != "" {
			aliases = alias.NewPersistentManager(afero.NewOsFs(), path)
			if err := aliases.Load(); err != nil {
				log.Printf("aliases: %v", err)
			}
		}
		d.SetAliasManager(aliases)

		for _, g := range commands.All(d) {
			d.AddGroup(g)
		}

		sh, err := shell.NewShell(d, shell.ShellConfig{
			Prompt:      configuration.Prompt,
			HistoryFile: configuration.HistoryFile,
			InitScript:  configuration.InitScript,
			MOTD:        configuration.Motd,
		})
		if err != nil {
			return err
		}
		defer sh.Close()
		defer d.Close()

		sh.Run()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(replCmd)
}
