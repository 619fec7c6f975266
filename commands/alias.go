package commands

import (
	"fmt"
	"strings"

	getopt "github.com/pborman/getopt/v2"

	"github.com/pipesh/pipesh/core/alias"
	"github.com/pipesh/pipesh/core/shell"
)

// AliasGroup returns the alias management builtins bound to a manager.
func AliasGroup(aliases *alias.Manager) shell.Group {
	return shell.NewGroup("alias",
		aliasCommand(aliases),
		unaliasCommand(aliases),
	)
}

func aliasCommand(aliases *alias.Manager) shell.Command {
	meta := &flagCommand{
		Use:   "alias [NAME[=VALUE] | NAME VALUE...]",
		Short: "Define or list command aliases.",
	}
	return &shell.SimpleCommand{
		Use:   "alias",
		Short: meta.Short,
		Exec: func(sess *shell.Session, args []string) (any, error) {
			var save bool
			return meta.run(sess, args, func(opts *getopt.Set) {
				opts.FlagLong(&save, "save", 's', "persist aliases after the change")
			}, func(args []string) (any, error) {
				switch {
				case len(args) == 0:
					for _, entry := range aliases.Aliases() {
						fmt.Fprintf(sess.Out(), "alias %s='%s'\n", entry.Name, entry.Expansion)
					}
					return nil, nil

				case len(args) == 1 && !strings.Contains(args[0], "="):
					value, ok := aliases.Alias(args[0])
					if !ok {
						return nil, fmt.Errorf("alias: %s: not found", args[0])
					}
					fmt.Fprintf(sess.Out(), "alias %s='%s'\n", args[0], value)
					return nil, nil

				case len(args) == 1:
					name, value, _ := strings.Cut(args[0], "=")
					if name == "" {
						return nil, fmt.Errorf("alias: empty alias name")
					}
					aliases.SetAlias(name, unquote(value))

				default:
					aliases.SetAlias(args[0], strings.Join(args[1:], " "))
				}
				if save {
					return nil, aliases.Save()
				}
				return nil, nil
			})
		},
		Complete: []shell.Completer{aliasNames(aliases)},
	}
}

func unaliasCommand(aliases *alias.Manager) shell.Command {
	meta := &flagCommand{
		Use:   "unalias [-a] NAME...",
		Short: "Remove command aliases.",
	}
	return &shell.SimpleCommand{
		Use:   "unalias",
		Short: meta.Short,
		Exec: func(sess *shell.Session, args []string) (any, error) {
			var all bool
			return meta.run(sess, args, func(opts *getopt.Set) {
				opts.FlagLong(&all, "all", 'a', "remove every alias")
			}, func(args []string) (any, error) {
				if all {
					for _, entry := range aliases.Aliases() {
						aliases.RemoveAlias(entry.Name)
					}
					return nil, nil
				}
				if len(args) == 0 {
					return nil, fmt.Errorf("unalias: alias name required")
				}
				for _, name := range args {
					if _, ok := aliases.Alias(name); !ok {
						return nil, fmt.Errorf("unalias: %s: not found", name)
					}
					aliases.RemoveAlias(name)
				}
				return nil, nil
			})
		},
		Complete: []shell.Completer{aliasNames(aliases)},
	}
}

// unquote drops one matched pair of surrounding quotes, if present.
func unquote(value string) string {
	if len(value) >= 2 {
		first, last := value[0], value[len(value)-1]
		if first == last && (first == '\'' || first == '"') {
			return value[1 : len(value)-1]
		}
	}
	return value
}

func aliasNames(aliases *alias.Manager) shell.Completer {
	return func(word string) []string {
		var out []string
		for _, entry := range aliases.Aliases() {
			out = append(out, entry.Name)
		}
		return out
	}
}
