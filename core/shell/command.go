package shell

import "sort"

// Command is a named, executable unit of work. Execute returns the command's
// result value, which the dispatcher forwards as the pipeline result when the
// command is the last stage that ran. Errors mark the stage failed without
// aborting the pipeline.
type Command interface {
	Name() string
	Aliases() []string
	Description() string
	Execute(sess *Session, args []string) (any, error)
}

// SubcommandRouter is implemented by commands that route their first
// argument to a nested command.
type SubcommandRouter interface {
	Subcommands() map[string]Command
}

// Describer is implemented by commands that render their own long-form
// help text.
type Describer interface {
	Describe(args []string) string
}

// Completer produces completion candidates for the word being typed.
type Completer func(word string) []string

// CompleterProvider is implemented by commands that contribute argument
// completion to the host line editor.
type CompleterProvider interface {
	Completers() []Completer
}

// SimpleCommand adapts plain values and a function into a Command. The zero
// Exec is a no-op returning nil.
type SimpleCommand struct {
	Use      string
	Names    []string
	Short    string
	Exec     func(sess *Session, args []string) (any, error)
	Subs     map[string]Command
	Complete []Completer
}

var _ Command = (*SimpleCommand)(nil)

func (c *SimpleCommand) Name() string        { return c.Use }
func (c *SimpleCommand) Aliases() []string   { return c.Names }
func (c *SimpleCommand) Description() string { return c.Short }

func (c *SimpleCommand) Execute(sess *Session, args []string) (any, error) {
	if c.Exec == nil {
		return nil, nil
	}
	return c.Exec(sess, args)
}

func (c *SimpleCommand) Subcommands() map[string]Command { return c.Subs }

func (c *SimpleCommand) Completers() []Completer { return c.Complete }

// Group is a named collection of commands registered with a dispatcher as a
// unit. Lookup covers both primary names and aliases.
type Group interface {
	Name() string
	Commands() []Command
	Command(name string) Command
}

type group struct {
	name     string
	commands []Command
	index    map[string]Command
}

// NewGroup returns an immutable group over the given commands. Within the
// group, a later command's alias never shadows an earlier command's primary
// name.
func NewGroup(name string, commands ...Command) Group {
	g := &group{
		name:     name,
		commands: make([]Command, len(commands)),
		index:    make(map[string]Command),
	}
	copy(g.commands, commands)
	for _, cmd := range g.commands {
		g.index[cmd.Name()] = cmd
	}
	for _, cmd := range g.commands {
		for _, a := range cmd.Aliases() {
			if _, taken := g.index[a]; !taken {
				g.index[a] = cmd
			}
		}
	}
	return g
}

func (g *group) Name() string { return g.name }

func (g *group) Commands() []Command {
	out := make([]Command, len(g.commands))
	copy(out, g.commands)
	return out
}

func (g *group) Command(name string) Command { return g.index[name] }

// CommandNames returns the primary names of a group's commands, sorted.
func CommandNames(g Group) []string {
	cmds := g.Commands()
	names := make([]string, 0, len(cmds))
	for _, cmd := range cmds {
		names = append(names, cmd.Name())
	}
	sort.Strings(names)
	return names
}
