// Package pipeline defines the command-pipeline data model and parser: a
// Pipeline is an ordered list of Stages joined by Operators, parsed from a
// raw command line or assembled with a Builder.
package pipeline

import "strings"

// Stage is one element of a pipeline: the verbatim command text for the
// stage and the operator that joins it to the next stage. Treat stages as
// immutable once parsed or built.
type Stage struct {
	// Command is the raw command-line text for this stage, not yet split
	// into arguments.
	Command string
	// Op is the operator following this stage; OpNone on the last stage.
	Op Operator
	// RedirectTarget is the output file path when Op is an output redirect.
	RedirectTarget string
	// Append distinguishes >> from > when RedirectTarget is set.
	Append bool
	// InputSource is the file path feeding this stage's standard input,
	// or "" if the stage reads the session input.
	InputSource string
}

// Pipeline is a parsed command line: a non-empty ordered sequence of stages,
// the untouched source string, and a background flag.
type Pipeline struct {
	Stages     []Stage
	Source     string
	Background bool
}

// Builder assembles a Pipeline programmatically:
//
//	p := pipeline.New("ls -la").Pipe("grep foo").Redirect("out.txt").Build()
type Builder struct {
	stages     []Stage
	current    string
	input      string
	background bool
	source     strings.Builder
}

// New starts a builder with the first command of the pipeline.
func New(command string) *Builder {
	b := &Builder{current: command}
	b.source.WriteString(command)
	return b
}

func (b *Builder) join(op Operator, next string) *Builder {
	b.stages = append(b.stages, Stage{Command: b.current, Op: op, InputSource: b.input})
	b.source.WriteString(" " + op.Symbol() + " " + next)
	b.current = next
	b.input = ""
	return b
}

// Pipe joins the next command with |.
func (b *Builder) Pipe(command string) *Builder { return b.join(OpPipe, command) }

// Flip joins the next command with |;.
func (b *Builder) Flip(command string) *Builder { return b.join(OpFlip, command) }

// And joins the next command with &&.
func (b *Builder) And(command string) *Builder { return b.join(OpAnd, command) }

// Or joins the next command with ||.
func (b *Builder) Or(command string) *Builder { return b.join(OpOr, command) }

// Sequence joins the next command with ;.
func (b *Builder) Sequence(command string) *Builder { return b.join(OpSequence, command) }

func (b *Builder) redirect(op Operator, target string) *Builder {
	b.stages = append(b.stages, Stage{
		Command:        b.current,
		Op:             op,
		RedirectTarget: target,
		Append:         op == OpAppend,
		InputSource:    b.input,
	})
	b.source.WriteString(" " + op.Symbol() + " " + target)
	b.current = ""
	b.input = ""
	return b
}

// Redirect truncates target and writes the current command's output to it.
func (b *Builder) Redirect(target string) *Builder { return b.redirect(OpRedirect, target) }

// Append writes the current command's output to the end of target.
func (b *Builder) Append(target string) *Builder { return b.redirect(OpAppend, target) }

// StderrRedirect writes the current command's error output to target.
func (b *Builder) StderrRedirect(target string) *Builder { return b.redirect(OpStderrRedirect, target) }

// CombinedRedirect writes the current command's output and error output to
// target.
func (b *Builder) CombinedRedirect(target string) *Builder {
	return b.redirect(OpCombinedRedirect, target)
}

// InputRedirect feeds source to the current command's standard input.
func (b *Builder) InputRedirect(source string) *Builder {
	b.input = source
	b.source.WriteString(" " + OpInputRedirect.Symbol() + " " + source)
	return b
}

// Background marks the pipeline for background execution.
func (b *Builder) Background() *Builder {
	b.background = true
	b.source.WriteString(" &")
	return b
}

// Build finishes the pipeline.
func (b *Builder) Build() Pipeline {
	stages := b.stages
	if b.current != "" || b.input != "" || len(stages) == 0 {
		stages = append(stages, Stage{Command: b.current, InputSource: b.input})
	}
	return Pipeline{Stages: stages, Source: b.source.String(), Background: b.background}
}
