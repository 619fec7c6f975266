package pipeline

// Operator joins a pipeline stage to the stage that follows it.
type Operator int

const (
	// OpNone marks the final stage of a pipeline; it has no textual symbol.
	OpNone Operator = iota
	// OpPipe hands the previous stage's output to the next stage through
	// the session's reserved pipe-input variable.
	OpPipe
	// OpFlip appends the previous stage's output as a trailing argument of
	// the next stage.
	OpFlip
	// OpAnd runs the next stage only if the previous one succeeded.
	OpAnd
	// OpOr runs the next stage only if the previous one failed.
	OpOr
	// OpSequence runs the next stage unconditionally.
	OpSequence
	// OpRedirect writes the stage's output to a file, truncating it.
	OpRedirect
	// OpAppend writes the stage's output to a file, appending to it.
	OpAppend
	// OpInputRedirect feeds a file to the stage's standard input.
	OpInputRedirect
	// OpStderrRedirect writes the stage's error output to a file.
	OpStderrRedirect
	// OpCombinedRedirect writes the stage's output and error output,
	// interleaved in the order produced, to a file.
	OpCombinedRedirect
)

var symbols = map[Operator]string{
	OpPipe:             "|",
	OpFlip:             "|;",
	OpAnd:              "&&",
	OpOr:               "||",
	OpSequence:         ";",
	OpRedirect:         ">",
	OpAppend:           ">>",
	OpInputRedirect:    "<",
	OpStderrRedirect:   "2>",
	OpCombinedRedirect: "&>",
}

var names = map[Operator]string{
	OpNone:             "none",
	OpPipe:             "pipe",
	OpFlip:             "flip",
	OpAnd:              "and",
	OpOr:               "or",
	OpSequence:         "sequence",
	OpRedirect:         "redirect",
	OpAppend:           "append",
	OpInputRedirect:    "input-redirect",
	OpStderrRedirect:   "stderr-redirect",
	OpCombinedRedirect: "combined-redirect",
}

// Symbol returns the operator's default textual symbol, or "" for OpNone.
func (op Operator) Symbol() string {
	return symbols[op]
}

func (op Operator) String() string {
	if name, ok := names[op]; ok {
		return name
	}
	return "unknown"
}

// OutputRedirect reports whether the operator writes captured output to a
// file (redirect, append, stderr, or combined).
func (op Operator) OutputRedirect() bool {
	switch op {
	case OpRedirect, OpAppend, OpStderrRedirect, OpCombinedRedirect:
		return true
	}
	return false
}

// FromSymbol returns the operator with the given default symbol.
func FromSymbol(symbol string) (Operator, bool) {
	for op, sym := range symbols {
		if sym == symbol {
			return op, true
		}
	}
	return OpNone, false
}

// FromName returns the operator with the given name, as used in
// configuration files.
func FromName(name string) (Operator, bool) {
	for op, n := range names {
		if op != OpNone && n == name {
			return op, true
		}
	}
	return OpNone, false
}

// DefaultOperators returns a fresh copy of the default symbol table. The
// table is data: callers may modify the copy and hand it to NewParserWith
// without affecting other parsers.
func DefaultOperators() map[string]Operator {
	table := make(map[string]Operator, len(symbols))
	for op, sym := range symbols {
		table[sym] = op
	}
	return table
}
